package server

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/matzehuels/flowlane/pkg/observability"
)

// Metrics collects export, cache and HTTP metrics in its own registry. It
// implements the observability hook interfaces.
type Metrics struct {
	StageDuration   *prometheus.HistogramVec
	ExportsTotal    *prometheus.CounterVec
	ExportNodes     prometheus.Histogram
	CacheEvents     *prometheus.CounterVec
	CacheWriteBytes *prometheus.HistogramVec

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	registry *prometheus.Registry
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.HTTPHooks     = (*Metrics)(nil)
)

// NewMetrics registers every collector, plus the Go and process
// collectors, in a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		StageDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowlane_stage_duration_seconds",
			Help:    "Duration of export pipeline stages",
			Buckets: prometheus.DefBuckets,
		}, []string{"stage", "status"}),
		ExportsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowlane_exports_total",
			Help: "Exports by outcome",
		}, []string{"status"}),
		ExportNodes: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowlane_export_nodes",
			Help:    "Flow nodes per successful export",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		CacheEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowlane_cache_events_total",
			Help: "Document cache lookups and writes",
		}, []string{"type", "event"}),
		CacheWriteBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowlane_cache_write_bytes",
			Help:    "Size of artifacts written to the cache",
			Buckets: []float64{1e3, 1e4, 1e5, 1e6, 1e7},
		}, []string{"type"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "flowlane_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "flowlane_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		HTTPRequestsInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "flowlane_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		}),
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) OnStageStart(context.Context, observability.Stage, string) {}

func (m *Metrics) OnStageComplete(_ context.Context, stage observability.Stage, _ string, d time.Duration, err error) {
	m.StageDuration.WithLabelValues(string(stage), status(err)).Observe(d.Seconds())
}

func (m *Metrics) OnExportComplete(_ context.Context, _ string, nodes, _ int, _ time.Duration, err error) {
	m.ExportsTotal.WithLabelValues(status(err)).Inc()
	if err == nil {
		m.ExportNodes.Observe(float64(nodes))
	}
}

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.CacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.CacheEvents.WithLabelValues(keyType, "set").Inc()
	m.CacheWriteBytes.WithLabelValues(keyType).Observe(float64(size))
}

func (m *Metrics) OnRequest(context.Context, string, string) {
	m.HTTPRequestsInFlight.Inc()
}

func (m *Metrics) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	m.HTTPRequestsInFlight.Dec()
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
