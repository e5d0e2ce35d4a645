package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/pipeline"
	"github.com/matzehuels/flowlane/pkg/process"
	"github.com/matzehuels/flowlane/pkg/source"
	"github.com/matzehuels/flowlane/pkg/source/file"
)

func newTestServer(t *testing.T, withSource bool) (*httptest.Server, *Metrics) {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)

	logger := log.New(io.Discard)
	svc := pipeline.NewService(pipeline.NewRunner(nil, logger), fc, nil)
	t.Cleanup(func() { _ = svc.Close() })

	opts := pipeline.DefaultOptions()
	opts.Layout.Engine = "layered"

	metrics := NewMetrics()
	observability.SetPipelineHooks(metrics)
	observability.SetCacheHooks(metrics)
	observability.SetHTTPHooks(metrics)
	t.Cleanup(observability.Reset)

	var src source.Source
	if withSource {
		other := process.Sample()
		other.TableID = "returns"
		src = file.New("memory", process.Bundle{Tables: []process.Snapshot{process.Sample(), other}})
	}

	s := New(svc, src, Options{Pipeline: opts, Logger: logger, Metrics: metrics})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts, metrics
}

func sampleJSON(t *testing.T, mutate func(*process.Snapshot)) *bytes.Reader {
	t.Helper()
	snap := process.Sample()
	if mutate != nil {
		mutate(&snap)
	}
	data, err := json.Marshal(snap)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func decodeError(t *testing.T, resp *http.Response) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExport(t *testing.T) {
	ts, _ := newTestServer(t, false)

	resp, err := http.Post(ts.URL+"/v1/export", "application/json", sampleJSON(t, nil))
	require.NoError(t, err)
	first, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode, string(first))
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/xml")
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "order-intake.bpmn")
	assert.Contains(t, string(first), "<bpmn:definitions")

	resp, err = http.Post(ts.URL+"/v1/export", "application/json", sampleJSON(t, nil))
	require.NoError(t, err)
	second, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "hit", resp.Header.Get("X-Cache"))
	assert.Equal(t, first, second)

	resp, err = http.Post(ts.URL+"/v1/export?direction=tb&strict=true", "application/json", sampleJSON(t, nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "miss", resp.Header.Get("X-Cache"))
}

func TestExportYAML(t *testing.T) {
	ts, _ := newTestServer(t, false)
	var buf bytes.Buffer
	require.NoError(t, process.WriteSnapshot(&buf, process.Sample(), process.FormatYAML))

	resp, err := http.Post(ts.URL+"/v1/export", "application/yaml", &buf)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestExportErrors(t *testing.T) {
	ts, _ := newTestServer(t, false)

	tests := []struct {
		name   string
		query  string
		body   io.Reader
		status int
		code   string
	}{
		{"DanglingLane", "", sampleJSON(t, func(s *process.Snapshot) { s.Nodes[0].LaneID = "ghost" }), http.StatusUnprocessableEntity, "INTEGRITY"},
		{"Malformed", "", strings.NewReader("{"), http.StatusBadRequest, "INVALID_INPUT"},
		{"Direction", "?direction=diagonal", sampleJSON(t, nil), http.StatusBadRequest, "INVALID_INPUT"},
		{"Engine", "?engine=neato", sampleJSON(t, nil), http.StatusBadRequest, "INVALID_INPUT"},
		{"Strict", "?strict=maybe", sampleJSON(t, nil), http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/export"+tt.query, "application/json", tt.body)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, decodeError(t, resp).Code)
		})
	}
}

func TestIntegrityErrorListsViolations(t *testing.T) {
	ts, _ := newTestServer(t, false)
	body := sampleJSON(t, func(s *process.Snapshot) { s.Nodes[0].LaneID = "ghost" })

	resp, err := http.Post(ts.URL+"/v1/export", "application/json", body)
	require.NoError(t, err)
	defer resp.Body.Close()

	eb := decodeError(t, resp)
	assert.Contains(t, eb.Message, "ghost")
	assert.Len(t, eb.Details["violations"], 1)
}

func TestLayout(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp, err := http.Post(ts.URL+"/v1/layout", "application/json", sampleJSON(t, nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var doc pipeline.LayoutDocument
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&doc))
	assert.Equal(t, "order-intake", doc.TableID)
	assert.Len(t, doc.Layout.Nodes, 7)
	assert.Len(t, doc.Colors, 2)
	for id, r := range doc.Layout.Lanes {
		assert.GreaterOrEqual(t, r.Height, 150.0, "lane %s", id)
	}
}

func TestTables(t *testing.T) {
	ts, _ := newTestServer(t, true)

	resp, err := http.Get(ts.URL + "/v1/tables")
	require.NoError(t, err)
	var listing struct {
		Tables []process.TableInfo `json:"tables"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listing))
	resp.Body.Close()
	require.Len(t, listing.Tables, 2)
	assert.Equal(t, "returns", listing.Tables[1].TableID)
	assert.Equal(t, 7, listing.Tables[0].NodeCount)

	resp, err = http.Get(ts.URL + "/v1/tables/returns/export")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "returns.bpmn")

	resp, err = http.Get(ts.URL + "/v1/tables/unknown/export")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Code)
}

func TestTablesWithoutSource(t *testing.T) {
	ts, _ := newTestServer(t, false)
	resp, err := http.Get(ts.URL + "/v1/tables")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	ts, metrics := newTestServer(t, false)

	resp, err := http.Post(ts.URL+"/v1/export", "application/json", sampleJSON(t, nil))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	out := string(body)

	assert.Contains(t, out, `flowlane_exports_total{status="ok"} 1`)
	assert.Contains(t, out, `flowlane_stage_duration_seconds_count{stage="verify",status="ok"} 1`)
	assert.Contains(t, out, `flowlane_cache_events_total{event="miss",type="document"} 1`)

	// The response can reach the client before the middleware records it.
	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.HTTPRequestsTotal.WithLabelValues("POST", "/v1/export", "200")) == 1
	}, time.Second, 10*time.Millisecond)
}
