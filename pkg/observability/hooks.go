// Package observability provides hooks for metrics and logging.
//
// Libraries emit events through the registered hooks; the binary decides
// what backs them (the server registers Prometheus collectors, the CLI
// registers nothing). The defaults are no-ops, so the core packages never
// import a metrics framework.
//
// Register hooks once at startup:
//
//	observability.SetPipelineHooks(metrics)
//	observability.SetCacheHooks(metrics)
//
// and emit from library code:
//
//	observability.Pipeline().OnStageStart(ctx, observability.StageLayout, tableID)
package observability

import (
	"context"
	"sync"
	"time"
)

// Stage names one step of an export.
type Stage string

const (
	StageBuild     Stage = "build"
	StageLayout    Stage = "layout"
	StageGeometry  Stage = "geometry"
	StageColors    Stage = "colors"
	StageSerialize Stage = "serialize"
	StageVerify    Stage = "verify"
)

// Stages lists every stage in execution order.
var Stages = []Stage{StageBuild, StageLayout, StageGeometry, StageColors, StageSerialize, StageVerify}

// PipelineHooks receives events from the export pipeline.
type PipelineHooks interface {
	OnStageStart(ctx context.Context, stage Stage, table string)
	OnStageComplete(ctx context.Context, stage Stage, table string, duration time.Duration, err error)

	// OnExportComplete fires once per export, successful or not. nodes and
	// edges are zero when the graph could not be built.
	OnExportComplete(ctx context.Context, table string, nodes, edges int, duration time.Duration, err error)
}

// CacheHooks receives events from the document cache.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from the HTTP server. OnRequest fires before
// routing and sees the raw path; OnResponse gets the matched route pattern.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, route string, status int, duration time.Duration)
}

// NoopPipelineHooks ignores every event.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnStageStart(context.Context, Stage, string)                              {}
func (NoopPipelineHooks) OnStageComplete(context.Context, Stage, string, time.Duration, error)     {}
func (NoopPipelineHooks) OnExportComplete(context.Context, string, int, int, time.Duration, error) {}

// NoopCacheHooks ignores every event.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks ignores every event.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers pipeline hooks. nil is ignored.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetCacheHooks registers cache hooks. nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers HTTP hooks. nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores the no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
