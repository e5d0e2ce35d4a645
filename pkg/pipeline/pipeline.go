// Package pipeline runs an export from a process snapshot to a BPMN
// document:
//
//  1. build: validate the snapshot and derive the flow graph
//  2. layout: hand the graph to a layout [layout.Engine]
//  3. geometry: resolve raw coordinates into lanes, pool and canvas
//  4. colors: resolve each lane's fill, stroke and font colors
//  5. serialize: write BPMN 2.0 XML with diagram interchange
//  6. verify: re-read the document and check every element is emitted once
//
// Every stage fails fast; the first error is returned and no partial
// document is produced. A [Runner] holds no state between calls, so one
// value can serve concurrent exports of different tables.
//
//	runner := pipeline.NewRunner(nil, logger)
//	res, err := runner.Export(ctx, snapshot, pipeline.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("orders.bpmn", res.Document, 0o644)
//
// [Service] puts a document cache in front of a Runner.
package pipeline

import (
	"encoding/json"
	"time"

	"github.com/matzehuels/flowlane/pkg/bpmn"
	"github.com/matzehuels/flowlane/pkg/buildinfo"
	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/color"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
	"github.com/matzehuels/flowlane/pkg/geometry"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/observability"
)

// Options is the fixed configuration of one export. The caller builds it
// (usually from config.Config); the pipeline never loads configuration.
type Options struct {
	Layout   layout.Config   `json:"layout"`
	Geometry geometry.Config `json:"geometry"`
	Colors   color.Config    `json:"colors"`
	Document bpmn.Options    `json:"document"`

	// Strict rejects cyclic flows with an INTEGRITY error.
	Strict bool `json:"strict"`

	// Refresh bypasses cached documents (Service only).
	Refresh bool `json:"-"`
}

// DefaultOptions returns the stock export configuration.
func DefaultOptions() Options {
	return Options{
		Layout:   layout.DefaultConfig(),
		Geometry: geometry.DefaultConfig(),
		Colors:   color.DefaultConfig(),
		Document: bpmn.Options{Exporter: bpmn.DefaultExporter},
	}
}

// Validate rejects options no export can run with.
func (o Options) Validate() error {
	if err := o.Layout.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout")
	}
	g := o.Geometry
	if g.MinLaneHeight < 0 || g.MinLaneWidth < 0 || g.LanePadding < 0 || g.LaneHeader < 0 || g.PoolHeader < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "geometry values must not be negative")
	}
	if o.Colors.MixRatio < 0 || o.Colors.MixRatio > 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "color mix ratio %g outside [0, 1]", o.Colors.MixRatio)
	}
	return nil
}

// normalized fills unset fields and keeps geometry in step with the
// layout direction.
func (o Options) normalized() Options {
	if o.Layout.Engine == "" {
		o.Layout.Engine = DefaultEngine
	}
	if o.Layout.Direction == "" {
		o.Layout.Direction = layout.LeftToRight
	}
	if len(o.Layout.Sizes) == 0 {
		o.Layout.Sizes = layout.DefaultSizes()
	}
	o.Geometry.Direction = o.Layout.Direction
	if o.Document.Exporter == "" {
		o.Document.Exporter = bpmn.DefaultExporter
	}
	if o.Document.ExporterVersion == "" {
		o.Document.ExporterVersion = buildinfo.ExporterVersion()
	}
	return o
}

// KeyOpts returns the cache key options describing o.
func (o Options) KeyOpts() cache.KeyOpts {
	n := o.normalized()
	settings, _ := json.Marshal(n)
	return cache.KeyOpts{
		Engine:    n.Layout.Engine,
		Direction: string(n.Layout.Direction),
		Strict:    n.Strict,
		Settings:  cache.Hash(settings),
		Version:   n.Document.ExporterVersion,
	}
}

// Result holds everything one export derived. Layout is the resolved
// geometry.
type Result struct {
	Graph    *flowgraph.Graph
	Layout   layout.Result
	Colors   map[string]color.Triple
	Document []byte
	Stats    Stats
}

// Stats summarizes an export.
type Stats struct {
	flowgraph.Stats
	Stages map[observability.Stage]time.Duration `json:"stages"`
	Total  time.Duration                         `json:"total"`
}

// LayoutDocument is the JSON written by `flowlane layout` and
// POST /v1/layout.
type LayoutDocument struct {
	TableID string                  `json:"tableId"`
	Name    string                  `json:"name,omitempty"`
	Layout  layout.Result           `json:"layout"`
	Colors  map[string]color.Triple `json:"colors"`
	Stats   flowgraph.Stats         `json:"stats"`
}

// LayoutDocument returns the layout view of r.
func (r *Result) LayoutDocument() LayoutDocument {
	return LayoutDocument{
		TableID: r.Graph.TableID(),
		Name:    r.Graph.Name(),
		Layout:  r.Layout,
		Colors:  r.Colors,
		Stats:   r.Stats.Stats,
	}
}
