package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flowlane/pkg/bpmn"
	"github.com/matzehuels/flowlane/pkg/color"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
	"github.com/matzehuels/flowlane/pkg/geometry"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/process"
)

// Runner executes exports. It keeps no results between calls.
type Runner struct {
	// Engine overrides the engine named in Options.Layout.Engine.
	Engine layout.Engine
	// Logger receives stage logs; nil discards them.
	Logger *log.Logger
}

// NewRunner returns a runner. A nil engine is chosen per export from the
// options, a nil logger discards output.
func NewRunner(engine layout.Engine, logger *log.Logger) *Runner {
	return &Runner{Engine: engine, Logger: logger}
}

var discard = log.New(io.Discard)

func (r *Runner) logger() *log.Logger {
	if r.Logger == nil {
		return discard
	}
	return r.Logger
}

func (r *Runner) engine(opts Options) (layout.Engine, error) {
	if r.Engine != nil {
		return r.Engine, nil
	}
	return NewEngine(opts.Layout.Engine)
}

// Export runs every stage and returns the verified document.
func (r *Runner) Export(ctx context.Context, snap process.Snapshot, opts Options) (*Result, error) {
	return r.run(ctx, snap, opts, observability.StageVerify)
}

// Layout runs the stages up to color resolution; Result.Document is nil.
func (r *Runner) Layout(ctx context.Context, snap process.Snapshot, opts Options) (*Result, error) {
	return r.run(ctx, snap, opts, observability.StageColors)
}

func (r *Runner) run(ctx context.Context, snap process.Snapshot, opts Options, last observability.Stage) (res *Result, err error) {
	opts = opts.normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	engine, err := r.engine(opts)
	if err != nil {
		return nil, err
	}

	table := snap.ID()
	start := time.Now()
	res = &Result{Stats: Stats{Stages: make(map[observability.Stage]time.Duration)}}
	defer func() {
		res.Stats.Total = time.Since(start)
		observability.Pipeline().OnExportComplete(ctx, table, res.Stats.Nodes, res.Stats.Edges, res.Stats.Total, err)
		if err != nil {
			r.logger().Error("export failed", "table", table, "err", err)
			res = nil
		}
	}()

	steps := []struct {
		stage observability.Stage
		fn    func() error
	}{
		{observability.StageBuild, func() (err error) {
			res.Graph, err = flowgraph.Build(snap, flowgraph.Options{RejectCycles: opts.Strict})
			if err == nil {
				res.Stats.Stats = res.Graph.Stats()
			}
			return err
		}},
		{observability.StageLayout, func() (err error) {
			res.Layout, err = layout.Compute(ctx, engine, res.Graph, opts.Layout)
			return err
		}},
		{observability.StageGeometry, func() error {
			res.Layout = geometry.Resolve(res.Layout, res.Graph, opts.Geometry)
			return nil
		}},
		{observability.StageColors, func() error {
			res.Colors = color.ResolveLanes(res.Graph, opts.Colors)
			return nil
		}},
		{observability.StageSerialize, func() (err error) {
			res.Document, err = bpmn.Serialize(res.Graph, res.Layout, res.Colors, opts.Document)
			return err
		}},
		{observability.StageVerify, func() error {
			return bpmn.Verify(res.Document, res.Graph)
		}},
	}

	for _, step := range steps {
		if err := r.stage(ctx, step.stage, table, &res.Stats, step.fn); err != nil {
			return res, fmt.Errorf("%s: %w", step.stage, err)
		}
		if step.stage == last {
			break
		}
	}

	r.logger().Info("exported process",
		"table", table,
		"engine", engine.Name(),
		"lanes", res.Stats.Lanes,
		"nodes", res.Stats.Nodes,
		"edges", res.Stats.Edges,
		"duration", time.Since(start))
	return res, nil
}

func (r *Runner) stage(ctx context.Context, s observability.Stage, table string, stats *Stats, fn func() error) error {
	hooks := observability.Pipeline()
	hooks.OnStageStart(ctx, s, table)
	t0 := time.Now()
	err := fn()
	d := time.Since(t0)
	stats.Stages[s] = d
	hooks.OnStageComplete(ctx, s, table, d, err)
	if err == nil {
		r.logger().Debug("stage complete", "stage", s, "table", table, "duration", d)
	}
	return err
}
