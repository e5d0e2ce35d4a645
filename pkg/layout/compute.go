package layout

import (
	"context"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
)

// Compute lays out g with engine and checks the answer. The returned
// result covers every node and edge of g; every edge has at least two
// waypoints. Lane rects are passed through as reported and may be missing
// for lanes the engine did not place.
func Compute(ctx context.Context, engine Engine, g *flowgraph.Graph, cfg Config) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, layoutError(errors.Wrap(errors.ErrCodeInvalidConfig, err, "invalid layout configuration"), engine, cfg)
	}

	res, err := engine.Layout(ctx, NewRequest(g, cfg))
	if err != nil {
		return Result{}, layoutError(err, engine, cfg)
	}

	out := NewResult()
	for _, l := range g.Lanes() {
		r, ok := res.Lanes[l.ID]
		if !ok {
			continue
		}
		if !r.finite() {
			return Result{}, layoutError(errors.New(errors.ErrCodeLayout, "lane %q has non-finite bounds", l.ID), engine, cfg)
		}
		out.Lanes[l.ID] = r
	}
	for _, n := range g.Nodes() {
		r, ok := res.Nodes[n.ID]
		if !ok {
			return Result{}, layoutError(errors.New(errors.ErrCodeLayout, "no position for node %q", n.ID), engine, cfg)
		}
		if !r.finite() || r.Width < 0 || r.Height < 0 {
			return Result{}, layoutError(errors.New(errors.ErrCodeLayout, "node %q has invalid bounds %+v", n.ID, r), engine, cfg)
		}
		out.Nodes[n.ID] = r
	}
	for _, e := range g.Edges() {
		pts := res.Edges[e.ID]
		for _, p := range pts {
			if !(Rect{X: p.X, Y: p.Y}).finite() {
				return Result{}, layoutError(errors.New(errors.ErrCodeLayout, "edge %q has a non-finite waypoint", e.ID), engine, cfg)
			}
		}
		out.Edges[e.ID] = EnsureRoute(pts, out.Nodes[e.Source], out.Nodes[e.Target])
	}
	return out, nil
}

// EnsureRoute returns pts when it has at least two points. A single point
// is doubled; an empty route becomes source center to target center.
func EnsureRoute(pts []Point, source, target Rect) []Point {
	switch len(pts) {
	case 0:
		return []Point{source.Center(), target.Center()}
	case 1:
		return []Point{pts[0], pts[0]}
	default:
		return append([]Point(nil), pts...)
	}
}

func layoutError(err error, engine Engine, cfg Config) error {
	return errors.Layout(err, "%s layout failed", engine.Name()).
		WithDetail("engine", engine.Name()).
		WithDetail("config", cfg)
}
