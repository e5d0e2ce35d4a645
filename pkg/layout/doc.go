// Package layout adapts a flow graph to a pluggable layered-layout engine
// and translates the engine's answer back into diagram coordinates.
//
// The engine sees a generic vocabulary only: partitions (one per lane, in
// stacking order), sized nodes assigned to a partition, and directed edges.
// It answers with a rectangle per node, optionally a rectangle per
// partition, and a waypoint list per edge:
//
//	req := layout.NewRequest(g, cfg)
//	res, err := engine.Layout(ctx, req)
//
// [Compute] wraps that round trip. It rejects incomplete or non-finite
// answers with a LAYOUT error carrying the configuration, and guarantees
// every edge has at least two waypoints. The result is raw: lane bounds and
// the canvas are finalized by package geometry.
//
// Implementations live in the subpackages graphviz (Graphviz dot through
// WebAssembly) and layered (pure Go longest-path layering).
package layout
