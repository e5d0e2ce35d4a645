// Package geometry finalizes raw engine coordinates into diagram geometry.
//
// [Resolve] works in the lane frame, where lanes stack along y and flow
// runs along x; top-to-bottom layouts are transposed in and out. For each
// lane, in ascending order, it takes the lane's band (the engine's lane
// rect joined with its padded members), clamps the band to the minimum lane
// height by expanding downward, and re-stacks the lanes so each starts
// where the previous one ends. Members move with their lane. Content is
// shifted right past the pool and lane headers, every lane spans the full
// content width, and the canvas is the bounding box of the pool.
//
// The output satisfies, for every input:
//
//   - each lane is at least MinLaneHeight tall (MinLaneWidth wide)
//   - each node lies inside its lane
//   - no coordinate is negative, and every waypoint lies on the canvas
package geometry

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/flowlane/pkg/flowgraph"
	"github.com/matzehuels/flowlane/pkg/layout"
)

// Config holds the geometry constants, in layout units.
type Config struct {
	Direction     layout.Direction `json:"direction"`
	MinLaneHeight float64          `json:"minLaneHeight"`
	MinLaneWidth  float64          `json:"minLaneWidth"`
	LanePadding   float64          `json:"lanePadding"`
	LaneHeader    float64          `json:"laneHeader"`
	PoolHeader    float64          `json:"poolHeader"`
}

// MinLaneHeight is the default minimum lane extent across the flow.
const MinLaneHeight = 150

// DefaultConfig returns the stock geometry constants.
func DefaultConfig() Config {
	return Config{
		Direction:     layout.LeftToRight,
		MinLaneHeight: MinLaneHeight,
		MinLaneWidth:  600,
		LanePadding:   20,
		LaneHeader:    30,
		PoolHeader:    30,
	}
}

type band struct {
	id    string
	raw   layout.Rect // engine coordinates
	delta float64     // y shift applied to members
}

// Resolve returns the final geometry for raw. raw must cover every node and
// edge of g, as guaranteed by layout.Compute.
func Resolve(raw layout.Result, g *flowgraph.Graph, cfg Config) layout.Result {
	if !cfg.Direction.Horizontal() {
		return resolve(raw.Transpose(), g, cfg).Transpose()
	}
	return resolve(raw, g, cfg)
}

func resolve(raw layout.Result, g *flowgraph.Graph, cfg Config) layout.Result {
	lanes := g.Lanes()
	bands := make([]band, len(lanes))
	laneOf := make(map[string]int, len(raw.Nodes))

	cursor := 0.0
	for i, l := range lanes {
		r := raw.Lanes[l.ID]
		for _, n := range g.NodesInLane(l.ID) {
			laneOf[n.ID] = i
			r = r.Union(raw.Nodes[n.ID].Inset(cfg.LanePadding))
		}
		if r.IsEmpty() {
			r = layout.Rect{X: r.X, Y: cursor, Width: r.Width, Height: math.Max(r.Height, 0)}
		}
		cursor = r.Bottom()
		bands[i] = band{id: l.ID, raw: r}
	}

	// content extent along the flow axis
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, r := range raw.Nodes {
		minX, maxX = math.Min(minX, r.X), math.Max(maxX, r.Right())
	}
	for _, pts := range raw.Edges {
		for _, p := range pts {
			minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		}
	}
	if math.IsInf(minX, 1) {
		minX, maxX = 0, 0
	}
	laneX := cfg.PoolHeader
	dx := laneX + cfg.LaneHeader + cfg.LanePadding - minX
	laneWidth := math.Max(cfg.MinLaneWidth, maxX+dx+cfg.LanePadding-laneX)

	out := layout.NewResult()
	y := 0.0
	for i := range bands {
		b := &bands[i]
		h := math.Max(b.raw.Height, cfg.MinLaneHeight)
		b.delta = y - b.raw.Y
		out.Lanes[b.id] = layout.Rect{X: laneX, Y: y, Width: laneWidth, Height: h}
		y += h
	}
	out.TotalWidth = laneX + laneWidth
	// a pool without lanes still gets one lane's height
	out.TotalHeight = math.Max(y, cfg.MinLaneHeight)
	out.Pool = layout.Rect{X: 0, Y: 0, Width: out.TotalWidth, Height: out.TotalHeight}

	for id, r := range raw.Nodes {
		i, ok := laneOf[id]
		if !ok {
			continue
		}
		out.Nodes[id] = r.Translate(dx, bands[i].delta)
	}

	byY := make([]int, len(bands))
	for i := range byY {
		byY[i] = i
	}
	slices.SortStableFunc(byY, func(a, b int) int { return cmp.Compare(bands[a].raw.Y, bands[b].raw.Y) })

	for _, e := range g.Edges() {
		pts := raw.Edges[e.ID]
		moved := make([]layout.Point, len(pts))
		for k, p := range pts {
			var delta float64
			switch {
			case k == 0:
				delta = bands[laneOf[e.Source]].delta
			case k == len(pts)-1:
				delta = bands[laneOf[e.Target]].delta
			default:
				delta = bandDelta(bands, byY, p.Y)
			}
			moved[k] = clamp(layout.Point{X: p.X + dx, Y: p.Y + delta}, out.TotalWidth, out.TotalHeight)
		}
		out.Edges[e.ID] = layout.EnsureRoute(moved, out.Nodes[e.Source], out.Nodes[e.Target])
	}
	return out
}

// bandDelta returns the shift of the band containing y, or of the closest
// band above it. Points above every band follow the topmost band.
func bandDelta(bands []band, byY []int, y float64) float64 {
	if len(bands) == 0 {
		return 0
	}
	pick := byY[0]
	for _, i := range byY {
		b := bands[i]
		if y >= b.raw.Y && y <= b.raw.Bottom() {
			return b.delta
		}
		if b.raw.Y <= y {
			pick = i
		}
	}
	return bands[pick].delta
}

func clamp(p layout.Point, w, h float64) layout.Point {
	return layout.Point{X: math.Min(math.Max(p.X, 0), w), Y: math.Min(math.Max(p.Y, 0), h)}
}
