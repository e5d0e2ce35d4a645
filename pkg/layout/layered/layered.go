// Package layered is a deterministic pure-Go layout engine.
//
// Nodes are assigned to ranks by longest path (Kahn's algorithm, feedback
// edges ignored), ranks become columns along the flow axis, and each lane
// is split into tracks: the n-th member of a lane in a given rank sits on
// the lane's n-th track. Edges are routed orthogonally; feedback edges and
// self loops detour below their nodes.
//
// The engine needs no external process and produces identical output for
// identical requests, which makes it the reference engine for tests.
package layered

import (
	"context"
	"math"
	"slices"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
)

// Engine is the layered layout engine. The zero value is ready to use.
type Engine struct{}

var _ layout.Engine = Engine{}

// New returns a layered engine.
func New() Engine { return Engine{} }

// Name implements layout.Engine.
func (Engine) Name() string { return "layered" }

// Layout implements layout.Engine.
func (Engine) Layout(ctx context.Context, req layout.Request) (layout.Result, error) {
	if err := ctx.Err(); err != nil {
		return layout.Result{}, err
	}
	if !req.Direction.Horizontal() {
		res, err := place(transposeRequest(req))
		if err != nil {
			return layout.Result{}, err
		}
		return res.Transpose(), nil
	}
	return place(req)
}

func transposeRequest(req layout.Request) layout.Request {
	t := req
	t.Nodes = make([]layout.NodeSpec, len(req.Nodes))
	for i, n := range req.Nodes {
		n.Width, n.Height = n.Height, n.Width
		t.Nodes[i] = n
	}
	return t
}

type placer struct {
	req     layout.Request
	index   map[string]int // node id -> index in req.Nodes
	rank    []int
	rects   []layout.Rect
	colX    []float64
	colW    []float64
	padding float64
}

// place lays out req with flow along x and lanes stacked along y.
func place(req layout.Request) (layout.Result, error) {
	p := &placer{
		req:     req,
		index:   make(map[string]int, len(req.Nodes)),
		padding: math.Max(req.NodeSpacing, 10),
	}
	lanes := make(map[string]bool, len(req.Partitions))
	for _, part := range req.Partitions {
		lanes[part.ID] = true
	}
	for i, n := range req.Nodes {
		if !lanes[n.Partition] {
			return layout.Result{}, errors.New(errors.ErrCodeLayout, "node %q assigned to unknown partition %q", n.ID, n.Partition)
		}
		p.index[n.ID] = i
	}
	for _, e := range req.Edges {
		_, okS := p.index[e.Source]
		_, okT := p.index[e.Target]
		if !okS || !okT {
			return layout.Result{}, errors.New(errors.ErrCodeLayout, "edge %q connects unknown nodes", e.ID)
		}
	}

	p.assignRanks()
	p.assignColumns()
	res := layout.NewResult()
	p.placeLanes(res)
	for i, n := range req.Nodes {
		res.Nodes[n.ID] = p.rects[i]
	}
	for _, e := range req.Edges {
		res.Edges[e.ID] = p.route(e)
	}
	return res, nil
}

// assignRanks computes longest-path ranks over the non-feedback edges.
func (p *placer) assignRanks() {
	n := len(p.req.Nodes)
	p.rank = make([]int, n)
	children := make([][]int, n)
	inDegree := make([]int, n)
	for _, e := range p.req.Edges {
		if e.Feedback || e.Source == e.Target {
			continue
		}
		s, t := p.index[e.Source], p.index[e.Target]
		children[s] = append(children[s], t)
		inDegree[t]++
	}

	queue := make([]int, 0, n)
	for i := range n {
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range children[curr] {
			if r := p.rank[curr] + 1; r > p.rank[child] {
				p.rank[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
}

func (p *placer) assignColumns() {
	maxRank := 0
	for _, r := range p.rank {
		maxRank = max(maxRank, r)
	}
	p.colW = make([]float64, maxRank+1)
	for i, n := range p.req.Nodes {
		p.colW[p.rank[i]] = math.Max(p.colW[p.rank[i]], n.Width)
	}
	p.colX = make([]float64, maxRank+1)
	x := p.padding
	for r := range p.colX {
		p.colX[r] = x
		x += p.colW[r] + p.req.RankSpacing
	}
}

// placeLanes stacks lanes in partition order and positions their members
// on tracks.
func (p *placer) placeLanes(res layout.Result) {
	p.rects = make([]layout.Rect, len(p.req.Nodes))
	width := p.padding
	if k := len(p.colX) - 1; k >= 0 && len(p.req.Nodes) > 0 {
		width = p.colX[k] + p.colW[k] + p.padding
	}

	type slot struct {
		lane string
		rank int
	}
	tracks := make(map[slot][]int)
	for i, n := range p.req.Nodes {
		s := slot{n.Partition, p.rank[i]}
		tracks[s] = append(tracks[s], i)
	}
	for _, members := range tracks {
		slices.SortStableFunc(members, func(a, b int) int {
			return p.req.Nodes[a].Rank - p.req.Nodes[b].Rank
		})
	}

	y := 0.0
	for _, part := range p.req.Partitions {
		var heights []float64
		for s, members := range tracks {
			if s.lane != part.ID {
				continue
			}
			for t, i := range members {
				if t >= len(heights) {
					heights = append(heights, 0)
				}
				heights[t] = math.Max(heights[t], p.req.Nodes[i].Height)
			}
		}

		offsets := make([]float64, len(heights))
		h := p.padding
		for t, th := range heights {
			if t > 0 {
				h += p.req.NodeSpacing
			}
			offsets[t] = h
			h += th
		}
		h += p.padding

		for s, members := range tracks {
			if s.lane != part.ID {
				continue
			}
			for t, i := range members {
				n := p.req.Nodes[i]
				p.rects[i] = layout.Rect{
					X:      p.colX[s.rank] + (p.colW[s.rank]-n.Width)/2,
					Y:      y + offsets[t] + (heights[t]-n.Height)/2,
					Width:  n.Width,
					Height: n.Height,
				}
			}
		}
		res.Lanes[part.ID] = layout.Rect{X: 0, Y: y, Width: width, Height: h}
		y += h
	}
}

// route draws an orthogonal polyline for e.
func (p *placer) route(e layout.EdgeSpec) []layout.Point {
	si, ti := p.index[e.Source], p.index[e.Target]
	s, t := p.rects[si], p.rects[ti]
	d := p.padding / 2

	if si == ti {
		return []layout.Point{
			{X: s.Right(), Y: s.Center().Y},
			{X: s.Right() + d, Y: s.Center().Y},
			{X: s.Right() + d, Y: s.Bottom() + d},
			{X: s.Center().X, Y: s.Bottom() + d},
			{X: s.Center().X, Y: s.Bottom()},
		}
	}

	if p.rank[ti] <= p.rank[si] {
		below := math.Max(s.Bottom(), t.Bottom()) + d
		return []layout.Point{
			{X: s.Center().X, Y: s.Bottom()},
			{X: s.Center().X, Y: below},
			{X: t.Center().X, Y: below},
			{X: t.Center().X, Y: t.Bottom()},
		}
	}

	start := layout.Point{X: s.Right(), Y: s.Center().Y}
	end := layout.Point{X: t.X, Y: t.Center().Y}
	if start.Y == end.Y {
		return []layout.Point{start, end}
	}
	midX := p.colX[p.rank[ti]] - p.req.RankSpacing/2
	if p.rank[ti] > p.rank[si]+1 {
		midX = p.colX[p.rank[si]+1] - p.req.RankSpacing/2
	}
	return []layout.Point{start, {X: midX, Y: start.Y}, {X: midX, Y: end.Y}, end}
}
