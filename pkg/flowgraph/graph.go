package flowgraph

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/process"
)

// Edge is a directed flow between two nodes.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"sourceId"`
	Target    string `json:"targetId"`
	Condition string `json:"conditionLabel,omitempty"`
}

// Options controls graph construction.
type Options struct {
	// RejectCycles turns feedback edges into an integrity violation.
	RejectCycles bool
}

// Graph is a validated process graph partitioned by lane.
type Graph struct {
	tableID string
	name    string

	lanes     []process.Lane // sorted by Order
	laneIndex map[string]int

	nodes     []process.Node // input order
	nodeIndex map[string]int
	byLane    map[string][]int // lane id -> node indices by displayOrder, id

	edges    []Edge
	out      [][]int // node index -> edge indices
	in       [][]int
	feedback []int
}

// Build validates snap and derives its flow graph. Any integrity violation
// aborts with an INTEGRITY error listing every problem found.
func Build(snap process.Snapshot, opts Options) (*Graph, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}

	var v violations
	g := &Graph{
		tableID:   snap.ID(),
		name:      snap.DisplayName(),
		laneIndex: make(map[string]int, len(snap.Lanes)),
		nodeIndex: make(map[string]int, len(snap.Nodes)),
		byLane:    make(map[string][]int, len(snap.Lanes)),
	}

	g.lanes = slices.Clone(snap.Lanes)
	slices.SortStableFunc(g.lanes, func(a, b process.Lane) int { return cmp.Compare(a.Order, b.Order) })
	orders := make(map[int]string, len(g.lanes))
	for i, l := range g.lanes {
		if _, dup := g.laneIndex[l.ID]; dup {
			v.add("duplicate lane id %q", l.ID)
			continue
		}
		if other, dup := orders[l.Order]; dup {
			v.add("lanes %q and %q share order %d", other, l.ID, l.Order)
		}
		orders[l.Order] = l.ID
		g.laneIndex[l.ID] = i
	}

	g.nodes = slices.Clone(snap.Nodes)
	for i, n := range g.nodes {
		if _, dup := g.nodeIndex[n.ID]; dup {
			v.add("duplicate node id %q", n.ID)
			continue
		}
		g.nodeIndex[n.ID] = i
		if _, ok := g.laneIndex[n.LaneID]; !ok {
			v.add("node %q references unknown lane %q", n.ID, n.LaneID)
			continue
		}
		g.byLane[n.LaneID] = append(g.byLane[n.LaneID], i)
	}

	g.checkAdjacency(&v)
	if err := v.err(); err != nil {
		return nil, err
	}

	for _, idx := range g.byLane {
		slices.SortFunc(idx, func(a, b int) int { return g.compareNodes(a, b) })
	}
	g.deriveEdges()
	g.feedback = g.findFeedback()

	if opts.RejectCycles && len(g.feedback) > 0 {
		for _, ei := range g.feedback {
			e := g.edges[ei]
			v.add("flow %s -> %s closes a cycle", e.Source, e.Target)
		}
		return nil, v.err()
	}
	return g, nil
}

func (g *Graph) checkAdjacency(v *violations) {
	for _, n := range g.nodes {
		for _, next := range n.NextIDs {
			j, ok := g.nodeIndex[next]
			if !ok {
				v.add("node %q lists unknown successor %q", n.ID, next)
				continue
			}
			if !slices.Contains(g.nodes[j].BeforeIDs, n.ID) {
				v.add("node %q lists %q as successor but %q does not list it as predecessor", n.ID, next, next)
			}
		}
		for _, before := range n.BeforeIDs {
			j, ok := g.nodeIndex[before]
			if !ok {
				v.add("node %q lists unknown predecessor %q", n.ID, before)
				continue
			}
			if !slices.Contains(g.nodes[j].NextIDs, n.ID) {
				v.add("node %q lists %q as predecessor but %q does not list it as successor", n.ID, before, before)
			}
		}
	}
}

func (g *Graph) deriveEdges() {
	g.out = make([][]int, len(g.nodes))
	g.in = make([][]int, len(g.nodes))
	ids := make(map[string]bool)
	for i, n := range g.nodes {
		seen := make(map[string]bool, len(n.NextIDs))
		for _, next := range n.NextIDs {
			if seen[next] {
				continue
			}
			seen[next] = true
			id := uniqueID(ids, "Flow_"+n.ID+"_"+next)
			g.edges = append(g.edges, Edge{
				ID:        id,
				Source:    n.ID,
				Target:    next,
				Condition: strings.TrimSpace(n.Condition(next)),
			})
			ei := len(g.edges) - 1
			g.out[i] = append(g.out[i], ei)
			j := g.nodeIndex[next]
			g.in[j] = append(g.in[j], ei)
		}
	}
}

func uniqueID(used map[string]bool, base string) string {
	id := base
	for k := 2; used[id]; k++ {
		id = fmt.Sprintf("%s_%d", base, k)
	}
	used[id] = true
	return id
}

// compareNodes orders nodes by lane order, displayOrder, then id.
func (g *Graph) compareNodes(a, b int) int {
	na, nb := &g.nodes[a], &g.nodes[b]
	if c := cmp.Compare(g.laneIndex[na.LaneID], g.laneIndex[nb.LaneID]); c != 0 {
		return c
	}
	if c := cmp.Compare(na.DisplayOrder, nb.DisplayOrder); c != 0 {
		return c
	}
	return cmp.Compare(na.ID, nb.ID)
}

// findFeedback returns the back edges of a depth-first search that starts
// at source nodes in display order.
func (g *Graph) findFeedback() []int {
	const (
		white = iota
		gray
		black
	)

	order := make([]int, len(g.nodes))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, g.compareNodes)

	color := make([]int, len(g.nodes))
	var back []int

	var dfs func(i int)
	dfs = func(i int) {
		color[i] = gray
		for _, ei := range g.out[i] {
			j := g.nodeIndex[g.edges[ei].Target]
			switch color[j] {
			case white:
				dfs(j)
			case gray:
				back = append(back, ei)
			}
		}
		color[i] = black
	}

	for _, i := range order {
		if len(g.in[i]) == 0 && color[i] == white {
			dfs(i)
		}
	}
	for _, i := range order {
		if color[i] == white {
			dfs(i)
		}
	}
	slices.Sort(back)
	return back
}

type violations []string

func (v *violations) add(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	msg := v[0]
	if len(v) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(v)-1)
	}
	return errors.Integrity("%s", msg).WithDetail("violations", []string(v))
}
