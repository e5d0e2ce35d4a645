package flowgraph

import "github.com/matzehuels/flowlane/pkg/process"

// TableID returns the id of the process table the graph was built from.
func (g *Graph) TableID() string { return g.tableID }

// Name returns the display name of the process table.
func (g *Graph) Name() string { return g.name }

// Lanes returns the lanes sorted by ascending order.
func (g *Graph) Lanes() []process.Lane { return g.lanes }

// Lane looks up a lane by id.
func (g *Graph) Lane(id string) (process.Lane, bool) {
	i, ok := g.laneIndex[id]
	if !ok {
		return process.Lane{}, false
	}
	return g.lanes[i], true
}

// Nodes returns the nodes in input order.
func (g *Graph) Nodes() []process.Node { return g.nodes }

// Node looks up a node by id.
func (g *Graph) Node(id string) (process.Node, bool) {
	i, ok := g.nodeIndex[id]
	if !ok {
		return process.Node{}, false
	}
	return g.nodes[i], true
}

// NodesInLane returns the members of a lane sorted by displayOrder, then id.
func (g *Graph) NodesInLane(laneID string) []process.Node {
	idx := g.byLane[laneID]
	nodes := make([]process.Node, len(idx))
	for k, i := range idx {
		nodes[k] = g.nodes[i]
	}
	return nodes
}

// Edges returns every flow edge, ordered by source node then nextIds order.
func (g *Graph) Edges() []Edge { return g.edges }

// Outgoing returns the edges leaving a node.
func (g *Graph) Outgoing(nodeID string) []Edge { return g.pick(g.out, nodeID) }

// Incoming returns the edges entering a node.
func (g *Graph) Incoming(nodeID string) []Edge { return g.pick(g.in, nodeID) }

func (g *Graph) pick(adj [][]int, nodeID string) []Edge {
	i, ok := g.nodeIndex[nodeID]
	if !ok {
		return nil
	}
	edges := make([]Edge, len(adj[i]))
	for k, ei := range adj[i] {
		edges[k] = g.edges[ei]
	}
	return edges
}

// FeedbackEdges returns the edges that close a cycle.
func (g *Graph) FeedbackEdges() []Edge {
	edges := make([]Edge, len(g.feedback))
	for k, ei := range g.feedback {
		edges[k] = g.edges[ei]
	}
	return edges
}

// IsFeedback reports whether the edge with the given id closes a cycle.
func (g *Graph) IsFeedback(edgeID string) bool {
	for _, ei := range g.feedback {
		if g.edges[ei].ID == edgeID {
			return true
		}
	}
	return false
}

// Stats summarizes the graph size.
type Stats struct {
	Lanes    int `json:"lanes"`
	Nodes    int `json:"nodes"`
	Edges    int `json:"edges"`
	Feedback int `json:"feedback"`
}

// Stats returns element counts.
func (g *Graph) Stats() Stats {
	return Stats{
		Lanes:    len(g.lanes),
		Nodes:    len(g.nodes),
		Edges:    len(g.edges),
		Feedback: len(g.feedback),
	}
}
