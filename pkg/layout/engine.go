package layout

import (
	"context"

	"github.com/matzehuels/flowlane/pkg/flowgraph"
)

// Engine assigns coordinates to a generic partitioned graph. Engines must
// not keep state between calls.
type Engine interface {
	Name() string
	Layout(ctx context.Context, req Request) (Result, error)
}

// Partition is a lane as seen by an engine. Partitions are listed in
// stacking order.
type Partition struct {
	ID    string `json:"id"`
	Label string `json:"label,omitempty"`
}

// NodeSpec is a sized node assigned to a partition. Rank orders siblings
// inside a partition.
type NodeSpec struct {
	ID        string  `json:"id"`
	Partition string  `json:"partition"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`
	Rank      int     `json:"rank"`
}

// EdgeSpec is a directed edge. Feedback marks edges closing a cycle,
// which engines should route against the flow.
type EdgeSpec struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Feedback bool   `json:"feedback,omitempty"`
}

// Request is the input of an engine call.
type Request struct {
	Partitions  []Partition `json:"partitions"`
	Nodes       []NodeSpec  `json:"nodes"`
	Edges       []EdgeSpec  `json:"edges"`
	Direction   Direction   `json:"direction"`
	NodeSpacing float64     `json:"nodeSpacing"`
	RankSpacing float64     `json:"rankSpacing"`
}

// NewRequest translates g into the engine vocabulary. Partitions follow
// lane order and nodes are listed lane by lane in display order.
func NewRequest(g *flowgraph.Graph, cfg Config) Request {
	req := Request{
		Direction:   cfg.Direction,
		NodeSpacing: cfg.NodeSpacing,
		RankSpacing: cfg.RankSpacing,
	}
	if req.Direction == "" {
		req.Direction = LeftToRight
	}
	sizes := cfg.Sizes
	if sizes == nil {
		sizes = DefaultSizes()
	}
	for _, l := range g.Lanes() {
		req.Partitions = append(req.Partitions, Partition{ID: l.ID, Label: l.DisplayName()})
		for rank, n := range g.NodesInLane(l.ID) {
			s := sizes.Lookup(n.Kind, n.Subtype)
			req.Nodes = append(req.Nodes, NodeSpec{
				ID:        n.ID,
				Partition: l.ID,
				Width:     s.Width,
				Height:    s.Height,
				Rank:      rank,
			})
		}
	}
	for _, e := range g.Edges() {
		req.Edges = append(req.Edges, EdgeSpec{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Feedback: g.IsFeedback(e.ID),
		})
	}
	return req
}
