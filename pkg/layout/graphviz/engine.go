// Package graphviz lays out flow graphs with the Graphviz dot algorithm,
// run in-process through github.com/goccy/go-graphviz.
//
// The request is written as DOT (see [ToDOT]), laid out and rendered back
// to DOT with position attributes, then re-parsed with cgraph to read the
// bounding box of every cluster, node and edge spline. Graphviz measures
// in points with y growing upward; results are flipped so that y grows
// downward.
package graphviz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
)

// Engine runs the dot layout. The zero value is ready to use; every call
// starts its own Graphviz instance.
type Engine struct{}

var _ layout.Engine = Engine{}

// New returns a Graphviz engine.
func New() Engine { return Engine{} }

// Name implements layout.Engine.
func (Engine) Name() string { return "graphviz" }

// Layout implements layout.Engine.
func (Engine) Layout(ctx context.Context, req layout.Request) (layout.Result, error) {
	laidOut, err := render(ctx, ToDOT(req))
	if err != nil {
		return layout.Result{}, err
	}
	g, err := graphviz.ParseBytes(laidOut)
	if err != nil {
		return layout.Result{}, errors.Layout(err, "parse dot output")
	}
	defer g.Close()
	return extract(g, req)
}

// render runs dot and returns the input annotated with layout attributes.
func render(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Layout(err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.SetLayout(graphviz.DOT).Render(ctx, g, graphviz.XDOT, &buf); err != nil {
		return nil, errors.Layout(err, "dot layout")
	}
	return buf.Bytes(), nil
}

func extract(g *cgraph.Graph, req layout.Request) (layout.Result, error) {
	bb, err := parseBB(g.GetStr("bb"))
	if err != nil {
		return layout.Result{}, errors.Layout(err, "graph bounding box")
	}
	flip := func(p layout.Point) layout.Point { return layout.Point{X: p.X, Y: bb.ury - p.Y} }

	res := layout.NewResult()
	for p, part := range req.Partitions {
		sub, err := g.SubGraphByName(clusterName(p))
		if err != nil || sub == nil {
			continue
		}
		cb, err := parseBB(sub.GetStr("bb"))
		if err != nil {
			continue
		}
		res.Lanes[part.ID] = cb.rect(bb.ury)
	}

	names := make(map[string]string, len(req.Nodes))
	for i, n := range req.Nodes {
		gn, err := g.NodeByName(nodeName(i))
		if err != nil || gn == nil {
			return layout.Result{}, errors.New(errors.ErrCodeLayout, "dot dropped node %q", n.ID)
		}
		center, err := parsePoint(gn.GetStr("pos"))
		if err != nil {
			return layout.Result{}, errors.Layout(err, "position of node %q", n.ID)
		}
		center = flip(center)
		res.Nodes[n.ID] = layout.Rect{
			X: center.X - n.Width/2, Y: center.Y - n.Height/2,
			Width: n.Width, Height: n.Height,
		}
		names[nodeName(i)] = n.ID
	}

	edgeIDs := make(map[string]string, len(req.Edges))
	for i, e := range req.Edges {
		edgeIDs[edgeName(i)] = e.ID
	}
	for i := range req.Nodes {
		gn, err := g.NodeByName(nodeName(i))
		if err != nil || gn == nil {
			continue
		}
		ge, err := g.FirstOut(gn)
		for err == nil && ge != nil {
			if id, ok := edgeIDs[ge.GetStr("id")]; ok {
				pts, perr := parseEdgePos(ge.GetStr("pos"))
				if perr != nil {
					return layout.Result{}, errors.Layout(perr, "route of edge %q", id)
				}
				for k := range pts {
					pts[k] = flip(pts[k])
				}
				res.Edges[id] = pts
			}
			ge, err = g.NextOut(ge)
		}
	}
	res.TotalWidth, res.TotalHeight = bb.urx-bb.llx, bb.ury-bb.lly
	return res, nil
}
