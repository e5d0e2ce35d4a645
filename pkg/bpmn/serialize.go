// Package bpmn serializes a laid-out flow graph into a BPMN 2.0 document
// with diagram interchange (BPMN DI) geometry.
//
// The process section holds one participant (the pool), one lane per lane
// with its flowNodeRefs, a typed flow node per graph node and a sequence
// flow per graph edge. The diagram section holds a shape per participant,
// lane and node and an edge with waypoints per flow. Lane shapes carry the
// resolved colors in both the bpmn.io (bioc) and the OMG color extensions.
//
// Output is byte-identical for identical input: ids derive from input ids
// and the table id only, and no timestamps are written. [Verify] re-reads a
// document and checks that every node and flow was emitted exactly once.
package bpmn

import (
	"bytes"
	"encoding/xml"
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/flowlane/pkg/color"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/process"
)

// Options configures document metadata.
type Options struct {
	Exporter        string
	ExporterVersion string
	// Executable sets isExecutable on the process.
	Executable bool
}

// DefaultExporter is written to the exporter attribute when unset.
const DefaultExporter = "flowlane"

// Serialize renders the document. geo must be resolved geometry covering
// every lane, node and edge of g; colors must cover every lane. A gap is a
// SERIALIZATION error.
func Serialize(g *flowgraph.Graph, geo layout.Result, colors map[string]color.Triple, opts Options) ([]byte, error) {
	if opts.Exporter == "" {
		opts.Exporter = DefaultExporter
	}
	ids := assignIDs(g)
	horizontal := "true"
	if len(g.Lanes()) > 0 && !lanesStackVertically(g, geo) {
		horizontal = "false"
	}

	doc := definitions{
		XMLNSBpmn:       NSModel,
		XMLNSBpmndi:     NSDI,
		XMLNSDC:         NSDC,
		XMLNSDI:         NSDD,
		XMLNSXSI:        NSXSI,
		XMLNSBioc:       NSBioc,
		XMLNSColor:      NSColor,
		ID:              ids.definitions,
		TargetNamespace: targetNS,
		Exporter:        opts.Exporter,
		ExporterVersion: opts.ExporterVersion,
		Collaboration: collaboration{
			ID: ids.collaboration,
			Participant: participant{
				ID:         ids.participant,
				Name:       g.Name(),
				ProcessRef: ids.process,
			},
		},
		Process: processElem{
			ID:           ids.process,
			Name:         g.Name(),
			IsExecutable: opts.Executable,
			LaneSet:      laneSet{ID: ids.laneSet},
		},
		Diagram: diagram{
			ID: "BPMNDiagram_1",
			Plane: plane{
				ID:          "BPMNPlane_1",
				BpmnElement: ids.collaboration,
			},
		},
	}
	p := &doc.Process
	pl := &doc.Diagram.Plane

	pl.Shapes = append(pl.Shapes, shape{
		ID:           ids.participant + "_di",
		BpmnElement:  ids.participant,
		IsHorizontal: horizontal,
		Bounds:       toBounds(geo.Pool),
	})

	for _, l := range g.Lanes() {
		r, ok := geo.Lanes[l.ID]
		if !ok {
			return nil, errors.Serialization("lane %q has no geometry", l.ID)
		}
		c, ok := colors[l.ID]
		if !ok {
			return nil, errors.Serialization("lane %q has no colors", l.ID)
		}
		el := lane{ID: ids.lanes[l.ID], Name: l.DisplayName()}
		for _, n := range g.NodesInLane(l.ID) {
			el.FlowNodeRefs = append(el.FlowNodeRefs, ids.nodes[n.ID])
		}
		p.LaneSet.Lanes = append(p.LaneSet.Lanes, el)
		pl.Shapes = append(pl.Shapes, shape{
			ID:           el.ID + "_di",
			BpmnElement:  el.ID,
			IsHorizontal: horizontal,
			Stroke:       c.Stroke,
			Fill:         c.Fill,
			Background:   c.Fill,
			Border:       c.Stroke,
			Bounds:       toBounds(r),
			Label:        &label{Color: c.Font},
		})
	}

	for _, l := range g.Lanes() {
		for _, n := range g.NodesInLane(l.ID) {
			r, ok := geo.Nodes[n.ID]
			if !ok {
				return nil, errors.Serialization("node %q has no geometry", n.ID)
			}
			name := ElementName(n.Kind, n.Subtype)
			fn := flowNode{
				XMLName: xml.Name{Local: "bpmn:" + name},
				ID:      ids.nodes[n.ID],
				Name:    n.Name,
			}
			for _, e := range g.Incoming(n.ID) {
				fn.Incoming = append(fn.Incoming, ids.flows[e.ID])
			}
			for _, e := range g.Outgoing(n.ID) {
				fn.Outgoing = append(fn.Outgoing, ids.flows[e.ID])
			}
			p.FlowNodes = append(p.FlowNodes, fn)

			s := shape{ID: fn.ID + "_di", BpmnElement: fn.ID, Bounds: toBounds(r)}
			switch name {
			case "exclusiveGateway":
				s.IsMarkerVisible = "true"
			case "subProcess":
				s.IsExpanded = "true"
			}
			pl.Shapes = append(pl.Shapes, s)
		}
	}

	for _, e := range g.Edges() {
		pts := geo.Edges[e.ID]
		if len(pts) < 2 {
			return nil, errors.Serialization("flow %q has %d waypoints", e.ID, len(pts))
		}
		src, _ := g.Node(e.Source)
		sf := sequenceFlow{
			ID:        ids.flows[e.ID],
			SourceRef: ids.nodes[e.Source],
			TargetRef: ids.nodes[e.Target],
		}
		if src.Kind == process.KindGateway && e.Condition != "" {
			sf.Name = e.Condition
			if carriesExpression(ElementName(src.Kind, src.Subtype)) {
				sf.Condition = &expression{Type: "bpmn:tFormalExpression", Body: e.Condition}
			}
		}
		p.Flows = append(p.Flows, sf)

		de := edge{ID: sf.ID + "_di", BpmnElement: sf.ID}
		for _, pt := range pts {
			de.Waypoints = append(de.Waypoints, waypoint{X: num(pt.X), Y: num(pt.Y)})
		}
		if sf.Name != "" {
			de.Label = &label{Bounds: labelBounds(pts, sf.Name)}
		}
		pl.Edges = append(pl.Edges, de)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeSerialization, err, "encode document")
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// lanesStackVertically reports whether the first two lanes are stacked
// top to bottom, which BPMN DI calls horizontal lanes.
func lanesStackVertically(g *flowgraph.Graph, geo layout.Result) bool {
	lanes := g.Lanes()
	if len(lanes) < 2 {
		r := geo.Lanes[lanes[0].ID]
		return r.Width >= r.Height
	}
	a, b := geo.Lanes[lanes[0].ID], geo.Lanes[lanes[1].ID]
	return b.Y >= a.Bottom()-0.5
}

// labelBounds places a flow label next to the middle of its route.
func labelBounds(pts []layout.Point, text string) *bounds {
	a, b := pts[(len(pts)-1)/2], pts[len(pts)/2]
	if len(pts)%2 == 0 {
		a, b = pts[len(pts)/2-1], pts[len(pts)/2]
	}
	w := math.Max(20, 7*float64(len([]rune(text))))
	return &bounds{
		X:      num((a.X+b.X)/2 + 4),
		Y:      num((a.Y+b.Y)/2 - 18),
		Width:  num(w),
		Height: num(14),
	}
}

func toBounds(r layout.Rect) bounds {
	return bounds{X: num(r.X), Y: num(r.Y), Width: num(r.Width), Height: num(r.Height)}
}

// num formats v with at most two decimals.
func num(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // no "-0"
	}
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
