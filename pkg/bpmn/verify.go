package bpmn

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
)

// census counts what a document declares.
type census struct {
	elements  map[string]int // process-section elements by id
	shapes    map[string]int // BPMNShape by bpmnElement
	edges     map[string]int // BPMNEdge by bpmnElement
	waypoints map[string]int // waypoints by BPMNEdge bpmnElement
}

func take(doc []byte) (*census, error) {
	c := &census{
		elements:  make(map[string]int),
		shapes:    make(map[string]int),
		edges:     make(map[string]int),
		waypoints: make(map[string]int),
	}
	dec := xml.NewDecoder(bytes.NewReader(doc))
	inProcess := 0
	var currentEdge string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Space == NSModel && t.Name.Local == "process":
				inProcess++
			case inProcess > 0:
				if id := attr(t, "id"); id != "" {
					c.elements[id]++
				}
			case t.Name.Space == NSDI && t.Name.Local == "BPMNShape":
				c.shapes[attr(t, "bpmnElement")]++
			case t.Name.Space == NSDI && t.Name.Local == "BPMNEdge":
				currentEdge = attr(t, "bpmnElement")
				c.edges[currentEdge]++
			case t.Name.Space == NSDD && t.Name.Local == "waypoint":
				c.waypoints[currentEdge]++
			}
		case xml.EndElement:
			switch {
			case t.Name.Space == NSModel && t.Name.Local == "process":
				inProcess--
			case t.Name.Space == NSDI && t.Name.Local == "BPMNEdge":
				currentEdge = ""
			}
		}
	}
	return c, nil
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// Verify checks that doc is well-formed and declares every lane, node and
// flow of g exactly once in the process section and exactly once in the
// diagram section, each flow with at least two waypoints. Any mismatch is
// a SERIALIZATION error listing the problems.
func Verify(doc []byte, g *flowgraph.Graph) error {
	c, err := take(doc)
	if err != nil {
		return errors.Wrap(errors.ErrCodeSerialization, err, "document is not well-formed")
	}
	ids := assignIDs(g)

	var problems []string
	once := func(kind, id string, got map[string]int, where string) {
		if n := got[id]; n != 1 {
			problems = append(problems, fmt.Sprintf("%s %s appears %d times as %s", kind, id, n, where))
		}
	}
	for _, l := range g.Lanes() {
		id := ids.lanes[l.ID]
		once("lane", id, c.elements, "element")
		once("lane", id, c.shapes, "shape")
	}
	for _, n := range g.Nodes() {
		id := ids.nodes[n.ID]
		once("node", id, c.elements, "element")
		once("node", id, c.shapes, "shape")
	}
	for _, e := range g.Edges() {
		id := ids.flows[e.ID]
		once("flow", id, c.elements, "element")
		once("flow", id, c.edges, "diagram edge")
		if c.waypoints[id] < 2 {
			problems = append(problems, fmt.Sprintf("flow %s has %d waypoints", id, c.waypoints[id]))
		}
	}
	if len(problems) == 0 {
		return nil
	}
	return errors.Serialization("%s", problems[0]).WithDetail("problems", problems)
}
