package bpmn

import "encoding/xml"

// Namespaces written on the definitions element.
const (
	NSModel  = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	NSDI     = "http://www.omg.org/spec/BPMN/20100524/DI"
	NSDC     = "http://www.omg.org/spec/DD/20100524/DC"
	NSDD     = "http://www.omg.org/spec/DD/20100524/DI"
	NSXSI    = "http://www.w3.org/2001/XMLSchema-instance"
	NSBioc   = "http://bpmn.io/schema/bpmn/biocolor/1.0"
	NSColor  = "http://www.omg.org/spec/BPMN/non-normative/color/1.0"
	targetNS = "http://bpmn.io/schema/bpmn"
)

// The structs below marshal with literal prefixed names; encoding/xml does
// not manage prefixes itself.

type definitions struct {
	XMLName         xml.Name `xml:"bpmn:definitions"`
	XMLNSBpmn       string   `xml:"xmlns:bpmn,attr"`
	XMLNSBpmndi     string   `xml:"xmlns:bpmndi,attr"`
	XMLNSDC         string   `xml:"xmlns:dc,attr"`
	XMLNSDI         string   `xml:"xmlns:di,attr"`
	XMLNSXSI        string   `xml:"xmlns:xsi,attr"`
	XMLNSBioc       string   `xml:"xmlns:bioc,attr"`
	XMLNSColor      string   `xml:"xmlns:color,attr"`
	ID              string   `xml:"id,attr"`
	TargetNamespace string   `xml:"targetNamespace,attr"`
	Exporter        string   `xml:"exporter,attr,omitempty"`
	ExporterVersion string   `xml:"exporterVersion,attr,omitempty"`

	Collaboration collaboration `xml:"bpmn:collaboration"`
	Process       processElem   `xml:"bpmn:process"`
	Diagram       diagram       `xml:"bpmndi:BPMNDiagram"`
}

type collaboration struct {
	ID          string      `xml:"id,attr"`
	Participant participant `xml:"bpmn:participant"`
}

type participant struct {
	ID         string `xml:"id,attr"`
	Name       string `xml:"name,attr,omitempty"`
	ProcessRef string `xml:"processRef,attr"`
}

type processElem struct {
	ID           string         `xml:"id,attr"`
	Name         string         `xml:"name,attr,omitempty"`
	IsExecutable bool           `xml:"isExecutable,attr"`
	LaneSet      laneSet        `xml:"bpmn:laneSet"`
	FlowNodes    []flowNode     // element name from XMLName
	Flows        []sequenceFlow `xml:"bpmn:sequenceFlow"`
}

type laneSet struct {
	ID    string `xml:"id,attr"`
	Lanes []lane `xml:"bpmn:lane"`
}

type lane struct {
	ID           string   `xml:"id,attr"`
	Name         string   `xml:"name,attr,omitempty"`
	FlowNodeRefs []string `xml:"bpmn:flowNodeRef"`
}

type flowNode struct {
	XMLName  xml.Name
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr,omitempty"`
	Incoming []string `xml:"bpmn:incoming"`
	Outgoing []string `xml:"bpmn:outgoing"`
}

type sequenceFlow struct {
	ID        string      `xml:"id,attr"`
	Name      string      `xml:"name,attr,omitempty"`
	SourceRef string      `xml:"sourceRef,attr"`
	TargetRef string      `xml:"targetRef,attr"`
	Condition *expression `xml:"bpmn:conditionExpression"`
}

type expression struct {
	Type string `xml:"xsi:type,attr"`
	Body string `xml:",chardata"`
}

type diagram struct {
	ID    string `xml:"id,attr"`
	Plane plane  `xml:"bpmndi:BPMNPlane"`
}

type plane struct {
	ID          string  `xml:"id,attr"`
	BpmnElement string  `xml:"bpmnElement,attr"`
	Shapes      []shape `xml:"bpmndi:BPMNShape"`
	Edges       []edge  `xml:"bpmndi:BPMNEdge"`
}

type shape struct {
	ID              string `xml:"id,attr"`
	BpmnElement     string `xml:"bpmnElement,attr"`
	IsHorizontal    string `xml:"isHorizontal,attr,omitempty"`
	IsExpanded      string `xml:"isExpanded,attr,omitempty"`
	IsMarkerVisible string `xml:"isMarkerVisible,attr,omitempty"`
	Stroke          string `xml:"bioc:stroke,attr,omitempty"`
	Fill            string `xml:"bioc:fill,attr,omitempty"`
	Background      string `xml:"color:background-color,attr,omitempty"`
	Border          string `xml:"color:border-color,attr,omitempty"`
	Bounds          bounds `xml:"dc:Bounds"`
	Label           *label `xml:"bpmndi:BPMNLabel"`
}

type edge struct {
	ID          string     `xml:"id,attr"`
	BpmnElement string     `xml:"bpmnElement,attr"`
	Waypoints   []waypoint `xml:"di:waypoint"`
	Label       *label     `xml:"bpmndi:BPMNLabel"`
}

type bounds struct {
	X      string `xml:"x,attr"`
	Y      string `xml:"y,attr"`
	Width  string `xml:"width,attr"`
	Height string `xml:"height,attr"`
}

type waypoint struct {
	X string `xml:"x,attr"`
	Y string `xml:"y,attr"`
}

type label struct {
	Color  string  `xml:"color:color,attr,omitempty"`
	Bounds *bounds `xml:"dc:Bounds"`
}
