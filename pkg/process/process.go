package process

import (
	"slices"
)

// Kind is the coarse BPMN element family of a node.
type Kind string

// Element kinds.
const (
	KindEvent   Kind = "event"
	KindTask    Kind = "task"
	KindGateway Kind = "gateway"
)

// Event subtypes.
const (
	SubtypeStart             = "start"
	SubtypeEnd               = "end"
	SubtypeIntermediate      = "intermediate"
	SubtypeIntermediateCatch = "intermediateCatch"
	SubtypeIntermediateThrow = "intermediateThrow"
)

// Task subtypes.
const (
	SubtypeUser         = "user"
	SubtypeService      = "service"
	SubtypeManual       = "manual"
	SubtypeScript       = "script"
	SubtypeSend         = "send"
	SubtypeReceive      = "receive"
	SubtypeBusinessRule = "businessRule"
	SubtypeSubprocess   = "subprocess"
	SubtypeCallActivity = "callActivity"
)

// Gateway subtypes.
const (
	SubtypeExclusive  = "exclusive"
	SubtypeParallel   = "parallel"
	SubtypeInclusive  = "inclusive"
	SubtypeEventBased = "eventBased"
	SubtypeComplex    = "complex"
)

// Subtypes lists the subtypes understood for each kind. Unknown subtypes
// are accepted and rendered as the generic element of their kind.
var Subtypes = map[Kind][]string{
	KindEvent: {SubtypeStart, SubtypeEnd, SubtypeIntermediate, SubtypeIntermediateCatch, SubtypeIntermediateThrow},
	KindTask: {SubtypeUser, SubtypeService, SubtypeManual, SubtypeScript, SubtypeSend, SubtypeReceive,
		SubtypeBusinessRule, SubtypeSubprocess, SubtypeCallActivity},
	KindGateway: {SubtypeExclusive, SubtypeParallel, SubtypeInclusive, SubtypeEventBased, SubtypeComplex},
}

// IsKnownSubtype reports whether subtype is listed for kind.
func IsKnownSubtype(kind Kind, subtype string) bool {
	return slices.Contains(Subtypes[kind], subtype)
}

// Node is one unit of work, event or gateway in a process table.
//
// NextIDs and BeforeIDs are expected to mirror each other: B is in A.NextIDs
// exactly when A is in B.BeforeIDs. Conditions maps a successor id to the
// branch label shown on the flow towards it; labels are only emitted for
// gateway sources.
type Node struct {
	ID           string            `json:"id" yaml:"id" bson:"id" validate:"required"`
	LaneID       string            `json:"laneId" yaml:"laneId" bson:"lane_id" validate:"required"`
	Kind         Kind              `json:"elementKind" yaml:"elementKind" bson:"element_kind" validate:"required,oneof=event task gateway"`
	Subtype      string            `json:"elementSubtype,omitempty" yaml:"elementSubtype,omitempty" bson:"element_subtype,omitempty"`
	Name         string            `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	DisplayOrder int               `json:"displayOrder" yaml:"displayOrder" bson:"display_order"`
	NextIDs      []string          `json:"nextIds,omitempty" yaml:"nextIds,omitempty" bson:"next_ids,omitempty" validate:"dive,required"`
	BeforeIDs    []string          `json:"beforeIds,omitempty" yaml:"beforeIds,omitempty" bson:"before_ids,omitempty" validate:"dive,required"`
	Conditions   map[string]string `json:"conditions,omitempty" yaml:"conditions,omitempty" bson:"conditions,omitempty"`
}

// Condition returns the branch label towards target, if any.
func (n *Node) Condition(target string) string {
	return n.Conditions[target]
}

// Lane is a swimlane. Lanes are stacked by ascending Order.
type Lane struct {
	ID    string `json:"id" yaml:"id" bson:"id" validate:"required"`
	Name  string `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Color string `json:"color,omitempty" yaml:"color,omitempty" bson:"color,omitempty"`
	Order int    `json:"order" yaml:"order" bson:"order"`
}

// DisplayName returns the lane name, or its ID when unnamed.
func (l *Lane) DisplayName() string {
	if l.Name != "" {
		return l.Name
	}
	return l.ID
}

// DefaultTableID names snapshots that arrive without a table id.
const DefaultTableID = "process"

// Snapshot is the complete input of one export: every lane and node of a
// single process table. Callers must treat it as read-only for the duration
// of the export.
type Snapshot struct {
	TableID string `json:"tableId,omitempty" yaml:"tableId,omitempty" bson:"table_id"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty" bson:"name,omitempty"`
	Lanes   []Lane `json:"lanes" yaml:"lanes" bson:"lanes" validate:"dive"`
	Nodes   []Node `json:"nodes" yaml:"nodes" bson:"nodes" validate:"dive"`
}

// ID returns the table id, falling back to DefaultTableID.
func (s *Snapshot) ID() string {
	if s.TableID != "" {
		return s.TableID
	}
	return DefaultTableID
}

// DisplayName returns the snapshot name, or its ID when unnamed.
func (s *Snapshot) DisplayName() string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID()
}

// IsEmpty reports whether the snapshot has neither lanes nor nodes.
func (s *Snapshot) IsEmpty() bool {
	return len(s.Lanes) == 0 && len(s.Nodes) == 0
}

// TableInfo summarizes a process table for listings.
type TableInfo struct {
	TableID   string `json:"tableId" bson:"table_id"`
	Name      string `json:"name,omitempty" bson:"name,omitempty"`
	LaneCount int    `json:"laneCount" bson:"lane_count"`
	NodeCount int    `json:"nodeCount" bson:"node_count"`
}

// Info returns the listing summary of s.
func (s *Snapshot) Info() TableInfo {
	return TableInfo{
		TableID:   s.ID(),
		Name:      s.Name,
		LaneCount: len(s.Lanes),
		NodeCount: len(s.Nodes),
	}
}

// Bundle groups several process tables in one file.
type Bundle struct {
	Tables []Snapshot `json:"tables" yaml:"tables"`
}

// Table returns the snapshot with the given table id.
func (b *Bundle) Table(id string) (Snapshot, bool) {
	for _, t := range b.Tables {
		if t.ID() == id {
			return t, true
		}
	}
	return Snapshot{}, false
}

// Infos returns the listing summaries of all tables in file order.
func (b *Bundle) Infos() []TableInfo {
	infos := make([]TableInfo, len(b.Tables))
	for i := range b.Tables {
		infos[i] = b.Tables[i].Info()
	}
	return infos
}
