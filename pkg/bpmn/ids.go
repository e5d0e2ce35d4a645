package bpmn

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/matzehuels/flowlane/pkg/flowgraph"
)

var idSpace = uuid.MustParse("6f3c1d2e-8a4b-5c6d-9e0f-1a2b3c4d5e6f")

// ids maps graph ids to document ids. Every id is an XML NCName and unique
// within the document; assignment depends only on the graph.
type ids struct {
	definitions   string
	collaboration string
	participant   string
	process       string
	laneSet       string
	nodes         map[string]string
	lanes         map[string]string
	flows         map[string]string
	used          map[string]bool
}

// stableSuffix is a short deterministic token derived from the table id.
func stableSuffix(tableID, role string) string {
	u := uuid.NewSHA1(idSpace, []byte(role+"/"+tableID))
	return strings.ReplaceAll(u.String(), "-", "")[:7]
}

func assignIDs(g *flowgraph.Graph) *ids {
	m := &ids{
		nodes: make(map[string]string, len(g.Nodes())),
		lanes: make(map[string]string, len(g.Lanes())),
		flows: make(map[string]string, len(g.Edges())),
		used:  make(map[string]bool),
	}
	m.definitions = m.claim("Definitions_" + stableSuffix(g.TableID(), "definitions"))
	m.collaboration = m.claim("Collaboration_" + stableSuffix(g.TableID(), "collaboration"))
	m.participant = m.claim("Participant_" + stableSuffix(g.TableID(), "participant"))
	m.process = m.claim("Process_" + stableSuffix(g.TableID(), "process"))
	m.laneSet = m.claim("LaneSet_" + stableSuffix(g.TableID(), "laneset"))

	for _, l := range g.Lanes() {
		m.lanes[l.ID] = m.claim("Lane_" + sanitize(l.ID))
	}
	for _, n := range g.Nodes() {
		m.nodes[n.ID] = m.claim(idPrefix(n.Kind) + sanitize(n.ID))
	}
	for _, e := range g.Edges() {
		m.flows[e.ID] = m.claim(sanitize(e.ID))
	}
	return m
}

// claim reserves base, or base_2, base_3, ... when taken. The _di
// suffixed shape ids are reserved alongside.
func (m *ids) claim(base string) string {
	id := base
	for k := 2; m.used[id] || m.used[id+"_di"]; k++ {
		id = fmt.Sprintf("%s_%d", base, k)
	}
	m.used[id] = true
	m.used[id+"_di"] = true
	return id
}

// sanitize maps s onto NCName characters. The result is never empty.
func sanitize(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' || r == '.') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
