package graphviz

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/matzehuels/flowlane/pkg/layout"
)

const pointsPerInch = 72.0

func nodeName(i int) string        { return "n" + strconv.Itoa(i) }
func edgeName(i int) string        { return "e" + strconv.Itoa(i) }
func clusterName(i int) string     { return "cluster_p" + strconv.Itoa(i) }
func anchorName(i int) string      { return "p" + strconv.Itoa(i) }
func inches(points float64) string { return strconv.FormatFloat(points/pointsPerInch, 'f', 4, 64) }

// ToDOT converts a layout request into a DOT graph for the dot layout.
//
// Each partition becomes a cluster holding its nodes and an invisible
// anchor. Anchors share the minimum rank and are chained with invisible
// edges, which keeps clusters stacked in partition order and gives empty
// partitions a place. Nodes are fixed-size boxes; feedback edges do not
// constrain ranking. Element names are positional (n<i>, e<i>,
// cluster_p<i>) so arbitrary ids never reach the DOT parser.
func ToDOT(req layout.Request) string {
	var buf bytes.Buffer
	rankdir := "LR"
	if !req.Direction.Horizontal() {
		rankdir = "TB"
	}

	buf.WriteString("digraph flow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  newrank=true;\n")
	buf.WriteString("  splines=polyline;\n")
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(req.NodeSpacing))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(req.RankSpacing))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	byPartition := make(map[string][]int, len(req.Partitions))
	for i, n := range req.Nodes {
		byPartition[n.Partition] = append(byPartition[n.Partition], i)
	}
	margin := strconv.FormatFloat(req.NodeSpacing/2, 'f', 2, 64)
	for p, part := range req.Partitions {
		fmt.Fprintf(&buf, "  subgraph %s {\n", clusterName(p))
		fmt.Fprintf(&buf, "    label=\"\";\n    margin=%s;\n", margin)
		fmt.Fprintf(&buf, "    %s [shape=point, style=invis, width=0.01, height=0.01];\n", anchorName(p))
		for _, i := range byPartition[part.ID] {
			n := req.Nodes[i]
			fmt.Fprintf(&buf, "    %s [width=%s, height=%s];\n", nodeName(i), inches(n.Width), inches(n.Height))
		}
		buf.WriteString("  }\n")
	}

	if len(req.Partitions) > 0 {
		buf.WriteString("\n  { rank=min;")
		for p := range req.Partitions {
			fmt.Fprintf(&buf, " %s;", anchorName(p))
		}
		buf.WriteString(" }\n")
		for p := 1; p < len(req.Partitions); p++ {
			fmt.Fprintf(&buf, "  %s -> %s [style=invis];\n", anchorName(p-1), anchorName(p))
		}
	}

	index := make(map[string]int, len(req.Nodes))
	for i, n := range req.Nodes {
		index[n.ID] = i
	}
	buf.WriteString("\n")
	for i, e := range req.Edges {
		attrs := fmt.Sprintf("id=%q", edgeName(i))
		if e.Feedback {
			attrs += ", constraint=false"
		}
		fmt.Fprintf(&buf, "  %s -> %s [%s];\n", nodeName(index[e.Source]), nodeName(index[e.Target]), attrs)
	}
	buf.WriteString("}\n")
	return buf.String()
}
