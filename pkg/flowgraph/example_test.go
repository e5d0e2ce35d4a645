package flowgraph_test

import (
	"fmt"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/flowgraph"
	"github.com/matzehuels/flowlane/pkg/process"
)

func ExampleBuild() {
	g, err := flowgraph.Build(process.Sample(), flowgraph.Options{})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%+v\n", g.Stats())
	for _, e := range g.Outgoing("stock") {
		fmt.Println(e.ID, e.Condition)
	}
	for _, n := range g.NodesInLane("customer") {
		fmt.Print(n.ID, " ")
	}
	fmt.Println()
	// Output:
	// {Lanes:2 Nodes:7 Edges:6 Feedback:0}
	// Flow_stock_ship yes
	// Flow_stock_notify no
	// start place notify backordered
}

func ExampleBuild_integrity() {
	snap := process.Sample()
	snap.Nodes[0].LaneID = "warehouse"

	_, err := flowgraph.Build(snap, flowgraph.Options{})
	fmt.Println(errors.GetCode(err))
	fmt.Println(errors.UserMessage(err))
	// Output:
	// INTEGRITY
	// node "start" references unknown lane "warehouse"
}
