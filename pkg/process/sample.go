package process

// Sample returns a small two-lane order process: a start event, three
// tasks, one exclusive gateway with two branches and two end events.
// It backs `flowlane sample` and is a convenient fixture.
func Sample() Snapshot {
	return Snapshot{
		TableID: "order-intake",
		Name:    "Order intake",
		Lanes: []Lane{
			{ID: "customer", Name: "Customer", Color: "#3B82F6", Order: 0},
			{ID: "fulfilment", Name: "Fulfilment", Order: 1},
		},
		Nodes: []Node{
			{ID: "start", LaneID: "customer", Kind: KindEvent, Subtype: SubtypeStart, Name: "Order received",
				DisplayOrder: 0, NextIDs: []string{"place"}},
			{ID: "place", LaneID: "customer", Kind: KindTask, Subtype: SubtypeUser, Name: "Place order",
				DisplayOrder: 1, BeforeIDs: []string{"start"}, NextIDs: []string{"stock"}},
			{ID: "stock", LaneID: "fulfilment", Kind: KindGateway, Subtype: SubtypeExclusive, Name: "In stock?",
				DisplayOrder: 0, BeforeIDs: []string{"place"}, NextIDs: []string{"ship", "notify"},
				Conditions: map[string]string{"ship": "yes", "notify": "no"}},
			{ID: "ship", LaneID: "fulfilment", Kind: KindTask, Subtype: SubtypeManual, Name: "Ship goods",
				DisplayOrder: 1, BeforeIDs: []string{"stock"}, NextIDs: []string{"shipped"}},
			{ID: "notify", LaneID: "customer", Kind: KindTask, Subtype: SubtypeSend, Name: "Notify backorder",
				DisplayOrder: 2, BeforeIDs: []string{"stock"}, NextIDs: []string{"backordered"}},
			{ID: "shipped", LaneID: "fulfilment", Kind: KindEvent, Subtype: SubtypeEnd, Name: "Shipped",
				DisplayOrder: 2, BeforeIDs: []string{"ship"}},
			{ID: "backordered", LaneID: "customer", Kind: KindEvent, Subtype: SubtypeEnd, Name: "Backordered",
				DisplayOrder: 3, BeforeIDs: []string{"notify"}},
		},
	}
}
