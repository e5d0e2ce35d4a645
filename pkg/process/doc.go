// Package process defines the input records of a diagram export: process
// nodes, swimlanes and the per-table snapshot that groups them.
//
// A [Snapshot] is the immutable input of one export call. It is produced by a
// persistence collaborator (see package source) or decoded from a JSON or
// YAML file with [ReadFile]. Files may hold a single snapshot or a [Bundle]
// of several process tables:
//
//	tables:
//	  - tableId: order-intake
//	    lanes:
//	      - {id: sales, name: Sales, color: "#3B82F6", order: 0}
//	    nodes:
//	      - {id: start, laneId: sales, elementKind: event, elementSubtype: start, nextIds: [check]}
//	      - {id: check, laneId: sales, elementKind: task, elementSubtype: user, beforeIds: [start]}
//
// Records are validated structurally with [Snapshot.Validate]; graph-level
// integrity (lane references, adjacency symmetry) is the job of package
// flowgraph.
package process
