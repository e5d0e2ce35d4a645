// Package flowgraph turns the flat records of a process table into a
// validated, lane-partitioned flow graph.
//
// [Build] is the first pipeline stage. It checks every integrity rule of the
// input before anything is laid out:
//
//   - node and lane ids are unique, lane order values are unique
//   - every node references an existing lane
//   - every nextIds/beforeIds entry references an existing node
//   - adjacency lists mirror each other (B in A.nextIds exactly when A is in
//     B.beforeIds)
//
// All violations are collected and reported together in a single INTEGRITY
// error. Cycles are not an integrity violation by default: back edges are
// reported by [Graph.FeedbackEdges] and routed by the layout engine as
// feedback edges. Set [Options.RejectCycles] to refuse them.
//
// Edges are derived from nextIds only, one per (source, target) pair, and
// nodes are addressed through an id to index table built once per call. The
// returned [Graph] is immutable.
package flowgraph
