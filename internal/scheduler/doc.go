// Package scheduler decides the order in which dirty pure nodes are computed.
//
// # How It Works
//
// The scheduler keeps its own dependency graph of node ids. An edge A -> B
// means B reads a value produced by A, so A must be computed first. Only data
// connections between pure nodes become edges; exec connections and callable
// nodes never take part in automatic scheduling.
//
// Order returns every node in a deterministic topological order computed with
// Kahn's algorithm. Among nodes that are ready at the same time, the one
// added to the scheduler first wins, so repeated runs over the same graph
// compute nodes in the same sequence. The order is cached and recomputed only
// after a structural change.
//
// # Cycles
//
// Pure dataflow must be a DAG. PathBetween lets the caller check whether a new
// edge would close a cycle before it is added, and report the nodes on it.
package scheduler
