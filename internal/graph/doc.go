// Package graph owns the nodes and connections of a dataflow graph and
// decides when nodes compute.
//
// # Why Graph Package Exists
//
// Pins only record values and mark their owners dirty; nodes only know how
// to compute themselves. The Graph is the single place that knows the whole
// structure. It validates every structural change before mutating anything,
// keeps the work queue of dirty nodes, and drives computation.
//
// # Structure
//
// Nodes are created from registered types with CreateNode (or added ready
// made with Add) and removed with DestroyNode, which first removes every
// connection touching the node. ConnectPins validates, in order:
//
//  1. both pins belong to nodes of this graph (ErrUnknownPin)
//  2. the first pin is an output and the second an input (ErrDirectionMismatch)
//  3. the pins belong to different nodes (ErrSelfConnection)
//  4. the pins are not already connected (ErrAlreadyConnected)
//  5. the input has room for one more connection (ErrPinOccupied)
//  6. the types and structures are compatible (ErrIncompatibleType)
//  7. a data connection between pure nodes closes no cycle (ErrCycleDetected)
//
// A failed check leaves the graph untouched.
//
// # Execution Models
//
// **Pure nodes** recompute from their inputs. Writing a value marks nodes
// dirty; Evaluate then computes each dirty pure node once, in the
// scheduler's deterministic topological order, so any number of writes
// before a pass result in a single compute per node.
//
// **Callable nodes** run only when Trigger fires one of their exec inputs.
// The chain of exec outputs that fire in turn is followed depth first. Exec
// connections may form loops; a chain longer than the configured maximum
// depth stops with ErrExecutionDepthExceeded while other chains go on.
// Pure nodes are settled before each callable node runs, so it always reads
// current values.
//
// # Failures
//
// A node whose compute fails is recorded in Failures, reported to the
// Observer and skipped until ResetNode. Its outputs keep their last good
// values and the rest of the pass continues. A pass can be cancelled through
// its context between two node computations; nodes not reached stay dirty.
//
// # Thread-Safety
//
// A Graph is not safe for concurrent use. All calls, including those made
// from inside node computations, must come from one goroutine at a time.
package graph
