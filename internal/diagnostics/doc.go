// Package diagnostics holds the graph observers that surface what a graph
// does to the outside world.
//
// # Collectors
//
//   - Log writes every event to the slog logger carried in the context.
//     Compute failures are logged at Warn with the failing node's identity
//     and the underlying cause; everything else is Debug.
//   - Recorder keeps the latest status, error and compute count of every
//     node in memory, for tools and tests that ask "what happened to X".
//   - Fanout forwards each event to several observers in order.
//
// # Concurrency Model
//
// Observers are called synchronously on the goroutine driving the graph.
// The Recorder stores its data in sync.Maps so that a UI or an editor link
// may read it from another goroutine while a pass is running.
package diagnostics
