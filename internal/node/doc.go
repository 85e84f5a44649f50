/*
Package node implements the unit of computation in a graph.

A Node owns its pins, a Kind and a Behavior. Pure nodes are recomputed by the
scheduler whenever an input changes; Callable nodes only run when one of their
exec inputs fires.

Each node follows a small state machine:

	Clean -> Dirty -> Computing -> Clean
	                           \-> Dirty   (input changed during compute)
	                           \-> Failed  (compute returned an error or panicked)

A Failed node keeps its previous outputs and is skipped until Reset.
*/
package node
