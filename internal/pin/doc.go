/*
Package pin implements the typed data terminals that nodes expose.

A Pin belongs to exactly one node (its Owner) and carries a direction, a
registered type, a structure (Single, Array or Multi) and a current value held
as a cty.Value in the type's canonical representation.

Writing a value never computes anything. SetData validates the raw value,
stores it and marks the owner dirty; on an output pin the value is then pushed
to every connected input, which marks those owners dirty as well. Deciding
what to recompute, and when, is left to the graph's scheduler, so any number
of writes before a pass collapse into a single recompute.

Connections are created and removed by the graph through Attach and Detach.
Disconnecting an input reverts it to its default value.
*/
package pin
