package flow

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// counter is stateful: the count survives between calls and belongs to one
// node instance.
type counter struct {
	count int
}

func (c *counter) Compute(_ context.Context, in node.Inputs) (node.Outputs, error) {
	if in.Trigger() == "reset" {
		c.count = 0
		return node.Outputs{"count": c.count}, nil
	}
	c.count++
	return node.Outputs{"count": c.count, "then": true}, nil
}

// Counter counts how many times "exec" fired and publishes the total on
// "count" before firing "then". Firing "reset" sets the total back to zero
// without firing "then".
func Counter() registry.NodeType {
	return registry.NodeType{
		Name:     "Counter",
		Meta:     node.Meta{Description: "Counts executions."},
		Stateful: true,
		Pins: []pin.Spec{
			execIn,
			{Name: "reset", Type: types.Exec, Structure: pin.Multi},
			{Name: "count", Type: types.Int, Direction: pin.Output},
			thenOut,
		},
		New: func() node.Behavior { return &counter{} },
	}
}
