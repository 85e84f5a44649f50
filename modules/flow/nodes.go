package flow

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

func fire(names ...string) node.Outputs {
	out := make(node.Outputs, len(names))
	for _, name := range names {
		out[name] = true
	}
	return out
}

// Start is an entry point. It has no exec input and fires "then".
func Start() registry.NodeType {
	return registry.NodeType{
		Name: "Start",
		Meta: node.Meta{Description: "Entry point of an execution chain."},
		Pins: []pin.Spec{thenOut},
		New: func() node.Behavior {
			return node.BehaviorFunc(func(context.Context, node.Inputs) (node.Outputs, error) {
				return fire("then"), nil
			})
		},
	}
}

// Branch fires "then" when its condition is true and "else" otherwise.
func Branch() registry.NodeType {
	return registry.NodeType{
		Name: "Branch",
		Meta: node.Meta{Description: "Chooses an exec output from a condition.", Keywords: []string{"if"}},
		Pins: []pin.Spec{
			execIn,
			{Name: "condition", Type: types.Bool},
			thenOut,
			execOut("else"),
		},
		New: func() node.Behavior {
			return node.BehaviorFunc(func(_ context.Context, in node.Inputs) (node.Outputs, error) {
				var cond bool
				if err := in.Decode("condition", &cond); err != nil {
					return nil, err
				}
				if cond {
					return fire("then"), nil
				}
				return fire("else"), nil
			})
		},
	}
}

// SequenceOutputs is the number of exec outputs of a Sequence node.
const SequenceOutputs = 2

// Sequence fires then_0, then_1, ... one after the other. Each output's
// chain runs to its end before the next output's chain starts.
func Sequence() registry.NodeType {
	pins := []pin.Spec{execIn}
	names := make([]string, SequenceOutputs)
	for i := range names {
		names[i] = fmt.Sprintf("then_%d", i)
		pins = append(pins, execOut(names[i]))
	}
	return registry.NodeType{
		Name: "Sequence",
		Meta: node.Meta{Description: "Fires its exec outputs in order."},
		Pins: pins,
		New: func() node.Behavior {
			return node.BehaviorFunc(func(context.Context, node.Inputs) (node.Outputs, error) {
				return fire(names...), nil
			})
		},
	}
}
