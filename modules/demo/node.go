package demo

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// Category groups the DemoNode in the node box.
const Category = "Generated from wizard"

// DemoNode outputs the negation of its BoolPin input. Extra single BoolPin
// pins may be added to it at edit time.
func DemoNode() registry.NodeType {
	return registry.NodeType{
		Name: "DemoNode",
		Kind: node.Pure,
		Meta: node.Meta{
			Category:    Category,
			Description: "Negates a boolean.",
		},
		Pins: []pin.Spec{
			{Name: "inp", Type: types.Bool},
			{Name: "out", Type: types.Bool, Direction: pin.Output},
		},
		Suggestions: []node.Suggestion{{Type: types.Bool, Structure: pin.Single}},
		New: func() node.Behavior {
			return node.BehaviorFunc(computeNot)
		},
	}
}

func computeNot(_ context.Context, in node.Inputs) (node.Outputs, error) {
	var v bool
	if err := in.Decode("inp", &v); err != nil {
		return nil, err
	}
	return node.Outputs{"out": !v}, nil
}
