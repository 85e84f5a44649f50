package testutil

import (
	"context"
	"errors"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// ErrFail is returned by every Fail node.
var ErrFail = errors.New("fail node always fails")

// LogicModule registers a small set of boolean nodes for tests:
//
//   - Const: a pure source with one BoolPin output "out"
//   - Not: BoolPin "inp" to BoolPin "out", logical NOT
//   - Fail: BoolPin "inp" to BoolPin "out", always returns ErrFail
//   - Fire: a callable entry point firing its exec output "then"
type LogicModule struct{}

func (LogicModule) Name() string { return "logic" }

func (LogicModule) Register(r *registry.Registry) error {
	boolIO := []pin.Spec{
		{Name: "inp", Type: types.Bool},
		{Name: "out", Type: types.Bool, Direction: pin.Output},
	}
	nodeTypes := []registry.NodeType{
		{
			Name: "Const",
			Pins: []pin.Spec{{Name: "out", Type: types.Bool, Direction: pin.Output}},
		},
		{
			Name: "Not",
			Pins: boolIO,
			New: func() node.Behavior {
				return node.BehaviorFunc(func(_ context.Context, in node.Inputs) (node.Outputs, error) {
					return node.Outputs{"out": in.Value("inp").Not()}, nil
				})
			},
		},
		{
			Name: "Fail",
			Pins: boolIO,
			New: func() node.Behavior {
				return node.BehaviorFunc(func(context.Context, node.Inputs) (node.Outputs, error) {
					return nil, ErrFail
				})
			},
		},
		{
			Name: "Fire",
			Kind: node.Callable,
			Pins: []pin.Spec{{Name: "then", Type: types.Exec, Direction: pin.Output}},
			New: func() node.Behavior {
				return node.BehaviorFunc(func(context.Context, node.Inputs) (node.Outputs, error) {
					return node.Outputs{"then": true}, nil
				})
			},
		},
	}
	for _, nt := range nodeTypes {
		if err := r.RegisterNode(nt); err != nil {
			return err
		}
	}
	return nil
}
