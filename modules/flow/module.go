// Package flow provides the execution-flow nodes. They are callable: they
// run when an exec input fires, not when their data inputs change, and they
// decide which exec outputs fire next.
package flow

import (
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// Category groups the flow nodes in the node box.
const Category = "Flow"

// Module implements the registry.Module interface for this package.
type Module struct{}

func (*Module) Name() string { return "flow" }

// Register adds Start, Branch, Sequence, Counter and Print.
func (*Module) Register(r *registry.Registry) error {
	for _, nt := range []registry.NodeType{Start(), Branch(), Sequence(), Counter(), Print()} {
		nt.Kind = node.Callable
		nt.Meta.Category = Category
		if err := r.RegisterNode(nt); err != nil {
			return err
		}
	}
	return nil
}

var (
	execIn  = pin.Spec{Name: "exec", Type: types.Exec, Structure: pin.Multi}
	thenOut = pin.Spec{Name: "then", Type: types.Exec, Direction: pin.Output}
)

func execOut(name string) pin.Spec {
	return pin.Spec{Name: name, Type: types.Exec, Direction: pin.Output}
}
