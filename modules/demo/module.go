package demo

import (
	"github.com/specialistvlad/nodegraph/internal/registry"
	"go.uber.org/multierr"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func (*Module) Name() string { return "demo" }

// Register adds the DemoPin type, DemoNode, the DemoLib nodes and their UI
// factories.
func (*Module) Register(r *registry.Registry) error {
	if err := r.RegisterType(Pin()); err != nil {
		return err
	}
	lib, err := Lib()
	if err != nil {
		return err
	}
	errs := r.RegisterNode(DemoNode())
	for _, nt := range lib {
		errs = multierr.Append(errs, r.RegisterNode(nt))
	}
	if errs != nil {
		return errs
	}
	registerUI(r.UI)
	return nil
}
