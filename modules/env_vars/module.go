package env_vars

import (
	"context"
	"os"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

func (*Module) Name() string { return "env_vars" }

// OnComputeEnvVar reads the environment variable named by "name". When it
// is not set, "value" falls back to "default" and "found" is false.
func OnComputeEnvVar(_ context.Context, in node.Inputs) (node.Outputs, error) {
	var name, fallback string
	if err := in.Decode("name", &name); err != nil {
		return nil, err
	}
	if err := in.Decode("default", &fallback); err != nil {
		return nil, err
	}
	value, found := os.LookupEnv(name)
	if !found {
		value = fallback
	}
	return node.Outputs{"value": value, "found": found}, nil
}

// Register registers the EnvVar node type.
func (m *Module) Register(r *registry.Registry) error {
	return r.RegisterNode(registry.NodeType{
		Name: "EnvVar",
		Meta: node.Meta{Category: "Environment", Description: "Reads an environment variable."},
		Pins: []pin.Spec{
			{Name: "name", Type: types.String},
			{Name: "default", Type: types.String},
			{Name: "value", Type: types.String, Direction: pin.Output},
			{Name: "found", Type: types.Bool, Direction: pin.Output},
		},
		New: func() node.Behavior { return node.BehaviorFunc(OnComputeEnvVar) },
	})
}
