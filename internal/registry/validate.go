package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// Validate checks every node type against the pin types: each declared pin
// must be creatable, exec pins belong to callable nodes only, and suggested
// dynamic pins must use registered types.
func (r *Registry) Validate(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)
	var errs error

	for _, name := range r.order {
		nt := r.nodeTypes[name]

		if _, err := r.Instantiate("validate", nt.Name, nt.Name); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		for _, spec := range nt.Pins {
			typ, err := r.Types.Lookup(spec.Type)
			if err != nil {
				continue
			}
			if typ.Exec && nt.Kind != node.Callable {
				errs = multierr.Append(errs, fmt.Errorf("node type %q: exec pin %q on a pure node", nt.Name, spec.Name))
			}
			if spec.Direction == pin.Input && typ.Cty == cty.DynamicPseudoType {
				logger.Debug("Node type has an input of a dynamic type, values are not checked.", "type", nt.Name, "pin", spec.Name)
			}
		}

		for _, s := range nt.Suggestions {
			if _, err := r.Types.Lookup(s.Type); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("node type %q suggestion: %w", nt.Name, err))
			}
		}
	}

	if errs != nil {
		return fmt.Errorf("registry validation failed: %w", errs)
	}
	return nil
}
