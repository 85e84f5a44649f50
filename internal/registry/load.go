package registry

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"go.uber.org/multierr"
)

// Load registers every module, validates the result and seals the type
// registry. Errors from all modules are reported together.
func (r *Registry) Load(ctx context.Context, modules ...Module) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Registry loading modules...", "count", len(modules))

	var errs error
	for _, m := range modules {
		if err := m.Register(r); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("module %q: %w", m.Name(), err))
			continue
		}
		r.modules = append(r.modules, m.Name())
		logger.Debug("Module registered.", "module", m.Name())
	}
	if errs != nil {
		return errs
	}

	if err := r.Validate(ctx); err != nil {
		return err
	}
	r.Types.Seal()

	logger.Info("Registry loaded successfully.", "modules", len(r.modules), "node_types", len(r.order), "pin_types", len(r.Types.Names()))
	return nil
}
