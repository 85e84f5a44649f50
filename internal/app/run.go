package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/diagnostics"
	"github.com/specialistvlad/nodegraph/internal/editorlink"
	"github.com/specialistvlad/nodegraph/internal/exchange"
	"github.com/specialistvlad/nodegraph/internal/nodeid"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// ErrNodesFailed is returned by Run when some nodes were left Failed.
var ErrNodesFailed = errors.New("some nodes failed")

// Run executes the main application logic based on the configuration given
// to NewApp: load, assign, evaluate, trigger and export, in that order.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.EditorURL != "" {
		sock, err := editorlink.Dial(ctx, editorlink.Options{URL: a.config.EditorURL})
		if err != nil {
			return err
		}
		defer sock.Disconnect()
		a.graph.SetObserver(diagnostics.Fanout(diagnostics.Log{}, a.recorder, editorlink.NewPublisher(sock)))
	}

	if err := a.load(ctx); err != nil {
		return err
	}
	if err := a.assign(ctx); err != nil {
		return err
	}

	result, err := a.toolbox.Run(ctx, "evaluate", a.graph)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	a.logger.Info("Graph evaluated.", "result", result)

	if err := a.trigger(ctx); err != nil {
		return err
	}

	if a.config.ExportPath != "" {
		if _, err := a.toolbox.Run(ctx, "export", a.graph); err != nil {
			return err
		}
	}

	failures, _ := a.toolbox.Run(ctx, "failures", a.graph)
	failed := a.graph.Failures()
	a.logger.Info("🏁 Run finished.", "nodes", len(a.graph.Nodes()), "connections", len(a.graph.Connections()), "failed", len(failed))
	if len(failed) > 0 {
		a.logger.Warn("Nodes left in failed state.", "failures", failures)
		return fmt.Errorf("%w: %d of %d", ErrNodesFailed, len(failed), len(a.graph.Nodes()))
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

func (a *App) load(ctx context.Context) error {
	files, err := a.formats.Find(a.config.GraphPath)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no graph documents (%v) found at %s", a.formats.Extensions(), a.config.GraphPath)
	}
	snaps, err := a.formats.ReadFiles(ctx, files...)
	if err != nil {
		return err
	}
	for i, snap := range snaps {
		if _, err := exchange.Restore(ctx, a.graph, files[i], snap); err != nil {
			return err
		}
	}
	a.logger.Info("Graphs loaded successfully.", "files", len(files), "nodes", len(a.graph.Nodes()))
	return nil
}

// assign applies the `node.pin=value` assignments. Values are HCL literals;
// text that is not a literal is taken as a string.
func (a *App) assign(ctx context.Context) error {
	var errs error
	for _, set := range a.config.Sets {
		addr, raw, err := nodeid.ParseAssignment(set)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		v, err := types.ParseLiteral(raw)
		if err != nil {
			v = cty.StringVal(raw)
		}
		errs = multierr.Append(errs, a.graph.SetValue(ctx, addr.String(), v))
	}
	if errs != nil {
		return fmt.Errorf("failed to apply assignments: %w", errs)
	}
	return nil
}

// trigger fires every configured node. Chains are independent: one failing
// does not stop the others.
func (a *App) trigger(ctx context.Context) error {
	var errs error
	for _, t := range a.config.Triggers {
		name, pinName, err := parseTrigger(t)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n, err := a.graph.NodeByName(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		report, err := a.graph.Trigger(ctx, n.ID(), pinName)
		a.logger.Info("Node triggered.", "node", name, "computed", len(report.Computed), "failed", len(report.Failed))
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		return fmt.Errorf("trigger failed: %w", errs)
	}
	return nil
}
