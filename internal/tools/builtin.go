package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/exchange"
	"github.com/specialistvlad/nodegraph/internal/graph"
)

// EvaluateTool runs one scheduler pass.
type EvaluateTool struct{}

func (EvaluateTool) Name() string    { return "evaluate" }
func (EvaluateTool) ToolTip() string { return "Compute every dirty node" }
func (EvaluateTool) Kind() Kind      { return Shelf }

func (EvaluateTool) Run(ctx context.Context, g *graph.Graph) (string, error) {
	report, err := g.Evaluate(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("computed %d, failed %d", len(report.Computed), len(report.Failed)), nil
}

// ResetFailedTool resets every Failed node so the next pass retries it.
type ResetFailedTool struct{}

func (ResetFailedTool) Name() string    { return "reset-failed" }
func (ResetFailedTool) ToolTip() string { return "Clear failures and retry the failed nodes" }
func (ResetFailedTool) Kind() Kind      { return Shelf }

func (ResetFailedTool) Run(ctx context.Context, g *graph.Graph) (string, error) {
	ids := failedIDs(g)
	for _, id := range ids {
		if err := g.ResetNode(ctx, id); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("reset %d", len(ids)), nil
}

// ExportTool writes the graph to Path in the format its extension selects.
type ExportTool struct {
	Formats *exchange.Formats
	Path    string
}

func (ExportTool) Name() string    { return "export" }
func (ExportTool) ToolTip() string { return "Export the graph to a file" }
func (ExportTool) Kind() Kind      { return Shelf }

func (t ExportTool) Run(ctx context.Context, g *graph.Graph) (string, error) {
	if t.Path == "" {
		return "", fmt.Errorf("no export path")
	}
	if err := t.Formats.ExportFile(ctx, g, t.Path); err != nil {
		return "", err
	}
	return "exported to " + t.Path, nil
}

// FailuresTool is a panel listing the Failed nodes and their errors.
type FailuresTool struct{}

func (FailuresTool) Name() string    { return "failures" }
func (FailuresTool) ToolTip() string { return "Nodes whose last compute failed" }
func (FailuresTool) Kind() Kind      { return Dock }

func (FailuresTool) Run(_ context.Context, g *graph.Graph) (string, error) {
	failures := g.Failures()
	if len(failures) == 0 {
		return "no failures", nil
	}
	var b strings.Builder
	for _, id := range failedIDs(g) {
		n, err := g.Node(id)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, "%s (%s): %v\n", n.Name(), n.TypeName(), failures[id])
	}
	return b.String(), nil
}

// failedIDs lists the failed node ids in node creation order.
func failedIDs(g *graph.Graph) []string {
	failures := g.Failures()
	var ids []string
	for _, n := range g.Nodes() {
		if _, ok := failures[n.ID()]; ok {
			ids = append(ids, n.ID())
		}
	}
	return ids
}

// Defaults returns the built-in tools. The export tool writes to exportPath.
func Defaults(formats *exchange.Formats, exportPath string) []Tool {
	return []Tool{
		EvaluateTool{},
		ResetFailedTool{},
		ExportTool{Formats: formats, Path: exportPath},
		FailuresTool{},
	}
}
