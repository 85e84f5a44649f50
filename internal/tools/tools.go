package tools

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/graph"
)

// Kind tells how the editor presents a tool.
type Kind int

const (
	// Shelf tools are toolbar buttons performing a one-off action.
	Shelf Kind = iota
	// Dock tools are panels showing information about the graph.
	Dock
)

func (k Kind) String() string {
	if k == Dock {
		return "dock"
	}
	return "shelf"
}

// Tool is an editor action. Run returns a short text for the status bar or
// the panel body.
type Tool interface {
	Name() string
	ToolTip() string
	Kind() Kind
	Run(ctx context.Context, g *graph.Graph) (string, error)
}

// Toolbox holds the registered tools in registration order.
type Toolbox struct {
	tools map[string]Tool
	order []string
}

// NewToolbox creates a toolbox holding tools.
func NewToolbox(tools ...Tool) (*Toolbox, error) {
	tb := &Toolbox{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := tb.Register(t); err != nil {
			return nil, err
		}
	}
	return tb, nil
}

// Register adds a tool. Names are unique.
func (tb *Toolbox) Register(t Tool) error {
	if _, exists := tb.tools[t.Name()]; exists {
		return fmt.Errorf("tool %q is already registered", t.Name())
	}
	tb.tools[t.Name()] = t
	tb.order = append(tb.order, t.Name())
	return nil
}

// Names lists the tools of a kind in registration order.
func (tb *Toolbox) Names(kind Kind) []string {
	return slices.DeleteFunc(slices.Clone(tb.order), func(name string) bool {
		return tb.tools[name].Kind() != kind
	})
}

// Get returns a tool by name.
func (tb *Toolbox) Get(name string) (Tool, error) {
	t, ok := tb.tools[name]
	if !ok {
		return nil, fmt.Errorf("unknown tool %q", name)
	}
	return t, nil
}

// Run runs a tool by name against g.
func (tb *Toolbox) Run(ctx context.Context, name string, g *graph.Graph) (string, error) {
	t, err := tb.Get(name)
	if err != nil {
		return "", err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Running tool.", "tool", name, "kind", t.Kind())
	msg, err := t.Run(ctx, g)
	if err != nil {
		return "", fmt.Errorf("tool %q: %w", name, err)
	}
	logger.Debug("Tool finished.", "tool", name, "result", msg)
	return msg, nil
}
