package demo

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
)

// LibCategory groups the DemoLib nodes in the node box.
const LibCategory = "DemoLib"

// DefaultGreeting is the default word of the greet node.
const DefaultGreeting = "Greet!"

type libFunc struct {
	name   string
	fn     any
	inputs []string
	output string
	// outType overrides the inferred type of the output pin.
	outType string
}

var library = []libFunc{
	{name: "and", fn: func(a, b bool) bool { return a && b }, inputs: []string{"a", "b"}},
	{name: "or", fn: func(a, b bool) bool { return a || b }, inputs: []string{"a", "b"}},
	{name: "add", fn: func(a, b int) int { return a + b }, inputs: []string{"a", "b"}},
	{name: "concat", fn: func(a, b string) string { return a + b }, inputs: []string{"a", "b"}},
	{name: "demoWrap", fn: Wrap, inputs: []string{"value"}, output: "out", outType: PinType},
}

// Lib returns the DemoLib node types.
func Lib() ([]registry.NodeType, error) {
	out := make([]registry.NodeType, 0, len(library)+1)
	for _, f := range library {
		nt, err := registry.Function(f.name, f.fn, registry.FunctionSpec{
			Inputs: f.inputs,
			Output: f.output,
			Meta:   node.Meta{Category: LibCategory},
		})
		if err != nil {
			return nil, err
		}
		if f.outType != "" {
			nt.Pins[len(nt.Pins)-1].Type = f.outType
		}
		out = append(out, nt)
	}
	return append(out, greet()), nil
}

// greet logs its word each time it is triggered.
func greet() registry.NodeType {
	return registry.NodeType{
		Name: "greet",
		Kind: node.Callable,
		Meta: node.Meta{Category: LibCategory},
		Pins: []pin.Spec{
			{Name: "exec", Type: types.Exec, Structure: pin.Multi},
			{Name: "word", Type: types.String, Default: DefaultGreeting},
			{Name: "then", Type: types.Exec, Direction: pin.Output},
		},
		New: func() node.Behavior {
			return node.BehaviorFunc(func(ctx context.Context, in node.Inputs) (node.Outputs, error) {
				var word string
				if err := in.Decode("word", &word); err != nil {
					return nil, err
				}
				ctxlog.FromContext(ctx).Info("Greeting.", "word", word)
				return node.Outputs{"then": true}, nil
			})
		},
	}
}
