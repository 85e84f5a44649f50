package flow

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// OnPrint logs the "value" input and fires "then". Unset values print as
// "(null)".
func OnPrint(ctx context.Context, in node.Inputs) (node.Outputs, error) {
	v := in.Value("value")
	text := "(null)"
	if v != cty.NilVal && !v.IsNull() {
		text = types.Format(v)
	}
	ctxlog.FromContext(ctx).Info("Printing input.", "value", text)
	return node.Outputs{"then": true}, nil
}

// Print writes a value to the log.
func Print() registry.NodeType {
	return registry.NodeType{
		Name: "Print",
		Meta: node.Meta{Description: "Logs a value.", Keywords: []string{"log", "debug"}},
		Pins: []pin.Spec{
			execIn,
			{Name: "value", Type: types.Any},
			thenOut,
		},
		New: func() node.Behavior { return node.BehaviorFunc(OnPrint) },
	}
}
