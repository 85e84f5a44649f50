package node

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Behavior is the node-specific logic. Compute receives a read-only view of
// the settled inputs and returns the values to write, keyed by output pin
// name. Outputs left out of the map keep their current value. An exec output
// fires when it is set to true.
type Behavior interface {
	Compute(ctx context.Context, in Inputs) (Outputs, error)
}

// BehaviorFunc adapts a plain function to Behavior.
type BehaviorFunc func(ctx context.Context, in Inputs) (Outputs, error)

func (f BehaviorFunc) Compute(ctx context.Context, in Inputs) (Outputs, error) {
	return f(ctx, in)
}

// Outputs maps output pin names to raw values.
type Outputs map[string]any

// Inputs is the view of input values a compute call works with. Values are
// captured when the call starts, so writes happening during the call are not
// visible to it.
type Inputs struct {
	node    string
	trigger string
	names   []string
	values  map[string]cty.Value
}

func (n *Node) snapshotInputs(trigger string) Inputs {
	in := Inputs{
		node:    n.name,
		trigger: trigger,
		names:   make([]string, 0, len(n.inputs)),
		values:  make(map[string]cty.Value, len(n.inputs)),
	}
	for _, p := range n.inputs {
		if p.IsExec() {
			continue
		}
		in.names = append(in.names, p.Name())
		in.values[p.Name()] = p.GetData()
	}
	return in
}

// NewInputs builds an input view from plain values, for exercising a
// Behavior outside a graph.
func NewInputs(trigger string, values map[string]cty.Value) Inputs {
	in := Inputs{trigger: trigger, values: values}
	for name := range values {
		in.names = append(in.names, name)
	}
	slices.Sort(in.names)
	return in
}

// Trigger names the exec input that fired, or "" for a pure evaluation.
func (in Inputs) Trigger() string { return in.trigger }

// Names lists the data inputs in pin order.
func (in Inputs) Names() []string { return slices.Clone(in.names) }

// Get returns the value of a data input.
func (in Inputs) Get(name string) (cty.Value, error) {
	v, ok := in.values[name]
	if !ok {
		return cty.NilVal, fmt.Errorf("%w: input %q of %s", flowerr.ErrUnknownPin, name, in.node)
	}
	return v, nil
}

// Value is like Get but returns cty.NilVal for an unknown input.
func (in Inputs) Value(name string) cty.Value {
	return in.values[name]
}

// Decode converts an input value into the Go value target points to.
func (in Inputs) Decode(name string, target any) error {
	v, err := in.Get(name)
	if err != nil {
		return err
	}
	if err := gocty.FromCtyValue(v, target); err != nil {
		return fmt.Errorf("input %q: %w", name, err)
	}
	return nil
}
