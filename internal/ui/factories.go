package ui

import (
	"fmt"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// NodeWrapper is what a front end draws for a node.
type NodeWrapper interface {
	Node() *node.Node
	Title() string
	Category() string
}

// PinWrapper is what a front end draws for a pin.
type PinWrapper interface {
	Pin() *pin.Pin
	Label() string
	Color() string
}

// Widget is an edit control bound to an input pin.
type Widget interface {
	Pin() *pin.Pin
	// Text renders the pin's current value.
	Text() string
	// SetText parses text and sets it on the pin.
	SetText(text string) error
}

type (
	NodeFactory   func(n *node.Node) NodeWrapper
	PinFactory    func(p *pin.Pin) PinWrapper
	WidgetFactory func(p *pin.Pin) Widget
)

// Factories maps type names to wrapper and widget factories.
type Factories struct {
	nodes   map[string]NodeFactory
	pins    map[string]PinFactory
	widgets map[string]WidgetFactory
}

// NewFactories returns factories with literal widgets for the built-in
// data types.
func NewFactories() *Factories {
	f := &Factories{
		nodes:   make(map[string]NodeFactory),
		pins:    make(map[string]PinFactory),
		widgets: make(map[string]WidgetFactory),
	}
	for _, name := range []string{types.Bool, types.Int, types.Float, types.Any} {
		f.widgets[name] = LiteralWidget
	}
	f.widgets[types.String] = TextWidget
	return f
}

func (f *Factories) RegisterNode(typeName string, factory NodeFactory) { f.nodes[typeName] = factory }
func (f *Factories) RegisterPin(typeName string, factory PinFactory)   { f.pins[typeName] = factory }
func (f *Factories) RegisterWidget(typeName string, factory WidgetFactory) {
	f.widgets[typeName] = factory
}

// NodeWrapper returns the wrapper for n, the default one if its type is unmapped.
func (f *Factories) NodeWrapper(n *node.Node) NodeWrapper {
	if factory, ok := f.nodes[n.TypeName()]; ok {
		return factory(n)
	}
	return DefaultNode(n)
}

// PinWrapper returns the wrapper for p, the default one if its type is unmapped.
func (f *Factories) PinWrapper(p *pin.Pin) PinWrapper {
	if factory, ok := f.pins[p.TypeName()]; ok {
		return factory(p)
	}
	return DefaultPin(p)
}

// InputWidget returns an edit control for an unconnected input pin. It
// reports false for outputs, connected inputs, exec pins and unmapped types.
func (f *Factories) InputWidget(p *pin.Pin) (Widget, bool) {
	if p.Direction() != pin.Input || p.Connected() || p.IsExec() {
		return nil, false
	}
	factory, ok := f.widgets[p.TypeName()]
	if !ok {
		return nil, false
	}
	return factory(p), true
}

type defaultNode struct{ n *node.Node }

// DefaultNode wraps a node with its name as title.
func DefaultNode(n *node.Node) NodeWrapper { return defaultNode{n: n} }

func (w defaultNode) Node() *node.Node { return w.n }
func (w defaultNode) Title() string    { return w.n.Name() }
func (w defaultNode) Category() string {
	if c := w.n.Meta().Category; c != "" {
		return c
	}
	return "Default"
}

type defaultPin struct{ p *pin.Pin }

// DefaultPin wraps a pin with its name as label and its type's color.
func DefaultPin(p *pin.Pin) PinWrapper { return defaultPin{p: p} }

func (w defaultPin) Pin() *pin.Pin { return w.p }
func (w defaultPin) Color() string { return w.p.Type().Color }
func (w defaultPin) Label() string {
	if w.p.Structure() == pin.Single {
		return w.p.Name()
	}
	return fmt.Sprintf("%s [%s]", w.p.Name(), w.p.Structure())
}

// boundWidget edits a pin through its public SetData and GetData.
type boundWidget struct {
	p     *pin.Pin
	parse func(text string) (cty.Value, error)
}

func (w boundWidget) Pin() *pin.Pin { return w.p }

func (w boundWidget) Text() string {
	v := w.p.GetData()
	if v.Type() == cty.String && v.IsKnown() && !v.IsNull() {
		return v.AsString()
	}
	return types.Format(v)
}

func (w boundWidget) SetText(text string) error {
	v, err := w.parse(text)
	if err != nil {
		return err
	}
	return w.p.SetData(v)
}

// LiteralWidget edits a pin with HCL literals such as `true`, `3.5` or `[1, 2]`.
func LiteralWidget(p *pin.Pin) Widget {
	return boundWidget{p: p, parse: func(text string) (cty.Value, error) {
		return types.ParseLiteral(strings.TrimSpace(text))
	}}
}

// TextWidget edits a string pin with raw text.
func TextWidget(p *pin.Pin) Widget {
	return boundWidget{p: p, parse: func(text string) (cty.Value, error) {
		return cty.StringVal(text), nil
	}}
}
