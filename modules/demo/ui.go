package demo

import (
	"strconv"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/specialistvlad/nodegraph/internal/ui"
	"github.com/zclconf/go-cty/cty"
)

// registerUI installs the DemoNode wrapper, the DemoPin wrapper and the
// DemoPin check box widget.
func registerUI(f *ui.Factories) {
	f.RegisterNode("DemoNode", newNodeWrapper)
	f.RegisterPin(PinType, newPinWrapper)
	f.RegisterWidget(PinType, NewCheckBox)
}

type nodeWrapper struct {
	ui.NodeWrapper
}

func newNodeWrapper(n *node.Node) ui.NodeWrapper {
	return nodeWrapper{NodeWrapper: ui.DefaultNode(n)}
}

// Title shows the node name with its type, since every DemoNode looks alike.
func (w nodeWrapper) Title() string {
	return w.Node().Name() + " (" + w.Node().TypeName() + ")"
}

type pinWrapper struct {
	ui.PinWrapper
}

func newPinWrapper(p *pin.Pin) ui.PinWrapper {
	return pinWrapper{PinWrapper: ui.DefaultPin(p)}
}

// Label shows the held value next to the pin name.
func (w pinWrapper) Label() string {
	return w.PinWrapper.Label() + " = " + types.Format(Unwrap(w.Pin().GetData()))
}

// CheckBox edits a DemoPin as a boolean.
type CheckBox struct {
	p *pin.Pin
}

// NewCheckBox binds a check box to p.
func NewCheckBox(p *pin.Pin) ui.Widget {
	return CheckBox{p: p}
}

func (c CheckBox) Pin() *pin.Pin { return c.p }

// Checked reports whether the wrapped value is true.
func (c CheckBox) Checked() bool {
	v := Unwrap(c.p.GetData())
	return v.Type() == cty.Bool && v.IsKnown() && !v.IsNull() && v.True()
}

// SetChecked stores a wrapped boolean on the pin.
func (c CheckBox) SetChecked(checked bool) error {
	return c.p.SetData(cty.BoolVal(checked))
}

func (c CheckBox) Text() string {
	if v := Unwrap(c.p.GetData()); v.Type() != cty.Bool {
		return types.Format(v)
	}
	return strconv.FormatBool(c.Checked())
}

func (c CheckBox) SetText(text string) error {
	checked, err := strconv.ParseBool(strings.TrimSpace(text))
	if err != nil {
		return err
	}
	return c.SetChecked(checked)
}
