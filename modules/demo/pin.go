package demo

import (
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
)

// PinType is the name of the DemoPin type.
const PinType = "DemoPin"

// PinColor is the display color of DemoPin.
const PinColor = "#c8c832"

// Pin returns the DemoPin type. A DemoPin holds any value inside an object
// with a single "value" attribute; values arriving unwrapped are wrapped.
// BoolPin outputs may feed DemoPin inputs.
func Pin() types.Type {
	return types.Type{
		Name:        PinType,
		Cty:         cty.DynamicPseudoType,
		Default:     false,
		Color:       PinColor,
		AcceptsFrom: []string{types.Bool},
		Process:     wrap,
	}
}

// Wrap puts v in a DemoPin wrapper, leaving an existing wrapper as is.
func Wrap(v cty.Value) cty.Value {
	if IsWrapped(v) {
		return v
	}
	if v == cty.NilVal {
		v = cty.NullVal(cty.DynamicPseudoType)
	}
	return cty.ObjectVal(map[string]cty.Value{"value": v})
}

// Unwrap returns the value held by a DemoPin wrapper, or v itself when it is
// not one.
func Unwrap(v cty.Value) cty.Value {
	if !IsWrapped(v) {
		return v
	}
	return v.GetAttr("value")
}

// IsWrapped reports whether v is a DemoPin wrapper.
func IsWrapped(v cty.Value) bool {
	if v == cty.NilVal || !v.IsKnown() || v.IsNull() {
		return false
	}
	ty := v.Type()
	return ty.IsObjectType() && len(ty.AttributeTypes()) == 1 && ty.HasAttribute("value")
}

func wrap(raw any) (cty.Value, error) {
	if raw == nil {
		return Wrap(cty.NilVal), nil
	}
	v, err := types.ToCty(raw)
	if err != nil {
		return cty.NilVal, err
	}
	if !v.IsWhollyKnown() {
		return cty.NilVal, fmt.Errorf("%w: value is unknown", flowerr.ErrTypeMismatch)
	}
	return Wrap(v), nil
}
