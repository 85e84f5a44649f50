package types

import (
	"fmt"
	"reflect"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// ToCty converts a native Go value (or a cty.Value, returned as is) into its
// implied cty representation.
func ToCty(raw any) (cty.Value, error) {
	if v, ok := raw.(cty.Value); ok {
		return v, nil
	}
	if raw == nil {
		return cty.NilVal, fmt.Errorf("%w: nil value", flowerr.ErrTypeMismatch)
	}
	implied, err := gocty.ImpliedType(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: cannot represent %T: %v", flowerr.ErrTypeMismatch, raw, err)
	}
	v, err := gocty.ToCtyValue(raw, implied)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %v", flowerr.ErrTypeMismatch, err)
	}
	return v, nil
}

// process turns raw into a value of type want. In strict mode two different
// primitive types are never converted into each other.
func process(want cty.Type, raw any, strict bool) (cty.Value, error) {
	v, err := ToCty(raw)
	if err != nil {
		return cty.NilVal, err
	}
	if !v.IsKnown() {
		return cty.NilVal, fmt.Errorf("%w: value is unknown", flowerr.ErrTypeMismatch)
	}
	if v.IsNull() {
		return cty.NilVal, fmt.Errorf("%w: value is null", flowerr.ErrTypeMismatch)
	}
	if want == cty.DynamicPseudoType {
		return v, nil
	}
	if strict && v.Type().IsPrimitiveType() && want.IsPrimitiveType() && !v.Type().Equals(want) {
		return cty.NilVal, fmt.Errorf("%w: %s required, got %s", flowerr.ErrTypeMismatch, want.FriendlyName(), v.Type().FriendlyName())
	}

	out, err := convert.Convert(v, want)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%w: %s required: %v", flowerr.ErrTypeMismatch, want.FriendlyName(), err)
	}
	return out, nil
}

// ToList processes raw as an ordered sequence of elem values. raw may be a
// cty list, set or tuple, or any Go slice or array. The result is always a
// cty list of elem's representation, empty when raw has no elements.
func ToList(elem *Type, raw any, strict bool) (cty.Value, error) {
	items, err := sequence(raw)
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s array: %w", elem.Name, err)
	}
	vals := make([]cty.Value, 0, len(items))
	for i, item := range items {
		var (
			v   cty.Value
			err error
		)
		if strict {
			v, err = elem.Validate(item)
		} else {
			cv, cerr := ToCty(item)
			if cerr != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, cerr)
			}
			v, err = elem.Accept(cv)
		}
		if err != nil {
			return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
		}
		vals = append(vals, v)
	}
	return ListOf(elem, vals), nil
}

// ListOf builds a list of already-processed values of elem. Values of a
// dynamic element type may disagree, in which case a tuple is returned.
func ListOf(elem *Type, vals []cty.Value) cty.Value {
	if len(vals) == 0 {
		if elem.Cty == cty.DynamicPseudoType {
			return cty.EmptyTupleVal
		}
		return cty.ListValEmpty(elem.Cty)
	}
	first := vals[0].Type()
	for _, v := range vals[1:] {
		if !v.Type().Equals(first) {
			return cty.TupleVal(vals)
		}
	}
	return cty.ListVal(vals)
}

func sequence(raw any) ([]any, error) {
	if v, ok := raw.(cty.Value); ok {
		if v.IsNull() || !v.IsKnown() {
			return nil, fmt.Errorf("%w: sequence is null or unknown", flowerr.ErrTypeMismatch)
		}
		ty := v.Type()
		if !ty.IsListType() && !ty.IsSetType() && !ty.IsTupleType() {
			return nil, fmt.Errorf("%w: sequence required, got %s", flowerr.ErrTypeMismatch, ty.FriendlyName())
		}
		out := make([]any, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ev)
		}
		return out, nil
	}

	rv := reflect.ValueOf(raw)
	if !rv.IsValid() || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
		return nil, fmt.Errorf("%w: sequence required, got %T", flowerr.ErrTypeMismatch, raw)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}

// ZeroValue returns the natural default of a cty type: false, 0, "", empty
// collections, and objects whose attributes are zero values themselves.
func ZeroValue(ty cty.Type) cty.Value {
	switch {
	case ty == cty.DynamicPseudoType:
		return cty.NullVal(cty.DynamicPseudoType)
	case ty.Equals(cty.Bool):
		return cty.False
	case ty.Equals(cty.Number):
		return cty.Zero
	case ty.Equals(cty.String):
		return cty.StringVal("")
	case ty.IsListType():
		return cty.ListValEmpty(ty.ElementType())
	case ty.IsSetType():
		return cty.SetValEmpty(ty.ElementType())
	case ty.IsMapType():
		return cty.MapValEmpty(ty.ElementType())
	case ty.IsObjectType():
		attrs := make(map[string]cty.Value, len(ty.AttributeTypes()))
		for name, at := range ty.AttributeTypes() {
			attrs[name] = ZeroValue(at)
		}
		return cty.ObjectVal(attrs)
	case ty.IsTupleType():
		elems := ty.TupleElementTypes()
		if len(elems) == 0 {
			return cty.EmptyTupleVal
		}
		vals := make([]cty.Value, len(elems))
		for i, et := range elems {
			vals[i] = ZeroValue(et)
		}
		return cty.TupleVal(vals)
	default:
		return cty.NullVal(ty)
	}
}
