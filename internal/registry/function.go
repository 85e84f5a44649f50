package registry

import (
	"context"
	"fmt"
	"reflect"

	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

var (
	errorType = reflect.TypeFor[error]()
	ctyType   = reflect.TypeFor[cty.Value]()
	ctxType   = reflect.TypeFor[context.Context]()
)

// FunctionSpec names the pins of a function-library node.
type FunctionSpec struct {
	// Inputs names the parameters in order, context excluded.
	Inputs []string
	// Output names the result pin. Defaults to "result".
	Output string
	Meta   node.Meta
}

// Function turns a Go function into a pure node type. Pin types are inferred
// from the parameter and result types: bool, int, float64, string and slices
// of those, plus cty.Value for AnyPin. The function may take a leading
// context.Context and may return a trailing error.
func Function(name string, fn any, spec FunctionSpec) (NodeType, error) {
	fv := reflect.ValueOf(fn)
	ft := fv.Type()
	if ft.Kind() != reflect.Func {
		return NodeType{}, fmt.Errorf("function node %q: %T is not a function", name, fn)
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == ctxType {
		first = 1
	}
	if ft.NumIn()-first != len(spec.Inputs) {
		return NodeType{}, fmt.Errorf("function node %q: %d parameters but %d input names", name, ft.NumIn()-first, len(spec.Inputs))
	}
	withErr := ft.NumOut() == 2 && ft.Out(1) == errorType
	if ft.NumOut() != 1 && !withErr {
		return NodeType{}, fmt.Errorf("function node %q: must return one value and optionally an error", name)
	}
	if spec.Output == "" {
		spec.Output = "result"
	}

	pins := make([]pin.Spec, 0, len(spec.Inputs)+1)
	params := make([]reflect.Type, 0, len(spec.Inputs))
	for i, inputName := range spec.Inputs {
		pt := ft.In(first + i)
		typeName, structure, err := pinTypeOf(pt)
		if err != nil {
			return NodeType{}, fmt.Errorf("function node %q input %q: %w", name, inputName, err)
		}
		pins = append(pins, pin.Spec{Name: inputName, Type: typeName, Structure: structure})
		params = append(params, pt)
	}
	outName, outStructure, err := pinTypeOf(ft.Out(0))
	if err != nil {
		return NodeType{}, fmt.Errorf("function node %q result: %w", name, err)
	}
	pins = append(pins, pin.Spec{Name: spec.Output, Type: outName, Direction: pin.Output, Structure: outStructure})

	call := func(ctx context.Context, in node.Inputs) (node.Outputs, error) {
		args := make([]reflect.Value, 0, ft.NumIn())
		if first == 1 {
			args = append(args, reflect.ValueOf(ctx))
		}
		for i, inputName := range spec.Inputs {
			v, err := in.Get(inputName)
			if err != nil {
				return nil, err
			}
			arg, err := fromCty(v, params[i])
			if err != nil {
				return nil, fmt.Errorf("input %q: %w", inputName, err)
			}
			args = append(args, arg)
		}

		results := fv.Call(args)
		if withErr && !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}
		return node.Outputs{spec.Output: results[0].Interface()}, nil
	}

	return NodeType{
		Name: name,
		Kind: node.Pure,
		Meta: spec.Meta,
		Pins: pins,
		New:  func() node.Behavior { return node.BehaviorFunc(call) },
	}, nil
}

func pinTypeOf(t reflect.Type) (string, pin.Structure, error) {
	if t.Kind() == reflect.Slice && t != ctyType {
		name, structure, err := pinTypeOf(t.Elem())
		if err != nil {
			return "", 0, err
		}
		if structure != pin.Single {
			return "", 0, fmt.Errorf("nested slices are not supported")
		}
		return name, pin.Array, nil
	}
	switch {
	case t == ctyType:
		return types.Any, pin.Single, nil
	case t.Kind() == reflect.Bool:
		return types.Bool, pin.Single, nil
	case t.Kind() >= reflect.Int && t.Kind() <= reflect.Int64:
		return types.Int, pin.Single, nil
	case t.Kind() == reflect.Float32 || t.Kind() == reflect.Float64:
		return types.Float, pin.Single, nil
	case t.Kind() == reflect.String:
		return types.String, pin.Single, nil
	default:
		return "", 0, fmt.Errorf("unsupported Go type %s", t)
	}
}

func fromCty(v cty.Value, t reflect.Type) (reflect.Value, error) {
	if t == ctyType {
		return reflect.ValueOf(v), nil
	}
	ptr := reflect.New(t)
	if err := gocty.FromCtyValue(v, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
