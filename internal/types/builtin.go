package types

import (
	"errors"

	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// Names of the built-in types.
const (
	Bool   = "BoolPin"
	Int    = "IntPin"
	Float  = "FloatPin"
	String = "StringPin"
	Any    = "AnyPin"
	Exec   = "ExecPin"
)

// Builtins returns the core data types every registry starts with.
func Builtins() []Type {
	return []Type{
		{
			Name:  Bool,
			Cty:   cty.Bool,
			Color: "#ff0000",
		},
		{
			Name:       Int,
			Cty:        cty.Number,
			Color:      "#00a86b",
			ConvertsTo: []string{Float, String},
			Check:      requireWholeNumber,
		},
		{
			Name:       Float,
			Cty:        cty.Number,
			Color:      "#60a917",
			ConvertsTo: []string{String},
		},
		{
			Name:  String,
			Cty:   cty.String,
			Color: "#ff087f",
		},
		{
			Name:       Any,
			Cty:        cty.DynamicPseudoType,
			Color:      "#c8c8c8",
			AcceptsAny: true,
		},
		{
			Name:  Exec,
			Cty:   cty.Bool,
			Color: "#ffffff",
			Exec:  true,
		},
	}
}

// RegisterBuiltins adds the built-in types to r.
func RegisterBuiltins(r *Registry) error {
	var err error
	for _, t := range Builtins() {
		err = multierr.Append(err, r.Register(t))
	}
	return err
}

func requireWholeNumber(v cty.Value) error {
	if !v.AsBigFloat().IsInt() {
		return errors.New("a whole number is required")
	}
	return nil
}
