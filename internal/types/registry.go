// Package types implements the pin data-type registry.
//
// Every pin in a graph is tagged with the name of a registered Type. A Type
// declares its canonical internal representation as a cty.Type, a default
// value, an opaque display color for UI collaborators, and the rules under
// which it may be connected to other types. Compatibility is configuration:
// a new type declares the types it converts to (ConvertsTo) and the types it
// accepts (AcceptsFrom) without the core knowing about specific pairs.
//
// The registry is filled once at process start and sealed when the first
// graph is built from it. After sealing it is read-only, which makes it safe
// to share between graphs.
package types

import (
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/zclconf/go-cty/cty"
)

// Type describes one registered pin data type.
type Type struct {
	// Name is the registry key, e.g. "BoolPin".
	Name string
	// Cty is the canonical internal representation of values of this type.
	// cty.DynamicPseudoType accepts any value unchanged.
	Cty cty.Type
	// Default is the raw default value. Nil means the zero value of Cty.
	Default any
	// Color is a display attribute for UI collaborators. The core never reads it.
	Color string
	// Exec marks an execution-flow type whose value is a trigger signal.
	Exec bool
	// ConvertsTo lists the other types an output of this type may feed.
	ConvertsTo []string
	// AcceptsFrom lists the other types an input of this type may be fed by.
	AcceptsFrom []string
	// AcceptsAny lets inputs of this type be fed by any data type.
	AcceptsAny bool
	// Process replaces the default processing of raw values, both for
	// values set directly and for values arriving over a connection.
	Process func(raw any) (cty.Value, error)
	// Check runs after processing and may reject a well-typed value.
	Check func(v cty.Value) error

	defaultVal cty.Value
}

// DefaultValue returns the processed default value.
func (t *Type) DefaultValue() cty.Value {
	return t.defaultVal
}

// Validate processes a raw value set directly on a pin. Primitive values are
// not converted between kinds: a string is never silently read as a bool.
func (t *Type) Validate(raw any) (cty.Value, error) {
	return t.run(raw, true)
}

// Accept processes a value arriving from a connected pin of a compatible
// type. Lossless cty conversions (number to string, for instance) apply.
func (t *Type) Accept(v cty.Value) (cty.Value, error) {
	return t.run(v, false)
}

func (t *Type) run(raw any, strict bool) (cty.Value, error) {
	var (
		v   cty.Value
		err error
	)
	if t.Process != nil {
		v, err = t.Process(raw)
	} else {
		v, err = process(t.Cty, raw, strict)
	}
	if err != nil {
		return cty.NilVal, fmt.Errorf("%s: %w", t.Name, err)
	}
	if t.Check != nil {
		if err := t.Check(v); err != nil {
			return cty.NilVal, fmt.Errorf("%w: %s: %v", flowerr.ErrTypeMismatch, t.Name, err)
		}
	}
	return v, nil
}

// Registry maps type names to their definitions.
type Registry struct {
	types  map[string]*Type
	order  []string
	sealed bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: make(map[string]*Type),
	}
}

// Register adds a type. The default value is processed by the type itself
// so that a type with an invalid default never enters the registry.
func (r *Registry) Register(t Type) error {
	if r.sealed {
		return fmt.Errorf("%w: cannot register type %q", flowerr.ErrRegistrySealed, t.Name)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: type name cannot be empty", flowerr.ErrUnknownType)
	}
	if _, exists := r.types[t.Name]; exists {
		return fmt.Errorf("%w: %q", flowerr.ErrDuplicateType, t.Name)
	}
	if t.Cty == cty.NilType {
		return fmt.Errorf("type %q declares no internal representation", t.Name)
	}

	if t.Default == nil {
		t.defaultVal = ZeroValue(t.Cty)
	} else {
		v, err := t.Validate(t.Default)
		if err != nil {
			return fmt.Errorf("invalid default for type %q: %w", t.Name, err)
		}
		t.defaultVal = v
	}

	t.ConvertsTo = slices.Clone(t.ConvertsTo)
	t.AcceptsFrom = slices.Clone(t.AcceptsFrom)
	r.types[t.Name] = &t
	r.order = append(r.order, t.Name)
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Type) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (*Type, error) {
	t, ok := r.types[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", flowerr.ErrUnknownType, name)
	}
	return t, nil
}

// Names returns the registered type names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// Seal freezes the registry. Further registrations fail.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether the registry has been frozen.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Compatible reports whether an output of type from may feed an input of
// type to. The relation is reflexive and otherwise driven by the rules each
// type declared at registration. Exec and data types never mix.
func (r *Registry) Compatible(from, to string) bool {
	return r.CheckCompatible(from, to) == nil
}

// CheckCompatible is Compatible with a descriptive error.
func (r *Registry) CheckCompatible(from, to string) error {
	src, err := r.Lookup(from)
	if err != nil {
		return err
	}
	dst, err := r.Lookup(to)
	if err != nil {
		return err
	}

	if src.Exec != dst.Exec {
		return fmt.Errorf("%w: %s -> %s (exec and data pins cannot be connected)", flowerr.ErrIncompatibleType, from, to)
	}
	if from == to {
		return nil
	}
	if slices.Contains(src.ConvertsTo, to) || slices.Contains(dst.AcceptsFrom, from) {
		return nil
	}
	if dst.AcceptsAny && !src.Exec {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", flowerr.ErrIncompatibleType, from, to)
}
