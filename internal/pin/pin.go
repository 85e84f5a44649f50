package pin

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// Direction tells whether a pin consumes or produces values.
type Direction int

const (
	// Input pins receive values, either set directly or from a connection.
	Input Direction = iota
	// Output pins publish the results of their node's compute.
	Output
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "input":
		return Input, nil
	case "output":
		return Output, nil
	default:
		return Input, fmt.Errorf("unknown pin direction %q", s)
	}
}

// Structure describes the shape of the value a pin holds.
type Structure int

const (
	// Single pins hold one value. A Single input accepts one connection.
	Single Structure = iota
	// Array pins hold an ordered list of values. An Array input accepts one
	// connection from another Array pin.
	Array
	// Multi inputs accept any number of connections and read as the list of
	// connected values in connection order.
	Multi
)

func (s Structure) String() string {
	switch s {
	case Single:
		return "single"
	case Array:
		return "array"
	case Multi:
		return "multi"
	default:
		return fmt.Sprintf("Structure(%d)", int(s))
	}
}

// ParseStructure is the inverse of Structure.String.
func ParseStructure(s string) (Structure, error) {
	switch s {
	case "", "single":
		return Single, nil
	case "array":
		return Array, nil
	case "multi":
		return Multi, nil
	default:
		return Single, fmt.Errorf("unknown pin structure %q", s)
	}
}

// Owner is the node a pin belongs to.
type Owner interface {
	ID() string
	// MarkDirty records that the owner's inputs changed.
	MarkDirty()
	// RequestConnect asks the graph holding the owner to connect two pins.
	RequestConnect(ctx context.Context, from, to *Pin) error
}

// Spec declares a pin.
type Spec struct {
	Name      string
	Type      string
	Direction Direction
	Structure Structure
	// Default is the raw default value. Nil means the type's default.
	Default any
	// Transient pins are not persisted in graph snapshots.
	Transient bool
}

// Pin is a typed data terminal owned by exactly one node.
type Pin struct {
	spec  Spec
	typ   *types.Type
	reg   *types.Registry
	owner Owner
	def   cty.Value

	value    cty.Value
	set      bool
	// explicit is true while the value is one given to SetData.
	explicit bool

	// links holds the connected peers in connection order.
	links []*Pin
	// slots holds the last value received from each peer of a Multi input.
	slots map[*Pin]cty.Value
}

// New creates a pin for owner. The type named by spec must be registered in reg and
// its default, when given, must satisfy that type.
func New(owner Owner, reg *types.Registry, spec Spec) (*Pin, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("%w: pin name cannot be empty", flowerr.ErrUnknownPin)
	}
	typ, err := reg.Lookup(spec.Type)
	if err != nil {
		return nil, fmt.Errorf("pin %q: %w", spec.Name, err)
	}
	if typ.Exec && spec.Structure == Array {
		return nil, fmt.Errorf("pin %q: exec pins cannot be arrays", spec.Name)
	}
	if spec.Direction == Output && spec.Structure == Multi {
		return nil, fmt.Errorf("pin %q: only inputs can take multiple connections", spec.Name)
	}

	p := &Pin{
		spec:  spec,
		typ:   typ,
		reg:   reg,
		owner: owner,
	}
	if spec.Default == nil {
		if spec.Structure == Single {
			p.def = typ.DefaultValue()
		} else {
			p.def = types.ListOf(typ, nil)
		}
	} else {
		p.def, err = p.Process(spec.Default)
		if err != nil {
			return nil, fmt.Errorf("pin %q default: %w", spec.Name, err)
		}
	}
	if spec.Structure == Multi {
		p.slots = make(map[*Pin]cty.Value)
	}
	return p, nil
}

func (p *Pin) Name() string             { return p.spec.Name }
func (p *Pin) Direction() Direction     { return p.spec.Direction }
func (p *Pin) Structure() Structure     { return p.spec.Structure }
func (p *Pin) TypeName() string         { return p.spec.Type }
func (p *Pin) Type() *types.Type        { return p.typ }
func (p *Pin) Owner() Owner             { return p.owner }
func (p *Pin) Spec() Spec               { return p.spec }
func (p *Pin) Default() cty.Value       { return p.def }
func (p *Pin) IsExec() bool             { return p.typ.Exec }
func (p *Pin) Storable() bool           { return !p.spec.Transient && !p.typ.Exec }
func (p *Pin) IsSet() bool              { return p.set }
func (p *Pin) Explicit() bool           { return p.explicit }
func (p *Pin) Connected() bool          { return len(p.links) > 0 }
func (p *Pin) Links() []*Pin            { return slices.Clone(p.links) }
func (p *Pin) LinkedTo(other *Pin) bool { return slices.Contains(p.links, other) }
func (p *Pin) String() string           { return p.owner.ID() + "." + p.spec.Name }

// HasCapacity reports whether one more connection may end at this pin.
// Outputs and Multi inputs take any number; the others take one.
func (p *Pin) HasCapacity() bool {
	if p.spec.Direction == Output || p.spec.Structure == Multi {
		return true
	}
	return len(p.links) == 0
}

// Process validates a raw value for this pin without storing it. Primitive
// kinds are never converted into each other.
func (p *Pin) Process(raw any) (cty.Value, error) {
	if p.spec.Structure == Single {
		return p.typ.Validate(raw)
	}
	return types.ToList(p.typ, raw, true)
}

// accept converts a value arriving over a connection into this pin's representation.
func (p *Pin) accept(v cty.Value) (cty.Value, error) {
	if p.spec.Structure == Array {
		return types.ToList(p.typ, v, false)
	}
	return p.typ.Accept(v)
}

// SetData validates raw, stores it and marks the owner dirty. An output pin
// pushes the new value to every connected input, dirtying their owners in
// turn. Nothing is computed here.
func (p *Pin) SetData(raw any) error {
	v, err := p.Process(raw)
	if err != nil {
		return fmt.Errorf("set %s: %w", p, err)
	}
	p.value = v
	p.set = true
	p.explicit = true
	if p.typ.Exec {
		return nil
	}
	p.owner.MarkDirty()
	if p.spec.Direction == Output {
		return p.propagate()
	}
	return nil
}

// Publish stores an already processed value on an output pin and pushes it
// downstream. It is the owner's own write path and does not dirty the owner.
func (p *Pin) Publish(v cty.Value) error {
	p.value = v
	p.set = true
	p.explicit = false
	if p.typ.Exec {
		return nil
	}
	return p.propagate()
}

func (p *Pin) propagate() error {
	var err error
	v := p.GetData()
	for _, dst := range p.links {
		err = multierr.Append(err, dst.receive(p, v))
	}
	return err
}

// receive stores a value pushed from peer. A value the pin cannot accept
// leaves the previous one in place.
func (p *Pin) receive(peer *Pin, v cty.Value) error {
	if err := p.deliver(peer, v); err != nil {
		return err
	}
	p.owner.MarkDirty()
	return nil
}

// deliver converts and stores v. A null v comes from an output holding
// nothing yet, such as an unwritten AnyPin, and leaves the pin unset.
func (p *Pin) deliver(peer *Pin, v cty.Value) error {
	if v.IsNull() {
		p.unset(peer)
		return nil
	}
	av, err := p.accept(v)
	if err != nil {
		return fmt.Errorf("deliver %s -> %s: %w", peer, p, err)
	}
	p.store(peer, av)
	return nil
}

func (p *Pin) store(peer *Pin, v cty.Value) {
	if p.spec.Structure == Multi {
		p.slots[peer] = v
		return
	}
	p.value = v
	p.set = true
	p.explicit = false
}

// unset drops what peer delivered so the pin reads its default again.
func (p *Pin) unset(peer *Pin) {
	if p.spec.Structure == Multi {
		delete(p.slots, peer)
		return
	}
	p.value = cty.NilVal
	p.set = false
	p.explicit = false
}

// GetData returns the current value: the list of connected values for a
// connected Multi input, the stored value when set, the default otherwise.
func (p *Pin) GetData() cty.Value {
	if p.spec.Structure == Multi && p.spec.Direction == Input && len(p.links) > 0 {
		vals := make([]cty.Value, 0, len(p.links))
		for _, peer := range p.links {
			if v, ok := p.slots[peer]; ok {
				vals = append(vals, v)
			}
		}
		return types.ListOf(p.typ, vals)
	}
	if p.set {
		return p.value
	}
	return p.def
}

// Clear drops a directly set value so the pin reads its default again.
func (p *Pin) Clear() {
	p.value = cty.NilVal
	p.set = false
	p.explicit = false
	if !p.typ.Exec {
		p.owner.MarkDirty()
	}
}

// ConnectTo asks the owning graph to connect this pin with other. Either pin
// may be the output. Pins of the same direction or incompatible types are
// rejected here before the graph is involved.
func (p *Pin) ConnectTo(ctx context.Context, other *Pin) error {
	if other == nil {
		return fmt.Errorf("%w: nil pin", flowerr.ErrUnknownPin)
	}
	if p.spec.Direction == other.spec.Direction {
		return fmt.Errorf("%w: %s and %s are both %ss", flowerr.ErrDirectionMismatch, p, other, p.spec.Direction)
	}
	from, to := p, other
	if p.spec.Direction == Input {
		from, to = other, p
	}
	if err := CheckCompatible(p.reg, from, to); err != nil {
		return err
	}
	return p.owner.RequestConnect(ctx, from, to)
}

// CheckCompatible reports whether an output may feed an input, looking at
// both the registered types and the pin structures.
func CheckCompatible(reg *types.Registry, from, to *Pin) error {
	if err := reg.CheckCompatible(from.spec.Type, to.spec.Type); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", from, to, err)
	}
	switch {
	case from.typ.Exec:
		return nil
	case to.spec.Structure == Array && from.spec.Structure != Array:
		return fmt.Errorf("%w: connect %s -> %s: array input needs an array output", flowerr.ErrIncompatibleType, from, to)
	case to.spec.Structure == Multi && from.spec.Structure == Array:
		return fmt.Errorf("%w: connect %s -> %s: multi input takes single values", flowerr.ErrIncompatibleType, from, to)
	case to.spec.Structure == Single && from.spec.Structure == Array && to.typ.Cty != cty.DynamicPseudoType:
		return fmt.Errorf("%w: connect %s -> %s: single input cannot hold an array", flowerr.ErrIncompatibleType, from, to)
	}
	return nil
}

// Attach links an output to an input and delivers the output's current value.
// Callers are expected to have validated the pair; the graph is the only
// caller outside tests.
func Attach(from, to *Pin) error {
	if from.typ.Exec {
		from.links = append(from.links, to)
		to.links = append(to.links, from)
		return nil
	}
	if err := to.deliver(from, from.GetData()); err != nil {
		return err
	}
	from.links = append(from.links, to)
	to.links = append(to.links, from)
	to.owner.MarkDirty()
	return nil
}

// Detach removes the link between an output and an input. The input reverts
// to its default, or drops the peer's slot for a Multi input, and its owner
// is marked dirty.
func Detach(from, to *Pin) error {
	i := slices.Index(from.links, to)
	j := slices.Index(to.links, from)
	if i < 0 || j < 0 {
		return fmt.Errorf("%w: %s -> %s", flowerr.ErrNotConnected, from, to)
	}
	from.links = slices.Delete(from.links, i, i+1)
	to.links = slices.Delete(to.links, j, j+1)
	if to.typ.Exec {
		return nil
	}
	to.unset(from)
	to.owner.MarkDirty()
	return nil
}
