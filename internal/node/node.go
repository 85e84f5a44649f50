package node

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// Kind distinguishes the two execution models.
type Kind int

const (
	// Pure nodes recompute automatically whenever one of their inputs changes.
	Pure Kind = iota
	// Callable nodes recompute only when one of their exec input pins fires.
	Callable
)

func (k Kind) String() string {
	if k == Callable {
		return "callable"
	}
	return "pure"
}

// State represents the scheduling state of a node.
type State int

const (
	// Clean means the outputs are current with respect to the inputs.
	Clean State = iota
	// Dirty means an input changed since the last successful compute.
	Dirty
	// Computing is held for the duration of a compute call.
	Computing
	// Failed means the last compute returned an error. The node is left out
	// of scheduling until it is reset.
	Failed
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Computing:
		return "computing"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Meta is descriptive metadata for palettes and search. The core never reads it.
type Meta struct {
	Category    string
	Keywords    []string
	Description string
}

// Suggestion is a pin type and structure a node offers for dynamically added pins.
type Suggestion struct {
	Type      string
	Structure pin.Structure
}

// Hooks connect a node to the graph that owns it.
type Hooks struct {
	// OnDirty runs whenever the node is marked dirty and not Failed.
	OnDirty func(n *Node)
	// Connect creates a connection on behalf of pin.ConnectTo.
	Connect func(ctx context.Context, from, to *pin.Pin) error
}

// Config carries everything needed to build a node.
type Config struct {
	ID       string
	Name     string
	Type     string
	Kind     Kind
	Behavior Behavior
	Meta     Meta
	// Suggestions enables dynamic pins restricted to the listed shapes.
	Suggestions []Suggestion
	// Stateful documents that Behavior keeps state between calls, so equal
	// inputs may produce different outputs.
	Stateful bool
	Types    *types.Registry
}

// Node owns a set of pins and the logic computing its outputs from its inputs.
type Node struct {
	id          string
	name        string
	typeName    string
	kind        Kind
	meta        Meta
	behavior    Behavior
	suggestions []Suggestion
	stateful    bool
	reg         *types.Registry

	inputs  []*pin.Pin
	outputs []*pin.Pin
	pins    map[string]*pin.Pin
	dynamic map[string]bool

	// state is only touched by the single goroutine driving the graph.
	state   State
	redirty bool
	err     error
	hooks   Hooks
}

// New creates a node without pins. New nodes start Dirty so their first
// evaluation computes them.
func New(cfg Config) (*Node, error) {
	if cfg.ID == "" {
		return nil, fmt.Errorf("%w: node id cannot be empty", flowerr.ErrUnknownNode)
	}
	if cfg.Types == nil {
		return nil, fmt.Errorf("node %q: no type registry", cfg.ID)
	}
	name := cfg.Name
	if name == "" {
		name = cfg.ID
	}
	return &Node{
		id:          cfg.ID,
		name:        name,
		typeName:    cfg.Type,
		kind:        cfg.Kind,
		meta:        cfg.Meta,
		behavior:    cfg.Behavior,
		suggestions: slices.Clone(cfg.Suggestions),
		stateful:    cfg.Stateful,
		reg:         cfg.Types,
		pins:        make(map[string]*pin.Pin),
		dynamic:     make(map[string]bool),
		state:       Dirty,
	}, nil
}

func (n *Node) ID() string                    { return n.id }
func (n *Node) Name() string                  { return n.name }
func (n *Node) TypeName() string              { return n.typeName }
func (n *Node) Kind() Kind                    { return n.kind }
func (n *Node) Meta() Meta                    { return n.meta }
func (n *Node) State() State                  { return n.state }
func (n *Node) Stateful() bool                { return n.stateful }
func (n *Node) Suggestions() []Suggestion     { return slices.Clone(n.suggestions) }
func (n *Node) Inputs() []*pin.Pin            { return slices.Clone(n.inputs) }
func (n *Node) Outputs() []*pin.Pin           { return slices.Clone(n.outputs) }
func (n *Node) IsDynamic(pinName string) bool { return n.dynamic[pinName] }

// Err returns the failure recorded by the last compute, if the node is Failed.
func (n *Node) Err() error { return n.err }

// SetName renames the node. Uniqueness is the graph's concern.
func (n *Node) SetName(name string) { n.name = name }

// SetHooks attaches the node to a graph.
func (n *Node) SetHooks(h Hooks) { n.hooks = h }

// Pins returns the inputs followed by the outputs, each in creation order.
func (n *Node) Pins() []*pin.Pin {
	return append(slices.Clone(n.inputs), n.outputs...)
}

// Pin looks up a pin by name.
func (n *Node) Pin(name string) (*pin.Pin, error) {
	p, ok := n.pins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", flowerr.ErrUnknownPin, n.name, name)
	}
	return p, nil
}

// CreatePin adds a pin. Names are unique across inputs and outputs.
func (n *Node) CreatePin(spec pin.Spec) (*pin.Pin, error) {
	if _, exists := n.pins[spec.Name]; exists {
		return nil, fmt.Errorf("%w: %s.%s", flowerr.ErrDuplicatePinName, n.name, spec.Name)
	}
	p, err := pin.New(n, n.reg, spec)
	if err != nil {
		return nil, fmt.Errorf("node %q: %w", n.name, err)
	}
	n.pins[spec.Name] = p
	if spec.Direction == pin.Input {
		n.inputs = append(n.inputs, p)
	} else {
		n.outputs = append(n.outputs, p)
	}
	if spec.Direction == pin.Input && !p.IsExec() {
		n.MarkDirty()
	}
	return p, nil
}

// AddDynamicPin creates a pin after construction. Only nodes offering
// suggestions accept them, and only with a suggested type and structure.
func (n *Node) AddDynamicPin(spec pin.Spec) (*pin.Pin, error) {
	if len(n.suggestions) == 0 {
		return nil, fmt.Errorf("%w: %s (%s)", flowerr.ErrDynamicPinsUnsupported, n.name, n.typeName)
	}
	if !slices.Contains(n.suggestions, Suggestion{Type: spec.Type, Structure: spec.Structure}) {
		return nil, fmt.Errorf("%w: %s does not offer %s %s pins", flowerr.ErrDynamicPinsUnsupported, n.name, spec.Structure, spec.Type)
	}
	p, err := n.CreatePin(spec)
	if err != nil {
		return nil, err
	}
	n.dynamic[spec.Name] = true
	return p, nil
}

// RemovePin deletes a pin that has no connections left.
func (n *Node) RemovePin(name string) error {
	p, err := n.Pin(name)
	if err != nil {
		return err
	}
	if p.Connected() {
		return fmt.Errorf("pin %s is still connected", p)
	}
	delete(n.pins, name)
	delete(n.dynamic, name)
	if p.Direction() == pin.Input {
		n.inputs = slices.DeleteFunc(n.inputs, func(q *pin.Pin) bool { return q == p })
		n.MarkDirty()
	} else {
		n.outputs = slices.DeleteFunc(n.outputs, func(q *pin.Pin) bool { return q == p })
	}
	return nil
}

// MarkDirty records an input change. During a compute the change is kept for
// the next cycle; a Failed node stays Failed until reset.
func (n *Node) MarkDirty() {
	switch n.state {
	case Computing:
		n.redirty = true
	case Failed:
	default:
		n.state = Dirty
	}
	if n.state != Failed && n.hooks.OnDirty != nil {
		n.hooks.OnDirty(n)
	}
}

// RequestConnect forwards a connection request from one of the node's pins
// to the owning graph.
func (n *Node) RequestConnect(ctx context.Context, from, to *pin.Pin) error {
	if n.hooks.Connect == nil {
		return fmt.Errorf("%w: node %q is not part of a graph", flowerr.ErrUnknownNode, n.name)
	}
	return n.hooks.Connect(ctx, from, to)
}

// Reset clears a failure so the node is scheduled again.
func (n *Node) Reset() {
	if n.state != Failed {
		return
	}
	n.state = Clean
	n.err = nil
	n.MarkDirty()
}

// Compute runs the node's behavior once. trigger names the exec input that
// fired, empty for pure evaluation.
//
// The dirty flag is cleared when the call starts, so inputs changing during
// the call leave the node Dirty afterwards. Outputs are validated as a whole
// before any is published; on failure the node turns Failed, keeps its
// previous outputs and the returned *flowerr.ComputeError names the node.
// On success Compute returns the names of the exec outputs that fired.
func (n *Node) Compute(ctx context.Context, trigger string) ([]string, error) {
	if n.state == Failed {
		return nil, fmt.Errorf("%w: %s", flowerr.ErrNodeFailed, n.name)
	}
	n.state = Computing
	n.redirty = false

	outs, err := n.invoke(ctx, n.snapshotInputs(trigger))
	var writes []write
	if err == nil {
		writes, err = n.stage(outs)
	}
	if err != nil {
		n.state = Failed
		n.err = &flowerr.ComputeError{NodeID: n.id, NodeName: n.name, NodeType: n.typeName, Cause: err}
		return nil, n.err
	}

	var (
		fired      []string
		deliverErr error
	)
	for _, w := range writes {
		if w.pin.IsExec() {
			if w.value.True() {
				fired = append(fired, w.pin.Name())
			}
			continue
		}
		deliverErr = multierr.Append(deliverErr, w.pin.Publish(w.value))
	}
	if deliverErr != nil {
		ctxlog.FromContext(ctx).Warn("Some downstream pins rejected computed values.", "node", n.name, "error", deliverErr)
	}

	n.err = nil
	if n.redirty {
		n.redirty = false
		n.state = Dirty
	} else {
		n.state = Clean
	}
	return fired, nil
}

func (n *Node) invoke(ctx context.Context, in Inputs) (outs Outputs, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &flowerr.PanicError{Value: r}
		}
	}()
	if n.behavior == nil {
		return nil, nil
	}
	return n.behavior.Compute(ctx, in)
}

type write struct {
	pin   *pin.Pin
	value cty.Value
}

// stage validates every output value without touching any pin.
func (n *Node) stage(outs Outputs) ([]write, error) {
	for name := range outs {
		p, ok := n.pins[name]
		if !ok {
			return nil, fmt.Errorf("%w: output %q", flowerr.ErrUnknownPin, name)
		}
		if p.Direction() != pin.Output {
			return nil, fmt.Errorf("%w: %q is an input", flowerr.ErrDirectionMismatch, name)
		}
	}

	writes := make([]write, 0, len(outs))
	for _, p := range n.outputs {
		raw, ok := outs[p.Name()]
		if !ok {
			continue
		}
		v, err := p.Process(raw)
		if err != nil {
			return nil, fmt.Errorf("output %q: %w", p.Name(), err)
		}
		writes = append(writes, write{pin: p, value: v})
	}
	return writes, nil
}
