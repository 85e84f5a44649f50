package registry

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/specialistvlad/nodegraph/internal/ui"
)

// Module is the interface every node package implements to be registered.
type Module interface {
	Name() string
	Register(r *Registry) error
}

// NodeType is the constructor and metadata of one kind of node.
type NodeType struct {
	Name string
	Kind node.Kind
	Meta node.Meta
	// Pins are created in order on every new instance.
	Pins []pin.Spec
	// Suggestions enables dynamically added pins of the listed shapes.
	Suggestions []node.Suggestion
	// Stateful marks behaviors whose output depends on previous calls.
	Stateful bool
	// New returns a fresh behavior for each instance. Nil means a node that
	// computes nothing, such as a pure value source.
	New func() node.Behavior
}

// Registry holds the pin types, node types and UI factories of a single
// application instance.
type Registry struct {
	Types *types.Registry
	UI    *ui.Factories

	nodeTypes map[string]*NodeType
	order     []string
	modules   []string
}

// New creates a registry around a type registry. Pass nil to start from a
// registry holding only the built-in pin types.
func New(typeRegistry *types.Registry) (*Registry, error) {
	if typeRegistry == nil {
		typeRegistry = types.NewRegistry()
		if err := types.RegisterBuiltins(typeRegistry); err != nil {
			return nil, err
		}
	}
	return &Registry{
		Types:     typeRegistry,
		UI:        ui.NewFactories(),
		nodeTypes: make(map[string]*NodeType),
	}, nil
}

// RegisterType adds a pin data type.
func (r *Registry) RegisterType(t types.Type) error {
	slog.Debug("Registering pin type.", "type", t.Name)
	return r.Types.Register(t)
}

// RegisterNode adds a node type.
func (r *Registry) RegisterNode(nt NodeType) error {
	if nt.Name == "" {
		return fmt.Errorf("%w: node type name cannot be empty", flowerr.ErrUnknownType)
	}
	if _, exists := r.nodeTypes[nt.Name]; exists {
		return fmt.Errorf("%w: node type %q", flowerr.ErrDuplicateType, nt.Name)
	}
	if r.Types.Sealed() {
		return fmt.Errorf("%w: cannot register node type %q", flowerr.ErrRegistrySealed, nt.Name)
	}
	slog.Debug("Registering node type.", "type", nt.Name, "kind", nt.Kind)
	nt.Pins = slices.Clone(nt.Pins)
	nt.Suggestions = slices.Clone(nt.Suggestions)
	r.nodeTypes[nt.Name] = &nt
	r.order = append(r.order, nt.Name)
	return nil
}

// MustRegisterNode is like RegisterNode but panics on error.
func (r *Registry) MustRegisterNode(nt NodeType) {
	if err := r.RegisterNode(nt); err != nil {
		panic(err)
	}
}

// Lookup returns the node type registered under name.
func (r *Registry) Lookup(name string) (*NodeType, error) {
	nt, ok := r.nodeTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: node type %q", flowerr.ErrUnknownType, name)
	}
	return nt, nil
}

// NodeTypes returns the registered node type names in registration order.
func (r *Registry) NodeTypes() []string {
	return slices.Clone(r.order)
}

// Modules returns the names of the loaded modules in load order.
func (r *Registry) Modules() []string {
	return slices.Clone(r.modules)
}

// Instantiate builds a node of the named type with all its pins.
func (r *Registry) Instantiate(id, name, typeName string) (*node.Node, error) {
	nt, err := r.Lookup(typeName)
	if err != nil {
		return nil, err
	}
	var behavior node.Behavior
	if nt.New != nil {
		behavior = nt.New()
	}
	n, err := node.New(node.Config{
		ID:          id,
		Name:        name,
		Type:        nt.Name,
		Kind:        nt.Kind,
		Behavior:    behavior,
		Meta:        nt.Meta,
		Suggestions: nt.Suggestions,
		Stateful:    nt.Stateful,
		Types:       r.Types,
	})
	if err != nil {
		return nil, err
	}
	for _, spec := range nt.Pins {
		if _, err := n.CreatePin(spec); err != nil {
			return nil, fmt.Errorf("node type %q: %w", nt.Name, err)
		}
	}
	return n, nil
}
