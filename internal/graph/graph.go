package graph

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/nodeid"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/scheduler"
)

// DefaultMaxExecutionDepth bounds exec chains unless WithMaxExecutionDepth
// says otherwise.
const DefaultMaxExecutionDepth = 256

// Option configures a Graph.
type Option func(*Graph)

// WithMaxExecutionDepth sets how many callable nodes one exec chain may run
// before it is stopped. Values below one are ignored.
func WithMaxExecutionDepth(depth int) Option {
	return func(g *Graph) {
		if depth > 0 {
			g.maxDepth = depth
		}
	}
}

// WithObserver installs an observer at construction time.
func WithObserver(o Observer) Option {
	return func(g *Graph) {
		g.SetObserver(o)
	}
}

// Graph owns nodes and connections and schedules computation.
type Graph struct {
	reg *registry.Registry

	nodes map[string]*node.Node
	// order lists node ids in creation order.
	order []string
	names map[string]string
	conns []Connection
	seq   int

	// dirty is the work queue of pure nodes waiting for a compute.
	dirty    map[string]bool
	failures map[string]error
	sched    *scheduler.Scheduler

	maxDepth int
	observer Observer
}

// New creates an empty graph. The registry's types are sealed: registration
// must be complete before any graph exists.
func New(reg *registry.Registry, opts ...Option) *Graph {
	reg.Types.Seal()
	g := &Graph{
		reg:      reg,
		nodes:    make(map[string]*node.Node),
		names:    make(map[string]string),
		dirty:    make(map[string]bool),
		failures: make(map[string]error),
		sched:    scheduler.New(),
		maxDepth: DefaultMaxExecutionDepth,
		observer: NopObserver{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Registry returns the registry the graph builds nodes from.
func (g *Graph) Registry() *registry.Registry { return g.reg }

// MaxExecutionDepth returns the exec chain limit.
func (g *Graph) MaxExecutionDepth() int { return g.maxDepth }

// SetObserver replaces the observer. Nil restores the no-op observer.
func (g *Graph) SetObserver(o Observer) {
	if o == nil {
		o = NopObserver{}
	}
	g.observer = o
}

// CreateNode builds a node of a registered type and adds it to the graph.
// An empty name defaults to the type name; a taken name gets a numeric
// suffix (`not`, `not_2`, `not_3`).
func (g *Graph) CreateNode(ctx context.Context, typeName, name string) (*node.Node, error) {
	if name == "" {
		name = typeName
	}
	n, err := g.reg.Instantiate(g.nextID(), g.uniqueName(name), typeName)
	if err != nil {
		return nil, err
	}
	if err := g.Add(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// Add inserts a node built elsewhere. Its id and name must both be free.
func (g *Graph) Add(ctx context.Context, n *node.Node) error {
	if _, exists := g.nodes[n.ID()]; exists {
		return fmt.Errorf("%w: id %q", flowerr.ErrDuplicateNode, n.ID())
	}
	if _, exists := g.names[n.Name()]; exists {
		return fmt.Errorf("%w: name %q", flowerr.ErrDuplicateNode, n.Name())
	}
	if !nodeid.ValidName(n.Name()) {
		return fmt.Errorf("invalid node name %q", n.Name())
	}

	g.nodes[n.ID()] = n
	g.names[n.Name()] = n.ID()
	g.order = append(g.order, n.ID())
	n.SetHooks(node.Hooks{
		OnDirty: g.onDirty,
		Connect: func(ctx context.Context, from, to *pin.Pin) error {
			_, err := g.ConnectPins(ctx, from, to)
			return err
		},
	})
	if n.Kind() == node.Pure {
		g.sched.AddNode(n.ID())
		if n.State() == node.Dirty {
			g.dirty[n.ID()] = true
		}
	}
	ctxlog.FromContext(ctx).Debug("Node added.", "node", n.Name(), "id", n.ID(), "type", n.TypeName(), "kind", n.Kind())
	return nil
}

func (g *Graph) onDirty(n *node.Node) {
	if n.Kind() != node.Pure {
		return
	}
	if _, ok := g.nodes[n.ID()]; ok {
		g.dirty[n.ID()] = true
	}
}

func (g *Graph) nextID() string {
	for {
		g.seq++
		id := fmt.Sprintf("node-%d", g.seq)
		if _, taken := g.nodes[id]; !taken {
			return id
		}
	}
}

func (g *Graph) uniqueName(base string) string {
	if _, taken := g.names[base]; !taken {
		return base
	}
	for i := 2; ; i++ {
		name := fmt.Sprintf("%s_%d", base, i)
		if _, taken := g.names[name]; !taken {
			return name
		}
	}
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (*node.Node, error) {
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", flowerr.ErrUnknownNode, id)
	}
	return n, nil
}

// NodeByName returns the node with the given name.
func (g *Graph) NodeByName(name string) (*node.Node, error) {
	id, ok := g.names[name]
	if !ok {
		return nil, fmt.Errorf("%w: no node named %q", flowerr.ErrUnknownNode, name)
	}
	return g.nodes[id], nil
}

// Nodes returns all nodes in creation order.
func (g *Graph) Nodes() []*node.Node {
	out := make([]*node.Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id])
	}
	return out
}

// Pin resolves a `node.pin` address, node given by name.
func (g *Graph) Pin(address string) (*pin.Pin, error) {
	addr, err := nodeid.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", flowerr.ErrUnknownPin, err)
	}
	n, err := g.NodeByName(addr.Node)
	if err != nil {
		return nil, err
	}
	return n.Pin(addr.Pin)
}

// SetValue sets a pin addressed as `node.pin`.
func (g *Graph) SetValue(ctx context.Context, address string, raw any) error {
	p, err := g.Pin(address)
	if err != nil {
		return err
	}
	if err := p.SetData(raw); err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Pin value set.", "pin", address, "type", p.TypeName())
	return nil
}

// DestroyNode removes a node after removing every connection touching it.
func (g *Graph) DestroyNode(ctx context.Context, id string) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	for _, c := range g.ConnectionsOf(id) {
		if err := g.DisconnectPins(ctx, c.From, c.To); err != nil {
			return err
		}
	}
	g.sched.RemoveNode(id)
	delete(g.nodes, id)
	delete(g.names, n.Name())
	delete(g.dirty, id)
	delete(g.failures, id)
	g.order = slices.DeleteFunc(g.order, func(x string) bool { return x == id })
	n.SetHooks(node.Hooks{})
	ctxlog.FromContext(ctx).Debug("Node destroyed.", "node", n.Name(), "id", id)
	return nil
}

// AddPin creates a dynamic pin on a node that advertises pin suggestions.
func (g *Graph) AddPin(ctx context.Context, nodeID string, spec pin.Spec) (*pin.Pin, error) {
	n, err := g.Node(nodeID)
	if err != nil {
		return nil, err
	}
	p, err := n.AddDynamicPin(spec)
	if err != nil {
		return nil, err
	}
	ctxlog.FromContext(ctx).Debug("Pin added.", "node", n.Name(), "pin", spec.Name, "type", spec.Type)
	return p, nil
}

// RemovePin disconnects and deletes a pin.
func (g *Graph) RemovePin(ctx context.Context, nodeID, pinName string) error {
	n, err := g.Node(nodeID)
	if err != nil {
		return err
	}
	p, err := n.Pin(pinName)
	if err != nil {
		return err
	}
	for _, c := range slices.Clone(g.conns) {
		if c.From == p || c.To == p {
			if err := g.DisconnectPins(ctx, c.From, c.To); err != nil {
				return err
			}
		}
	}
	return n.RemovePin(pinName)
}

// ResetNode clears a node's failure so the next pass schedules it again.
func (g *Graph) ResetNode(ctx context.Context, id string) error {
	n, err := g.Node(id)
	if err != nil {
		return err
	}
	n.Reset()
	delete(g.failures, id)
	ctxlog.FromContext(ctx).Debug("Node reset.", "node", n.Name(), "state", n.State())
	return nil
}

// Failures returns the recorded failure of every Failed node, keyed by id.
func (g *Graph) Failures() map[string]error {
	return maps.Clone(g.failures)
}

// Dirty returns the ids of the pure nodes waiting for a compute, in
// creation order.
func (g *Graph) Dirty() []string {
	out := make([]string, 0, len(g.dirty))
	for _, id := range g.order {
		if g.dirty[id] {
			out = append(out, id)
		}
	}
	return out
}
