package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// Snapshot is the persistent structure of a graph: enough for a serializer
// to rebuild an equivalent graph with CreateNode, AddPin, SetData and Connect.
type Snapshot struct {
	Nodes       []NodeSnapshot
	Connections []ConnectionRef
}

// NodeSnapshot describes one node.
type NodeSnapshot struct {
	ID   string
	Name string
	Type string
	// Pins lists the dynamically added pins, in creation order.
	Pins []PinSnapshot
	// Values holds the storable pin values given to SetData.
	// Inputs fed by a connection are left out.
	Values map[string]cty.Value
}

// PinSnapshot describes a dynamically added pin.
type PinSnapshot struct {
	Name      string
	Type      string
	Direction pin.Direction
	Structure pin.Structure
}

// Snapshot captures nodes in creation order and connections in creation order.
func (g *Graph) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes:       make([]NodeSnapshot, 0, len(g.order)),
		Connections: make([]ConnectionRef, 0, len(g.conns)),
	}
	for _, n := range g.Nodes() {
		ns := NodeSnapshot{
			ID:     n.ID(),
			Name:   n.Name(),
			Type:   n.TypeName(),
			Values: make(map[string]cty.Value),
		}
		for _, p := range n.Pins() {
			if n.IsDynamic(p.Name()) {
				ns.Pins = append(ns.Pins, PinSnapshot{
					Name:      p.Name(),
					Type:      p.TypeName(),
					Direction: p.Direction(),
					Structure: p.Structure(),
				})
			}
			if !p.Storable() || !p.Explicit() || (p.Direction() == pin.Input && p.Connected()) {
				continue
			}
			ns.Values[p.Name()] = p.GetData()
		}
		snap.Nodes = append(snap.Nodes, ns)
	}
	for _, c := range g.conns {
		snap.Connections = append(snap.Connections, c.Ref())
	}
	return snap
}

// Restore rebuilds the nodes and connections of snap into g. Nodes get fresh
// ids in g; the returned map translates snapshot ids to them. Every item is
// attempted and all failures are returned together.
func Restore(ctx context.Context, g *Graph, snap Snapshot) (map[string]string, error) {
	logger := ctxlog.FromContext(ctx)
	ids := make(map[string]string, len(snap.Nodes))
	var errs error

	for _, ns := range snap.Nodes {
		n, err := g.CreateNode(ctx, ns.Type, ns.Name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restore node %q: %w", ns.Name, err))
			continue
		}
		ids[ns.ID] = n.ID()
		for _, ps := range ns.Pins {
			spec := pin.Spec{Name: ps.Name, Type: ps.Type, Direction: ps.Direction, Structure: ps.Structure}
			if _, err := g.AddPin(ctx, n.ID(), spec); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("restore node %q: %w", ns.Name, err))
			}
		}
		for _, name := range sortedKeys(ns.Values) {
			p, err := n.Pin(name)
			if err == nil {
				err = p.SetData(ns.Values[name])
			}
			if err != nil {
				errs = multierr.Append(errs, fmt.Errorf("restore node %q: %w", ns.Name, err))
			}
		}
	}

	for _, ref := range snap.Connections {
		from, okFrom := ids[ref.FromNode]
		to, okTo := ids[ref.ToNode]
		if !okFrom || !okTo {
			errs = multierr.Append(errs, fmt.Errorf("restore connection %s: endpoint was not restored", ref))
			continue
		}
		mapped := ConnectionRef{FromNode: from, FromPin: ref.FromPin, ToNode: to, ToPin: ref.ToPin}
		if _, err := g.Connect(ctx, mapped); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("restore connection %s: %w", ref, err))
		}
	}

	logger.Debug("Snapshot restored.", "nodes", len(ids), "connections", len(snap.Connections), "failed", len(multierr.Errors(errs)))
	return ids, errs
}
