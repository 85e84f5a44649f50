package graph

import (
	"context"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
)

// Connection is a directed edge from an output pin to an input pin. It
// references both pins and owns neither.
type Connection struct {
	From *pin.Pin
	To   *pin.Pin
}

// Ref returns the persistent form of the connection.
func (c Connection) Ref() ConnectionRef {
	return ConnectionRef{
		FromNode: c.From.Owner().ID(),
		FromPin:  c.From.Name(),
		ToNode:   c.To.Owner().ID(),
		ToPin:    c.To.Name(),
	}
}

func (c Connection) String() string {
	return c.From.String() + " -> " + c.To.String()
}

// ConnectionRef identifies a connection by node ids and pin names.
type ConnectionRef struct {
	FromNode string
	FromPin  string
	ToNode   string
	ToPin    string
}

func (r ConnectionRef) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", r.FromNode, r.FromPin, r.ToNode, r.ToPin)
}

// Connections returns every connection in creation order.
func (g *Graph) Connections() []Connection {
	return slices.Clone(g.conns)
}

// ConnectionsOf returns the connections touching a node, in creation order.
func (g *Graph) ConnectionsOf(nodeID string) []Connection {
	var out []Connection
	for _, c := range g.conns {
		if c.From.Owner().ID() == nodeID || c.To.Owner().ID() == nodeID {
			out = append(out, c)
		}
	}
	return out
}

// Connect connects two pins identified by node id and pin name.
func (g *Graph) Connect(ctx context.Context, ref ConnectionRef) (Connection, error) {
	from, to, err := g.resolve(ref)
	if err != nil {
		return Connection{}, err
	}
	return g.ConnectPins(ctx, from, to)
}

// Disconnect removes the connection identified by ref.
func (g *Graph) Disconnect(ctx context.Context, ref ConnectionRef) error {
	from, to, err := g.resolve(ref)
	if err != nil {
		return err
	}
	return g.DisconnectPins(ctx, from, to)
}

func (g *Graph) resolve(ref ConnectionRef) (*pin.Pin, *pin.Pin, error) {
	src, err := g.Node(ref.FromNode)
	if err != nil {
		return nil, nil, err
	}
	dst, err := g.Node(ref.ToNode)
	if err != nil {
		return nil, nil, err
	}
	from, err := src.Pin(ref.FromPin)
	if err != nil {
		return nil, nil, err
	}
	to, err := dst.Pin(ref.ToPin)
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

// owner returns the node of this graph owning p, or nil.
func (g *Graph) owner(p *pin.Pin) *node.Node {
	if p == nil {
		return nil
	}
	n, ok := g.nodes[p.Owner().ID()]
	if !ok {
		return nil
	}
	if q, err := n.Pin(p.Name()); err != nil || q != p {
		return nil
	}
	return n
}

// ConnectPins connects an output pin to an input pin after checking every
// structural rule. On failure nothing changes. The input receives the
// output's current value and its node is marked dirty.
func (g *Graph) ConnectPins(ctx context.Context, from, to *pin.Pin) (Connection, error) {
	src, dst := g.owner(from), g.owner(to)
	if src == nil || dst == nil {
		return Connection{}, fmt.Errorf("%w: pin is not part of this graph", flowerr.ErrUnknownPin)
	}
	if from.Direction() != pin.Output || to.Direction() != pin.Input {
		return Connection{}, fmt.Errorf("%w: %s (%s) -> %s (%s), connections run from an output to an input",
			flowerr.ErrDirectionMismatch, from, from.Direction(), to, to.Direction())
	}
	if src == dst {
		return Connection{}, fmt.Errorf("%w: %s -> %s", flowerr.ErrSelfConnection, from, to)
	}
	if from.LinkedTo(to) {
		return Connection{}, fmt.Errorf("%w: %s -> %s", flowerr.ErrAlreadyConnected, from, to)
	}
	if !to.HasCapacity() {
		return Connection{}, fmt.Errorf("%w: %s (%s)", flowerr.ErrPinOccupied, to, to.Structure())
	}
	if err := pin.CheckCompatible(g.reg.Types, from, to); err != nil {
		return Connection{}, err
	}

	scheduled := !from.IsExec() && src.Kind() == node.Pure && dst.Kind() == node.Pure
	if scheduled {
		if err := g.sched.AddEdge(src.ID(), dst.ID()); err != nil {
			return Connection{}, fmt.Errorf("connect %s -> %s: %w", from, to, err)
		}
	}
	if err := pin.Attach(from, to); err != nil {
		if scheduled {
			g.sched.RemoveEdge(src.ID(), dst.ID())
		}
		return Connection{}, err
	}

	c := Connection{From: from, To: to}
	g.conns = append(g.conns, c)
	ctxlog.FromContext(ctx).Debug("Pins connected.", "from", from.String(), "to", to.String(), "type", from.TypeName())
	g.observer.Connected(ctx, c)
	return c, nil
}

// DisconnectPins removes a connection. The input reverts to its default and
// its node is marked dirty.
func (g *Graph) DisconnectPins(ctx context.Context, from, to *pin.Pin) error {
	i := slices.IndexFunc(g.conns, func(c Connection) bool { return c.From == from && c.To == to })
	if i < 0 {
		return fmt.Errorf("%w: %s -> %s", flowerr.ErrNotConnected, from, to)
	}
	if err := pin.Detach(from, to); err != nil {
		return err
	}
	c := g.conns[i]
	g.conns = slices.Delete(g.conns, i, i+1)

	src, dst := g.owner(from), g.owner(to)
	if !from.IsExec() && src != nil && dst != nil && src.Kind() == node.Pure && dst.Kind() == node.Pure {
		g.sched.RemoveEdge(src.ID(), dst.ID())
	}
	ctxlog.FromContext(ctx).Debug("Pins disconnected.", "from", from.String(), "to", to.String())
	g.observer.Disconnected(ctx, c)
	return nil
}
