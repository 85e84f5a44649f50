package diagnostics

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/node"
)

type fanout []graph.Observer

// Fanout returns an observer forwarding every event to each of observers, in
// the order given. Nil observers are skipped.
func Fanout(observers ...graph.Observer) graph.Observer {
	var f fanout
	for _, o := range observers {
		if o != nil {
			f = append(f, o)
		}
	}
	if len(f) == 1 {
		return f[0]
	}
	return f
}

func (f fanout) NodeComputed(ctx context.Context, n *node.Node) {
	for _, o := range f {
		o.NodeComputed(ctx, n)
	}
}

func (f fanout) NodeFailed(ctx context.Context, n *node.Node, err error) {
	for _, o := range f {
		o.NodeFailed(ctx, n, err)
	}
}

func (f fanout) Connected(ctx context.Context, c graph.Connection) {
	for _, o := range f {
		o.Connected(ctx, c)
	}
}

func (f fanout) Disconnected(ctx context.Context, c graph.Connection) {
	for _, o := range f {
		o.Disconnected(ctx, c)
	}
}
