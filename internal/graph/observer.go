package graph

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/node"
)

// Observer is told about computations and structural changes. It is the
// hook for diagnostics collectors and for editors mirroring the graph.
// Calls happen synchronously on the goroutine driving the graph.
type Observer interface {
	NodeComputed(ctx context.Context, n *node.Node)
	NodeFailed(ctx context.Context, n *node.Node, err error)
	Connected(ctx context.Context, c Connection)
	Disconnected(ctx context.Context, c Connection)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) NodeComputed(context.Context, *node.Node)      {}
func (NopObserver) NodeFailed(context.Context, *node.Node, error) {}
func (NopObserver) Connected(context.Context, Connection)         {}
func (NopObserver) Disconnected(context.Context, Connection)      {}
