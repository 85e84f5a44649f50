package diagnostics

import (
	"context"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/node"
)

// Log is an observer writing graph events to the context logger.
type Log struct{}

var _ graph.Observer = Log{}

func (Log) NodeComputed(ctx context.Context, n *node.Node) {
	ctxlog.FromContext(ctx).Debug("Node computed.", "node", n.Name(), "id", n.ID(), "type", n.TypeName(), "state", n.State())
}

func (Log) NodeFailed(ctx context.Context, n *node.Node, err error) {
	ctxlog.FromContext(ctx).Warn("Node compute failed.", "node", n.Name(), "id", n.ID(), "type", n.TypeName(), "error", err)
}

func (Log) Connected(ctx context.Context, c graph.Connection) {
	ctxlog.FromContext(ctx).Debug("Connection added.", "connection", c.String(), "type", c.From.TypeName())
}

func (Log) Disconnected(ctx context.Context, c graph.Connection) {
	ctxlog.FromContext(ctx).Debug("Connection removed.", "connection", c.String())
}
