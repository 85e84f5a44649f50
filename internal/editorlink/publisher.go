package editorlink

import (
	"context"
	"fmt"
	"math/big"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/zclconf/go-cty/cty"
)

// Event names emitted by a Publisher.
const (
	EventNodeComputed      = "node.computed"
	EventNodeFailed        = "node.failed"
	EventConnectionAdded   = "connection.added"
	EventConnectionRemoved = "connection.removed"
)

// Emitter is the part of a socket.io client a Publisher needs.
// *socket.Socket implements it.
type Emitter interface {
	Emit(ev string, args ...any) error
}

// NodeEvent is the payload of node events.
type NodeEvent struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	State   string         `json:"state"`
	Outputs map[string]any `json:"outputs,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// ConnectionEvent is the payload of connection events.
type ConnectionEvent struct {
	FromNode string `json:"from_node"`
	FromPin  string `json:"from_pin"`
	ToNode   string `json:"to_node"`
	ToPin    string `json:"to_pin"`
}

// Publisher is a graph.Observer emitting every event to an editor.
// Emit failures are logged and otherwise ignored: a lost editor never stops
// the graph.
type Publisher struct {
	emitter Emitter
}

var _ graph.Observer = (*Publisher)(nil)

// NewPublisher creates a publisher writing to e.
func NewPublisher(e Emitter) *Publisher {
	return &Publisher{emitter: e}
}

func (p *Publisher) NodeComputed(ctx context.Context, n *node.Node) {
	ev := nodeEvent(n)
	ev.Outputs = make(map[string]any)
	for _, out := range n.Outputs() {
		if out.IsExec() {
			continue
		}
		v, err := toInterface(out.GetData())
		if err != nil {
			ctxlog.FromContext(ctx).Debug("Output left out of editor event.", "node", n.Name(), "pin", out.Name(), "error", err)
			continue
		}
		ev.Outputs[out.Name()] = v
	}
	p.emit(ctx, EventNodeComputed, ev)
}

func (p *Publisher) NodeFailed(ctx context.Context, n *node.Node, err error) {
	ev := nodeEvent(n)
	ev.Error = err.Error()
	p.emit(ctx, EventNodeFailed, ev)
}

func (p *Publisher) Connected(ctx context.Context, c graph.Connection) {
	p.emit(ctx, EventConnectionAdded, connectionEvent(c))
}

func (p *Publisher) Disconnected(ctx context.Context, c graph.Connection) {
	p.emit(ctx, EventConnectionRemoved, connectionEvent(c))
}

func (p *Publisher) emit(ctx context.Context, event string, payload any) {
	if err := p.emitter.Emit(event, payload); err != nil {
		ctxlog.FromContext(ctx).Warn("Failed to publish editor event.", "event", event, "error", err)
	}
}

func nodeEvent(n *node.Node) NodeEvent {
	return NodeEvent{ID: n.ID(), Name: n.Name(), Type: n.TypeName(), State: n.State().String()}
}

func connectionEvent(c graph.Connection) ConnectionEvent {
	ref := c.Ref()
	return ConnectionEvent{FromNode: ref.FromNode, FromPin: ref.FromPin, ToNode: ref.ToNode, ToPin: ref.ToPin}
}

// toInterface converts a cty.Value to plain Go values the socket.io encoder
// can serialize.
func toInterface(val cty.Value) (any, error) {
	if !val.IsKnown() || val.IsNull() {
		return nil, nil
	}
	ty := val.Type()
	if ty.IsPrimitiveType() {
		switch ty {
		case cty.String:
			return val.AsString(), nil
		case cty.Number:
			bf := val.AsBigFloat()
			if bf.IsInt() {
				if i, acc := bf.Int64(); acc == big.Exact {
					return i, nil
				}
			}
			f, _ := bf.Float64()
			return f, nil
		case cty.Bool:
			return val.True(), nil
		}
	}
	if ty.IsObjectType() || ty.IsMapType() {
		out := make(map[string]any)
		for it := val.ElementIterator(); it.Next(); {
			k, v := it.Element()
			converted, err := toInterface(v)
			if err != nil {
				return nil, err
			}
			out[k.AsString()] = converted
		}
		return out, nil
	}
	if ty.IsTupleType() || ty.IsListType() || ty.IsSetType() {
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			converted, err := toInterface(v)
			if err != nil {
				return nil, err
			}
			out = append(out, converted)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported cty.Type for conversion: %s", ty.FriendlyName())
}
