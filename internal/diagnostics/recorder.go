package diagnostics

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/node"
)

// Status is the outcome of the last compute of a node, as seen by a Recorder.
type Status int

const (
	// StatusUnknown means the node has not been computed since recording began.
	StatusUnknown Status = iota
	StatusComputed
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusComputed:
		return "computed"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Recorder is an observer keeping the latest outcome of every node.
//
// The recorder maintains three independent sync.Maps keyed by node id:
//   - statuses: the Status of the last compute
//   - errors: the error of the last failed compute
//   - counts: an *atomic.Int64 counting successful computes
type Recorder struct {
	statuses sync.Map
	errors   sync.Map
	counts   sync.Map

	connections atomic.Int64
}

var _ graph.Observer = (*Recorder)(nil)

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) NodeComputed(_ context.Context, n *node.Node) {
	r.statuses.Store(n.ID(), StatusComputed)
	r.errors.Delete(n.ID())
	c, _ := r.counts.LoadOrStore(n.ID(), new(atomic.Int64))
	c.(*atomic.Int64).Add(1)
}

func (r *Recorder) NodeFailed(_ context.Context, n *node.Node, err error) {
	r.statuses.Store(n.ID(), StatusFailed)
	r.errors.Store(n.ID(), err)
}

func (r *Recorder) Connected(context.Context, graph.Connection) {
	r.connections.Add(1)
}

func (r *Recorder) Disconnected(context.Context, graph.Connection) {
	r.connections.Add(-1)
}

// Status returns the outcome of the last compute of a node.
func (r *Recorder) Status(nodeID string) Status {
	s, ok := r.statuses.Load(nodeID)
	if !ok {
		return StatusUnknown
	}
	return s.(Status)
}

// Err returns the error of the last compute if it failed.
func (r *Recorder) Err(nodeID string) error {
	err, ok := r.errors.Load(nodeID)
	if !ok {
		return nil
	}
	return err.(error)
}

// Computed returns how many times a node computed successfully.
func (r *Recorder) Computed(nodeID string) int {
	c, ok := r.counts.Load(nodeID)
	if !ok {
		return 0
	}
	return int(c.(*atomic.Int64).Load())
}

// Connections returns the number of connections added minus those removed.
func (r *Recorder) Connections() int {
	return int(r.connections.Load())
}

// Failed returns the ids of the nodes whose last compute failed, in no
// particular order.
func (r *Recorder) Failed() []string {
	var ids []string
	r.statuses.Range(func(k, v any) bool {
		if v.(Status) == StatusFailed {
			ids = append(ids, k.(string))
		}
		return true
	})
	return ids
}

// Reset forgets everything recorded so far.
func (r *Recorder) Reset() {
	r.statuses.Clear()
	r.errors.Clear()
	r.counts.Clear()
	r.connections.Store(0)
}
