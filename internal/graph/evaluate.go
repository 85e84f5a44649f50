package graph

import (
	"context"
	"fmt"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"go.uber.org/multierr"
)

// Failure pairs a node with the error its compute returned.
type Failure struct {
	NodeID string
	Err    error
}

// Report lists what a pass or a trigger computed, in computation order.
type Report struct {
	Computed []string
	Failed   []Failure
}

func (r *Report) merge(other *Report) {
	r.Computed = append(r.Computed, other.Computed...)
	r.Failed = append(r.Failed, other.Failed...)
}

// Evaluate runs one scheduler pass: every dirty pure node is computed at most
// once, upstream before downstream, ties broken by creation order. A failing
// node is recorded and the pass goes on. Nodes dirtied again while the pass
// runs stay dirty for the next one.
//
// The context is checked before each node. When it is done the pass stops,
// nodes not yet computed stay dirty and ctx.Err() is returned along with the
// partial report.
func (g *Graph) Evaluate(ctx context.Context) (*Report, error) {
	report := &Report{}
	order, err := g.sched.Order()
	if err != nil {
		return report, err
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Evaluation pass starting.", "dirty", len(g.dirty))
	// A compute may change the structure, which rebuilds the cached order.
	order = append([]string(nil), order...)
	for _, id := range order {
		if !g.dirty[id] {
			continue
		}
		if err := ctx.Err(); err != nil {
			logger.Debug("Evaluation pass cancelled.", "remaining", len(g.dirty))
			return report, err
		}
		n, ok := g.nodes[id]
		if !ok || n.State() != node.Dirty {
			delete(g.dirty, id)
			continue
		}
		g.compute(ctx, n, "", report)
	}
	logger.Debug("Evaluation pass finished.", "computed", len(report.Computed), "failed", len(report.Failed))
	return report, nil
}

// compute runs one node and records the outcome. The node leaves the work
// queue when its compute starts; a change during the call queues it again.
func (g *Graph) compute(ctx context.Context, n *node.Node, trigger string, report *Report) ([]string, bool) {
	delete(g.dirty, n.ID())
	fired, err := n.Compute(ctx, trigger)
	if err != nil {
		g.failures[n.ID()] = err
		report.Failed = append(report.Failed, Failure{NodeID: n.ID(), Err: err})
		g.observer.NodeFailed(ctx, n, err)
		return nil, false
	}
	delete(g.failures, n.ID())
	report.Computed = append(report.Computed, n.ID())
	g.observer.NodeComputed(ctx, n)
	return fired, true
}

type frame struct {
	node    *node.Node
	trigger string
	depth   int
}

// Trigger fires an exec input of a callable node and follows the chain of
// exec outputs it sets off, depth first in the order outputs fired and
// connections were made. An empty pin name is allowed for nodes without exec
// inputs, such as entry points.
//
// Each chain may run at most MaxExecutionDepth callable computations. A chain
// exceeding it stops with ErrExecutionDepthExceeded and a chain reaching a
// Failed node stops with ErrNodeFailed; other chains continue and the errors
// are returned together. Compute failures are recorded as in Evaluate.
func (g *Graph) Trigger(ctx context.Context, nodeID, pinName string) (*Report, error) {
	report := &Report{}
	n, err := g.Node(nodeID)
	if err != nil {
		return report, err
	}
	if n.Kind() != node.Callable {
		return report, fmt.Errorf("%w: %s (%s)", flowerr.ErrNotCallable, n.Name(), n.TypeName())
	}
	if pinName != "" {
		p, err := n.Pin(pinName)
		if err != nil {
			return report, err
		}
		if !p.IsExec() || p.Direction() != pin.Input {
			return report, fmt.Errorf("%w: %s is not an exec input", flowerr.ErrUnknownPin, p)
		}
	}
	if n.State() == node.Failed {
		return report, fmt.Errorf("%w: %s", flowerr.ErrNodeFailed, n.Name())
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Trigger starting.", "node", n.Name(), "pin", pinName)

	var errs error
	stack := []frame{{node: n, trigger: pinName, depth: 1}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return report, multierr.Append(errs, err)
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.depth > g.maxDepth {
			logger.Warn("Execution chain stopped at the depth limit.", "node", f.node.Name(), "limit", g.maxDepth)
			errs = multierr.Append(errs, fmt.Errorf("%w: chain reached %s after %d steps", flowerr.ErrExecutionDepthExceeded, f.node.Name(), g.maxDepth))
			continue
		}
		if f.node.State() == node.Failed {
			errs = multierr.Append(errs, fmt.Errorf("%w: chain reached %s", flowerr.ErrNodeFailed, f.node.Name()))
			continue
		}

		if err := g.settle(ctx, report); err != nil {
			return report, multierr.Append(errs, err)
		}
		fired, ok := g.compute(ctx, f.node, f.trigger, report)
		if !ok {
			continue
		}

		next := g.successors(f.node, fired, f.depth+1)
		for i := len(next) - 1; i >= 0; i-- {
			stack = append(stack, next[i])
		}
	}

	if err := g.settle(ctx, report); err != nil {
		return report, multierr.Append(errs, err)
	}
	logger.Debug("Trigger finished.", "node", n.Name(), "computed", len(report.Computed), "failed", len(report.Failed))
	return report, errs
}

// successors lists the frames for the exec inputs linked to the fired outputs.
func (g *Graph) successors(n *node.Node, fired []string, depth int) []frame {
	var next []frame
	for _, name := range fired {
		out, err := n.Pin(name)
		if err != nil {
			continue
		}
		for _, dst := range out.Links() {
			if target, ok := g.nodes[dst.Owner().ID()]; ok && target.Kind() == node.Callable {
				next = append(next, frame{node: target, trigger: dst.Name(), depth: depth})
			}
		}
	}
	return next
}

// settle runs a pass when pure nodes are waiting, so callable nodes read
// current values.
func (g *Graph) settle(ctx context.Context, report *Report) error {
	if len(g.dirty) == 0 {
		return nil
	}
	r, err := g.Evaluate(ctx)
	report.merge(r)
	return err
}
