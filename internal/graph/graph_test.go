package graph

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/flowerr"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"go.uber.org/multierr"
)

// fixture counts computations per node type and records what Step nodes read.
type fixture struct {
	calls map[string]int
	seen  []int
}

func (f *fixture) count(typeName string, fn node.BehaviorFunc) func() node.Behavior {
	return func() node.Behavior {
		return node.BehaviorFunc(func(ctx context.Context, in node.Inputs) (node.Outputs, error) {
			f.calls[typeName]++
			return fn(ctx, in)
		})
	}
}

func (f *fixture) Name() string { return "fixture" }

func (f *fixture) Register(r *registry.Registry) error {
	nodeTypes := []registry.NodeType{
		{
			Name: "Const",
			Pins: []pin.Spec{{Name: "out", Type: types.Bool, Direction: pin.Output}},
		},
		{
			Name: "Number",
			Pins: []pin.Spec{{Name: "out", Type: types.Int, Direction: pin.Output}},
		},
		{
			Name: "Not",
			Pins: []pin.Spec{
				{Name: "inp", Type: types.Bool},
				{Name: "out", Type: types.Bool, Direction: pin.Output},
			},
			New: f.count("Not", func(_ context.Context, in node.Inputs) (node.Outputs, error) {
				return node.Outputs{"out": in.Value("inp").Not()}, nil
			}),
		},
		{
			Name: "Sum",
			Pins: []pin.Spec{
				{Name: "values", Type: types.Int, Structure: pin.Multi},
				{Name: "result", Type: types.Int, Direction: pin.Output},
			},
			Suggestions: []node.Suggestion{{Type: types.Int, Structure: pin.Single}},
			New: f.count("Sum", func(_ context.Context, in node.Inputs) (node.Outputs, error) {
				var values []int
				if err := in.Decode("values", &values); err != nil {
					return nil, err
				}
				total := 0
				for _, v := range values {
					total += v
				}
				return node.Outputs{"result": total}, nil
			}),
		},
		{
			Name: "Flaky",
			Pins: []pin.Spec{
				{Name: "inp", Type: types.Int},
				{Name: "out", Type: types.Int, Direction: pin.Output},
			},
			New: f.count("Flaky", func(_ context.Context, in node.Inputs) (node.Outputs, error) {
				var v int
				if err := in.Decode("inp", &v); err != nil {
					return nil, err
				}
				if v < 0 {
					return nil, fmt.Errorf("negative input %d", v)
				}
				return node.Outputs{"out": v}, nil
			}),
		},
		{
			Name: "Start",
			Kind: node.Callable,
			Pins: []pin.Spec{{Name: "then", Type: types.Exec, Direction: pin.Output}},
			New: f.count("Start", func(context.Context, node.Inputs) (node.Outputs, error) {
				return node.Outputs{"then": true}, nil
			}),
		},
		{
			Name: "Step",
			Kind: node.Callable,
			Pins: []pin.Spec{
				{Name: "exec", Type: types.Exec, Structure: pin.Multi},
				{Name: "value", Type: types.Int},
				{Name: "then", Type: types.Exec, Direction: pin.Output},
			},
			New: f.count("Step", func(_ context.Context, in node.Inputs) (node.Outputs, error) {
				var v int
				if err := in.Decode("value", &v); err != nil {
					return nil, err
				}
				f.seen = append(f.seen, v)
				return node.Outputs{"then": true}, nil
			}),
		},
	}
	for _, nt := range nodeTypes {
		if err := r.RegisterNode(nt); err != nil {
			return err
		}
	}
	return nil
}

func testContext() context.Context {
	return ctxlog.WithLogger(context.Background(), ctxlog.Discard())
}

func newTestGraph(t *testing.T, opts ...Option) (*Graph, *fixture) {
	t.Helper()
	f := &fixture{calls: make(map[string]int)}
	reg, err := registry.New(nil)
	require.NoError(t, err)
	require.NoError(t, reg.Load(testContext(), f))
	return New(reg, opts...), f
}

func mustCreate(t *testing.T, g *Graph, typeName, name string) *node.Node {
	t.Helper()
	n, err := g.CreateNode(testContext(), typeName, name)
	require.NoError(t, err)
	return n
}

func mustConnect(t *testing.T, g *Graph, from *node.Node, fromPin string, to *node.Node, toPin string) Connection {
	t.Helper()
	c, err := g.Connect(testContext(), ConnectionRef{FromNode: from.ID(), FromPin: fromPin, ToNode: to.ID(), ToPin: toPin})
	require.NoError(t, err)
	return c
}

func mustPin(t *testing.T, n *node.Node, name string) *pin.Pin {
	t.Helper()
	p, err := n.Pin(name)
	require.NoError(t, err)
	return p
}

func mustEvaluate(t *testing.T, g *Graph) *Report {
	t.Helper()
	report, err := g.Evaluate(testContext())
	require.NoError(t, err)
	return report
}

func TestBoolNot(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx := testContext()
	not := mustCreate(t, g, "Not", "not")

	require.NoError(t, g.SetValue(ctx, "not.inp", true))
	mustEvaluate(t, g)
	assert.True(t, mustPin(t, not, "out").GetData().RawEquals(cty.False))

	require.NoError(t, g.SetValue(ctx, "not.inp", false))
	mustEvaluate(t, g)
	assert.True(t, mustPin(t, not, "out").GetData().RawEquals(cty.True))

	err := g.SetValue(ctx, "not.inp", "yes")
	assert.True(t, errors.Is(err, flowerr.ErrTypeMismatch))
	assert.True(t, mustPin(t, not, "inp").GetData().RawEquals(cty.False))
}

func TestNotFollowsConstant(t *testing.T) {
	g, f := newTestGraph(t)
	ctx := testContext()
	a := mustCreate(t, g, "Const", "a")
	b := mustCreate(t, g, "Not", "b")
	mustConnect(t, g, a, "out", b, "inp")

	require.NoError(t, g.SetValue(ctx, "a.out", true))
	mustEvaluate(t, g)
	assert.True(t, mustPin(t, b, "out").GetData().RawEquals(cty.False))
	assert.Equal(t, node.Clean, b.State())

	require.NoError(t, g.SetValue(ctx, "a.out", false))
	mustEvaluate(t, g)
	assert.True(t, mustPin(t, b, "out").GetData().RawEquals(cty.True))
	assert.Equal(t, 2, f.calls["Not"])
}

// typeMatrix registers, for every builtin type, a node with one output of
// that type and nodes with one Single or Multi input of it.
type typeMatrix struct{}

func (typeMatrix) Name() string { return "matrix" }

func (typeMatrix) Register(r *registry.Registry) error {
	var err error
	for _, bt := range types.Builtins() {
		kind := node.Pure
		if bt.Exec {
			kind = node.Callable
		}
		err = multierr.Combine(err,
			r.RegisterNode(registry.NodeType{Name: "Src" + bt.Name, Kind: kind, Pins: []pin.Spec{{Name: "out", Type: bt.Name, Direction: pin.Output}}}),
			r.RegisterNode(registry.NodeType{Name: "Sink" + bt.Name, Kind: kind, Pins: []pin.Spec{{Name: "inp", Type: bt.Name}}}),
			r.RegisterNode(registry.NodeType{Name: "MultiSink" + bt.Name, Kind: kind, Pins: []pin.Spec{{Name: "inp", Type: bt.Name, Structure: pin.Multi}}}),
		)
	}
	return err
}

func TestConnectBuiltinPairs(t *testing.T) {
	ctx := testContext()
	reg, err := registry.New(nil)
	require.NoError(t, err)
	require.NoError(t, reg.Load(ctx, typeMatrix{}))

	for _, from := range types.Builtins() {
		for _, to := range types.Builtins() {
			for _, sink := range []string{"Sink", "MultiSink"} {
				t.Run(fmt.Sprintf("%s to %s%s", from.Name, sink, to.Name), func(t *testing.T) {
					g := New(reg)
					src := mustCreate(t, g, "Src"+from.Name, "src")
					dst := mustCreate(t, g, sink+to.Name, "dst")
					out, inp := mustPin(t, src, "out"), mustPin(t, dst, "inp")

					_, err := g.Connect(ctx, ConnectionRef{FromNode: src.ID(), FromPin: "out", ToNode: dst.ID(), ToPin: "inp"})
					if reg.Types.Compatible(from.Name, to.Name) {
						require.NoError(t, err)
						assert.True(t, out.LinkedTo(inp))
						assert.Len(t, g.Connections(), 1)
						return
					}
					require.Error(t, err)
					assert.True(t, errors.Is(err, flowerr.ErrTypeMismatch), "got %v", err)
					assert.Empty(t, out.Links())
					assert.Empty(t, inp.Links())
					assert.Empty(t, g.Connections())
				})
			}
		}
	}

	t.Run("unwritten AnyPin output", func(t *testing.T) {
		g := New(reg)
		src := mustCreate(t, g, "Src"+types.Any, "src")
		single := mustCreate(t, g, "Sink"+types.Any, "single")
		multi := mustCreate(t, g, "MultiSink"+types.Any, "multi")
		c := mustConnect(t, g, src, "out", single, "inp")
		mustConnect(t, g, src, "out", multi, "inp")
		assert.True(t, c.To.GetData().IsNull())
		assert.Equal(t, 0, mustPin(t, multi, "inp").GetData().LengthInt())

		require.NoError(t, g.SetValue(ctx, "src.out", "hello"))
		assert.True(t, c.To.GetData().RawEquals(cty.StringVal("hello")))
		want := cty.ListVal([]cty.Value{cty.StringVal("hello")})
		assert.True(t, mustPin(t, multi, "inp").GetData().RawEquals(want))

		require.NoError(t, g.Disconnect(ctx, c.Ref()))
		assert.True(t, c.To.GetData().IsNull())
		assert.Equal(t, node.Dirty, single.State())
	})
}

func TestCreateNodeNames(t *testing.T) {
	g, _ := newTestGraph(t)
	a := mustCreate(t, g, "Not", "")
	b := mustCreate(t, g, "Not", "")
	c := mustCreate(t, g, "Not", "Not")

	assert.Equal(t, "Not", a.Name())
	assert.Equal(t, "Not_2", b.Name())
	assert.Equal(t, "Not_3", c.Name())
	assert.NotEqual(t, a.ID(), b.ID())

	_, err := g.CreateNode(testContext(), "Missing", "")
	assert.True(t, errors.Is(err, flowerr.ErrUnknownType))

	_, err = g.CreateNode(testContext(), "Not", "bad name")
	assert.Error(t, err)
	assert.Len(t, g.Nodes(), 3)
}

func TestConnect(t *testing.T) {
	ctx := testContext()

	t.Run("compatible pins link both ends", func(t *testing.T) {
		g, _ := newTestGraph(t)
		src := mustCreate(t, g, "Const", "src")
		not := mustCreate(t, g, "Not", "not")
		require.NoError(t, mustPin(t, src, "out").SetData(true))
		mustEvaluate(t, g)

		c := mustConnect(t, g, src, "out", not, "inp")
		assert.True(t, c.From.LinkedTo(c.To))
		assert.True(t, c.To.GetData().RawEquals(cty.True))
		assert.Equal(t, node.Dirty, not.State())
		assert.Equal(t, []Connection{c}, g.Connections())
	})

	testCases := []struct {
		name            string
		from, fromPin   string
		to, toPin       string
		want            error
		prepareOccupied bool
	}{
		{name: "incompatible types", from: "Const", fromPin: "out", to: "Sum", toPin: "values", want: flowerr.ErrIncompatibleType},
		{name: "input to input", from: "Not", fromPin: "inp", to: "Not", toPin: "inp", want: flowerr.ErrDirectionMismatch},
		{name: "output to output", from: "Const", fromPin: "out", to: "Not", toPin: "out", want: flowerr.ErrDirectionMismatch},
		{name: "exec to data", from: "Start", fromPin: "then", to: "Not", toPin: "inp", want: flowerr.ErrTypeMismatch},
		{name: "occupied input", from: "Const", fromPin: "out", to: "Not", toPin: "inp", want: flowerr.ErrPinOccupied, prepareOccupied: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			g, _ := newTestGraph(t)
			src := mustCreate(t, g, tc.from, "src")
			dst := mustCreate(t, g, tc.to, "dst")
			if tc.prepareOccupied {
				other := mustCreate(t, g, tc.from, "other")
				mustConnect(t, g, other, tc.fromPin, dst, tc.toPin)
			}
			before := len(g.Connections())

			_, err := g.Connect(ctx, ConnectionRef{FromNode: src.ID(), FromPin: tc.fromPin, ToNode: dst.ID(), ToPin: tc.toPin})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
			assert.Len(t, g.Connections(), before)
			assert.False(t, mustPin(t, src, tc.fromPin).LinkedTo(mustPin(t, dst, tc.toPin)))
		})
	}

	t.Run("self connection", func(t *testing.T) {
		g, _ := newTestGraph(t)
		not := mustCreate(t, g, "Not", "not")
		_, err := g.Connect(ctx, ConnectionRef{FromNode: not.ID(), FromPin: "out", ToNode: not.ID(), ToPin: "inp"})
		assert.True(t, errors.Is(err, flowerr.ErrSelfConnection))
		assert.True(t, errors.Is(err, flowerr.ErrCycleDetected))
	})

	t.Run("already connected", func(t *testing.T) {
		g, _ := newTestGraph(t)
		a := mustCreate(t, g, "Number", "a")
		sum := mustCreate(t, g, "Sum", "sum")
		mustConnect(t, g, a, "out", sum, "values")
		_, err := g.Connect(ctx, ConnectionRef{FromNode: a.ID(), FromPin: "out", ToNode: sum.ID(), ToPin: "values"})
		assert.True(t, errors.Is(err, flowerr.ErrAlreadyConnected))
		assert.Len(t, g.Connections(), 1)
	})

	t.Run("pure cycle", func(t *testing.T) {
		g, _ := newTestGraph(t)
		a := mustCreate(t, g, "Not", "a")
		b := mustCreate(t, g, "Not", "b")
		c := mustCreate(t, g, "Not", "c")
		mustConnect(t, g, a, "out", b, "inp")
		mustConnect(t, g, b, "out", c, "inp")

		_, err := g.Connect(ctx, ConnectionRef{FromNode: c.ID(), FromPin: "out", ToNode: a.ID(), ToPin: "inp"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, flowerr.ErrCycleDetected))
		assert.Contains(t, err.Error(), "node-1 -> node-2 -> node-3 -> node-1")
		assert.Len(t, g.Connections(), 2)
		assert.False(t, mustPin(t, a, "inp").Connected())
	})

	t.Run("pin connect goes through the graph", func(t *testing.T) {
		g, _ := newTestGraph(t)
		src := mustCreate(t, g, "Const", "src")
		not := mustCreate(t, g, "Not", "not")
		var logs bytes.Buffer
		ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
		require.NoError(t, mustPin(t, not, "inp").ConnectTo(ctx, mustPin(t, src, "out")))
		assert.Contains(t, logs.String(), "Pins connected.")
		require.Len(t, g.Connections(), 1)
		assert.Equal(t, ConnectionRef{FromNode: src.ID(), FromPin: "out", ToNode: not.ID(), ToPin: "inp"}, g.Connections()[0].Ref())
	})
}

func TestDisconnectRevertsInput(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx := testContext()
	src := mustCreate(t, g, "Const", "src")
	not := mustCreate(t, g, "Not", "not")
	require.NoError(t, mustPin(t, src, "out").SetData(true))
	c := mustConnect(t, g, src, "out", not, "inp")
	mustEvaluate(t, g)
	assert.True(t, mustPin(t, not, "out").GetData().RawEquals(cty.False))

	require.NoError(t, g.Disconnect(ctx, c.Ref()))
	assert.Empty(t, g.Connections())
	assert.Equal(t, node.Dirty, not.State())
	assert.Equal(t, []string{not.ID()}, g.Dirty())

	mustEvaluate(t, g)
	assert.True(t, mustPin(t, not, "out").GetData().RawEquals(cty.True))

	err := g.Disconnect(ctx, c.Ref())
	assert.True(t, errors.Is(err, flowerr.ErrNotConnected))
}

func TestEvaluate(t *testing.T) {
	t.Run("computes once per pass and is idempotent", func(t *testing.T) {
		g, f := newTestGraph(t)
		not := mustCreate(t, g, "Not", "not")
		report := mustEvaluate(t, g)
		assert.Equal(t, []string{not.ID()}, report.Computed)
		first := mustPin(t, not, "out").GetData()

		report = mustEvaluate(t, g)
		assert.Empty(t, report.Computed)
		assert.Equal(t, 1, f.calls["Not"])

		require.NoError(t, g.SetValue(testContext(), "not.inp", false))
		mustEvaluate(t, g)
		assert.Equal(t, 2, f.calls["Not"])
		assert.True(t, first.RawEquals(mustPin(t, not, "out").GetData()))
	})

	t.Run("coalesces writes", func(t *testing.T) {
		g, f := newTestGraph(t)
		src := mustCreate(t, g, "Const", "src")
		not := mustCreate(t, g, "Not", "not")
		mustConnect(t, g, src, "out", not, "inp")
		mustEvaluate(t, g)
		f.calls["Not"] = 0

		out := mustPin(t, src, "out")
		require.NoError(t, out.SetData(true))
		require.NoError(t, out.SetData(false))
		require.NoError(t, out.SetData(true))
		mustEvaluate(t, g)
		assert.Equal(t, 1, f.calls["Not"])
		assert.True(t, mustPin(t, not, "out").GetData().RawEquals(cty.False))
	})

	t.Run("upstream before downstream", func(t *testing.T) {
		g, _ := newTestGraph(t)
		c := mustCreate(t, g, "Not", "c")
		b := mustCreate(t, g, "Not", "b")
		a := mustCreate(t, g, "Not", "a")
		mustConnect(t, g, a, "out", b, "inp")
		mustConnect(t, g, b, "out", c, "inp")

		report := mustEvaluate(t, g)
		assert.Equal(t, []string{a.ID(), b.ID(), c.ID()}, report.Computed)
		// a: !false = true, b: !true = false, c: !false = true
		assert.True(t, mustPin(t, c, "out").GetData().RawEquals(cty.True))
	})

	t.Run("multi input sums every source", func(t *testing.T) {
		g, _ := newTestGraph(t)
		a := mustCreate(t, g, "Number", "a")
		b := mustCreate(t, g, "Number", "b")
		sum := mustCreate(t, g, "Sum", "sum")
		mustConnect(t, g, a, "out", sum, "values")
		mustConnect(t, g, b, "out", sum, "values")
		require.NoError(t, mustPin(t, a, "out").SetData(2))
		require.NoError(t, mustPin(t, b, "out").SetData(5))

		mustEvaluate(t, g)
		assert.True(t, mustPin(t, sum, "result").GetData().RawEquals(cty.NumberIntVal(7)))
	})

	t.Run("failure is isolated until reset", func(t *testing.T) {
		g, f := newTestGraph(t)
		ctx := testContext()
		num := mustCreate(t, g, "Number", "num")
		flaky := mustCreate(t, g, "Flaky", "flaky")
		not := mustCreate(t, g, "Not", "not")
		mustConnect(t, g, num, "out", flaky, "inp")
		require.NoError(t, mustPin(t, num, "out").SetData(-1))

		report := mustEvaluate(t, g)
		require.Len(t, report.Failed, 1)
		assert.Equal(t, flaky.ID(), report.Failed[0].NodeID)
		assert.True(t, errors.Is(report.Failed[0].Err, flowerr.ErrNodeComputeFailure))
		assert.Contains(t, report.Computed, not.ID())
		assert.Equal(t, node.Failed, flaky.State())
		assert.Contains(t, g.Failures(), flaky.ID())

		require.NoError(t, mustPin(t, num, "out").SetData(3))
		report = mustEvaluate(t, g)
		assert.NotContains(t, report.Computed, flaky.ID())
		assert.Equal(t, 1, f.calls["Flaky"])

		require.NoError(t, g.ResetNode(ctx, flaky.ID()))
		assert.Empty(t, g.Failures())
		report = mustEvaluate(t, g)
		assert.Equal(t, []string{flaky.ID()}, report.Computed)
		assert.True(t, mustPin(t, flaky, "out").GetData().RawEquals(cty.NumberIntVal(3)))
	})

	t.Run("cancelled context leaves nodes dirty", func(t *testing.T) {
		g, f := newTestGraph(t)
		not := mustCreate(t, g, "Not", "not")
		ctx, cancel := context.WithCancel(testContext())
		cancel()

		report, err := g.Evaluate(ctx)
		assert.True(t, errors.Is(err, context.Canceled))
		assert.Empty(t, report.Computed)
		assert.Equal(t, []string{not.ID()}, g.Dirty())
		assert.Zero(t, f.calls["Not"])
	})
}

func TestTrigger(t *testing.T) {
	ctx := testContext()

	t.Run("settles pure inputs before each step", func(t *testing.T) {
		g, f := newTestGraph(t)
		start := mustCreate(t, g, "Start", "start")
		first := mustCreate(t, g, "Step", "first")
		second := mustCreate(t, g, "Step", "second")
		num := mustCreate(t, g, "Number", "num")
		mustConnect(t, g, start, "then", first, "exec")
		mustConnect(t, g, first, "then", second, "exec")
		mustConnect(t, g, num, "out", first, "value")
		require.NoError(t, mustPin(t, num, "out").SetData(7))

		report, err := g.Trigger(ctx, start.ID(), "")
		require.NoError(t, err)
		assert.Equal(t, []string{num.ID(), start.ID(), first.ID(), second.ID()}, report.Computed)
		assert.Equal(t, []int{7, 0}, f.seen)
	})

	t.Run("pure node is not callable", func(t *testing.T) {
		g, _ := newTestGraph(t)
		not := mustCreate(t, g, "Not", "not")
		_, err := g.Trigger(ctx, not.ID(), "")
		assert.True(t, errors.Is(err, flowerr.ErrNotCallable))
	})

	t.Run("unknown exec pin", func(t *testing.T) {
		g, _ := newTestGraph(t)
		step := mustCreate(t, g, "Step", "step")
		_, err := g.Trigger(ctx, step.ID(), "value")
		assert.True(t, errors.Is(err, flowerr.ErrUnknownPin))
		_, err = g.Trigger(ctx, step.ID(), "ghost")
		assert.True(t, errors.Is(err, flowerr.ErrUnknownPin))
	})

	t.Run("exec cycle stops at the depth limit", func(t *testing.T) {
		g, f := newTestGraph(t, WithMaxExecutionDepth(5))
		start := mustCreate(t, g, "Start", "start")
		ping := mustCreate(t, g, "Step", "ping")
		pong := mustCreate(t, g, "Step", "pong")
		mustConnect(t, g, start, "then", ping, "exec")
		mustConnect(t, g, ping, "then", pong, "exec")
		mustConnect(t, g, pong, "then", ping, "exec")

		_, err := g.Trigger(ctx, start.ID(), "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, flowerr.ErrExecutionDepthExceeded))
		assert.Equal(t, 4, f.calls["Step"])
	})
}

func TestDestroyNode(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx := testContext()
	src := mustCreate(t, g, "Const", "src")
	not := mustCreate(t, g, "Not", "not")
	require.NoError(t, mustPin(t, src, "out").SetData(true))
	mustConnect(t, g, src, "out", not, "inp")
	mustEvaluate(t, g)

	require.NoError(t, g.DestroyNode(ctx, src.ID()))
	assert.Empty(t, g.Connections())
	assert.False(t, mustPin(t, not, "inp").Connected())
	assert.True(t, mustPin(t, not, "inp").GetData().RawEquals(cty.False))
	assert.Equal(t, node.Dirty, not.State())

	_, err := g.Node(src.ID())
	assert.True(t, errors.Is(err, flowerr.ErrUnknownNode))
	_, err = g.NodeByName("src")
	assert.True(t, errors.Is(err, flowerr.ErrUnknownNode))

	again := mustCreate(t, g, "Const", "src")
	assert.Equal(t, "src", again.Name())
}

func TestDynamicPins(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx := testContext()
	sum := mustCreate(t, g, "Sum", "sum")
	num := mustCreate(t, g, "Number", "num")

	p, err := g.AddPin(ctx, sum.ID(), pin.Spec{Name: "bias", Type: types.Int})
	require.NoError(t, err)
	assert.True(t, sum.IsDynamic("bias"))

	mustConnect(t, g, num, "out", sum, "bias")
	require.NoError(t, g.RemovePin(ctx, sum.ID(), p.Name()))
	assert.Empty(t, g.Connections())
	_, err = sum.Pin("bias")
	assert.True(t, errors.Is(err, flowerr.ErrUnknownPin))

	_, err = g.AddPin(ctx, num.ID(), pin.Spec{Name: "extra", Type: types.Int})
	assert.True(t, errors.Is(err, flowerr.ErrDynamicPinsUnsupported))
}

var ctyComparer = cmp.Comparer(func(a, b cty.Value) bool { return a.RawEquals(b) })

func TestSnapshotRestore(t *testing.T) {
	g, _ := newTestGraph(t)
	ctx := testContext()
	src := mustCreate(t, g, "Const", "src")
	not := mustCreate(t, g, "Not", "not")
	sum := mustCreate(t, g, "Sum", "sum")
	num := mustCreate(t, g, "Number", "num")
	require.NoError(t, mustPin(t, src, "out").SetData(true))
	require.NoError(t, mustPin(t, num, "out").SetData(4))
	_, err := g.AddPin(ctx, sum.ID(), pin.Spec{Name: "bias", Type: types.Int})
	require.NoError(t, err)
	require.NoError(t, g.SetValue(ctx, "sum.bias", 2))
	mustConnect(t, g, src, "out", not, "inp")
	mustConnect(t, g, num, "out", sum, "values")
	mustEvaluate(t, g)

	snap := g.Snapshot()
	want := Snapshot{
		Nodes: []NodeSnapshot{
			{ID: "node-1", Name: "src", Type: "Const", Values: map[string]cty.Value{"out": cty.True}},
			{ID: "node-2", Name: "not", Type: "Not", Values: map[string]cty.Value{}},
			{
				ID: "node-3", Name: "sum", Type: "Sum",
				Pins:   []PinSnapshot{{Name: "bias", Type: types.Int, Direction: pin.Input, Structure: pin.Single}},
				Values: map[string]cty.Value{"bias": cty.NumberIntVal(2)},
			},
			{ID: "node-4", Name: "num", Type: "Number", Values: map[string]cty.Value{"out": cty.NumberIntVal(4)}},
		},
		Connections: []ConnectionRef{
			{FromNode: "node-1", FromPin: "out", ToNode: "node-2", ToPin: "inp"},
			{FromNode: "node-4", FromPin: "out", ToNode: "node-3", ToPin: "values"},
		},
	}
	if diff := cmp.Diff(want, snap, ctyComparer); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}

	restored, _ := newTestGraph(t)
	restored.seq = 10
	ids, err := Restore(ctx, restored, snap)
	require.NoError(t, err)
	assert.Equal(t, "node-11", ids["node-1"])

	mustEvaluate(t, restored)
	out, err := restored.Pin("not.out")
	require.NoError(t, err)
	assert.True(t, out.GetData().RawEquals(cty.False))
	result, err := restored.Pin("sum.result")
	require.NoError(t, err)
	assert.True(t, result.GetData().RawEquals(cty.NumberIntVal(4)))

	t.Run("errors are collected", func(t *testing.T) {
		broken := Snapshot{
			Nodes: []NodeSnapshot{
				{ID: "a", Name: "a", Type: "Missing"},
				{ID: "b", Name: "b", Type: "Not", Values: map[string]cty.Value{"inp": cty.StringVal("x")}},
			},
			Connections: []ConnectionRef{{FromNode: "a", FromPin: "out", ToNode: "b", ToPin: "inp"}},
		}
		fresh, _ := newTestGraph(t)
		ids, err := Restore(ctx, fresh, broken)
		require.Error(t, err)
		assert.True(t, errors.Is(err, flowerr.ErrUnknownType))
		assert.True(t, errors.Is(err, flowerr.ErrTypeMismatch))
		assert.Contains(t, err.Error(), "endpoint was not restored")
		assert.Len(t, ids, 1)
	})
}

type recorder struct {
	events []string
}

func (r *recorder) NodeComputed(_ context.Context, n *node.Node) {
	r.events = append(r.events, "computed "+n.Name())
}

func (r *recorder) NodeFailed(_ context.Context, n *node.Node, _ error) {
	r.events = append(r.events, "failed "+n.Name())
}

func (r *recorder) Connected(_ context.Context, c Connection) {
	r.events = append(r.events, "connected "+c.String())
}

func (r *recorder) Disconnected(_ context.Context, c Connection) {
	r.events = append(r.events, "disconnected "+c.String())
}

func TestObserver(t *testing.T) {
	rec := &recorder{}
	g, _ := newTestGraph(t, WithObserver(rec))
	ctx := testContext()
	num := mustCreate(t, g, "Number", "num")
	flaky := mustCreate(t, g, "Flaky", "flaky")
	c := mustConnect(t, g, num, "out", flaky, "inp")
	require.NoError(t, mustPin(t, num, "out").SetData(-2))
	mustEvaluate(t, g)
	require.NoError(t, g.Disconnect(ctx, c.Ref()))

	want := []string{
		"connected node-1.out -> node-2.inp",
		"computed num",
		"failed flaky",
		"disconnected node-1.out -> node-2.inp",
	}
	assert.Equal(t, want, rec.events)

	g.SetObserver(nil)
	assert.Equal(t, NopObserver{}, g.observer)
}
