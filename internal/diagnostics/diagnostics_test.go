package diagnostics

import (
	"context"
	"testing"

	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/node"
	"github.com/specialistvlad/nodegraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// build creates const -> not and const -> fail.
func build(t *testing.T, ctx context.Context, o graph.Observer) (*graph.Graph, map[string]*node.Node) {
	t.Helper()
	g := testutil.Graph(t)
	g.SetObserver(o)
	nodes := map[string]*node.Node{}
	for _, typeName := range []string{"Const", "Not", "Fail"} {
		n, err := g.CreateNode(ctx, typeName, "")
		require.NoError(t, err)
		nodes[typeName] = n
	}
	for _, dst := range []string{"Not", "Fail"} {
		_, err := g.Connect(ctx, graph.ConnectionRef{FromNode: nodes["Const"].ID(), FromPin: "out", ToNode: nodes[dst].ID(), ToPin: "inp"})
		require.NoError(t, err)
	}
	return g, nodes
}

func TestLog(t *testing.T) {
	ctx, logs := testutil.Context(t)
	g, _ := build(t, ctx, Log{})

	_, err := g.Evaluate(ctx)
	require.NoError(t, err)

	out := logs.String()
	assert.Contains(t, out, `level=WARN msg="Node compute failed." node=Fail`)
	assert.Contains(t, out, "fail node always fails")
	assert.Contains(t, out, `msg="Node computed." node=Not`)
	assert.Contains(t, out, `msg="Connection added." connection="node-1.out -> node-2.inp"`)
}

func TestRecorder(t *testing.T) {
	ctx, _ := testutil.Context(t)
	rec := NewRecorder()
	g, nodes := build(t, ctx, rec)
	assert.Equal(t, 2, rec.Connections())

	_, err := g.Evaluate(ctx)
	require.NoError(t, err)

	assert.Equal(t, StatusComputed, rec.Status(nodes["Not"].ID()))
	assert.Equal(t, 1, rec.Computed(nodes["Not"].ID()))
	assert.Equal(t, StatusFailed, rec.Status(nodes["Fail"].ID()))
	assert.ErrorIs(t, rec.Err(nodes["Fail"].ID()), testutil.ErrFail)
	assert.Equal(t, []string{nodes["Fail"].ID()}, rec.Failed())
	assert.Equal(t, StatusUnknown, rec.Status("ghost"))
	assert.Zero(t, rec.Computed("ghost"))

	require.NoError(t, g.DestroyNode(ctx, nodes["Fail"].ID()))
	assert.Equal(t, 1, rec.Connections())

	rec.Reset()
	assert.Equal(t, StatusUnknown, rec.Status(nodes["Not"].ID()))
	assert.Nil(t, rec.Err(nodes["Fail"].ID()))
	assert.Zero(t, rec.Connections())
}

func TestRecorderClearsErrorOnSuccess(t *testing.T) {
	ctx, _ := testutil.Context(t)
	rec := NewRecorder()
	g, nodes := build(t, ctx, rec)
	not := nodes["Not"]

	rec.NodeFailed(ctx, not, testutil.ErrFail)
	assert.Equal(t, StatusFailed, rec.Status(not.ID()))

	_, err := g.Evaluate(ctx)
	require.NoError(t, err)
	assert.Equal(t, StatusComputed, rec.Status(not.ID()))
	assert.NoError(t, rec.Err(not.ID()))
}

func TestFanout(t *testing.T) {
	ctx, logs := testutil.Context(t)
	first, second := NewRecorder(), NewRecorder()
	g, nodes := build(t, ctx, Fanout(first, nil, second, Log{}))

	_, err := g.Evaluate(ctx)
	require.NoError(t, err)
	for _, rec := range []*Recorder{first, second} {
		assert.Equal(t, StatusFailed, rec.Status(nodes["Fail"].ID()))
		assert.Equal(t, 2, rec.Connections())
	}
	assert.Contains(t, logs.String(), "Node compute failed.")

	single := NewRecorder()
	assert.Same(t, single, Fanout(nil, single))
}
