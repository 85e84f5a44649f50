package editorlink

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type emitted struct {
	event   string
	payload any
}

type fakeEmitter struct {
	events []emitted
	err    error
}

func (f *fakeEmitter) Emit(ev string, args ...any) error {
	f.events = append(f.events, emitted{event: ev, payload: args[0]})
	return f.err
}

func TestPublisher(t *testing.T) {
	ctx, _ := testutil.Context(t)
	em := &fakeEmitter{}
	g := testutil.Graph(t)
	g.SetObserver(NewPublisher(em))

	src, err := g.CreateNode(ctx, "Const", "src")
	require.NoError(t, err)
	fail, err := g.CreateNode(ctx, "Fail", "fail")
	require.NoError(t, err)
	require.NoError(t, g.SetValue(ctx, "src.out", true))
	c, err := g.Connect(ctx, graph.ConnectionRef{FromNode: src.ID(), FromPin: "out", ToNode: fail.ID(), ToPin: "inp"})
	require.NoError(t, err)
	_, err = g.Evaluate(ctx)
	require.NoError(t, err)
	require.NoError(t, g.Disconnect(ctx, c.Ref()))

	require.Len(t, em.events, 4)
	wantConn := ConnectionEvent{FromNode: "node-1", FromPin: "out", ToNode: "node-2", ToPin: "inp"}

	assert.Equal(t, EventConnectionAdded, em.events[0].event)
	assert.Equal(t, wantConn, em.events[0].payload)

	assert.Equal(t, EventNodeComputed, em.events[1].event)
	assert.Equal(t, NodeEvent{ID: "node-1", Name: "src", Type: "Const", State: "clean", Outputs: map[string]any{"out": true}}, em.events[1].payload)

	assert.Equal(t, EventNodeFailed, em.events[2].event)
	failed := em.events[2].payload.(NodeEvent)
	assert.Equal(t, "failed", failed.State)
	assert.Contains(t, failed.Error, testutil.ErrFail.Error())

	assert.Equal(t, EventConnectionRemoved, em.events[3].event)
	assert.Equal(t, wantConn, em.events[3].payload)
}

func TestPublisherLogsEmitErrors(t *testing.T) {
	ctx, logs := testutil.Context(t)
	em := &fakeEmitter{err: errors.New("socket closed")}
	g := testutil.Graph(t)
	g.SetObserver(NewPublisher(em))

	_, err := g.CreateNode(ctx, "Not", "")
	require.NoError(t, err)
	_, err = g.Evaluate(ctx)
	require.NoError(t, err)

	assert.Len(t, em.events, 1)
	assert.Contains(t, logs.String(), "Failed to publish editor event.")
	assert.Contains(t, logs.String(), "socket closed")
}

func TestToInterface(t *testing.T) {
	testCases := []struct {
		name string
		in   cty.Value
		want any
	}{
		{name: "null", in: cty.NullVal(cty.String), want: nil},
		{name: "unknown", in: cty.UnknownVal(cty.Bool), want: nil},
		{name: "string", in: cty.StringVal("x"), want: "x"},
		{name: "whole number", in: cty.NumberIntVal(4), want: int64(4)},
		{name: "fraction", in: cty.NumberFloatVal(1.5), want: 1.5},
		{name: "bool", in: cty.True, want: true},
		{name: "list", in: cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")}), want: []any{"a", "b"}},
		{name: "object", in: cty.ObjectVal(map[string]cty.Value{"k": cty.NumberIntVal(1)}), want: map[string]any{"k": int64(1)}},
		{name: "empty list", in: cty.ListValEmpty(cty.Number), want: []any{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := toInterface(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := toInterface(cty.CapsuleVal(cty.Capsule("thing", reflect.TypeOf(struct{}{})), &struct{}{}))
	assert.Error(t, err)
}

func TestDialRejectsBadURL(t *testing.T) {
	for _, u := range []string{"://missing-scheme", "relative/path"} {
		_, err := Dial(context.Background(), Options{URL: u})
		assert.Error(t, err, u)
	}
}
