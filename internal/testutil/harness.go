package testutil

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/stretchr/testify/require"
)

// Context returns a context carrying a debug logger that writes into the
// returned buffer. Set NODEGRAPH_TEST_LOGS=true to print the buffer when the
// test ends.
func Context(t *testing.T) (context.Context, *SafeBuffer) {
	t.Helper()
	logBuffer := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(logBuffer, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if os.Getenv("NODEGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return ctxlog.WithLogger(context.Background(), logger), logBuffer
}

// Registry builds a registry with the built-in pin types and loads modules
// into it. With no modules the LogicModule is loaded.
func Registry(t *testing.T, modules ...registry.Module) *registry.Registry {
	t.Helper()
	if len(modules) == 0 {
		modules = []registry.Module{LogicModule{}}
	}
	reg, err := registry.New(nil)
	require.NoError(t, err)
	require.NoError(t, reg.Load(context.Background(), modules...))
	return reg
}

// Graph builds an empty graph over Registry(t, modules...).
func Graph(t *testing.T, modules ...registry.Module) *graph.Graph {
	t.Helper()
	return graph.New(Registry(t, modules...))
}
