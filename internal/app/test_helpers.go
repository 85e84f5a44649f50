package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest writes document to a graph file, points cfg at it and builds
// an app logging at debug level into the returned buffer.
func SetupAppTest(t *testing.T, document string, cfg Config, modules ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "main.ngraph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(document), 0o600))
	cfg.GraphPath = path
	cfg.LogLevel = "debug"
	cfg.LogFormat = "text"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := NewApp(logBuffer, appConfig, modules...)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("NODEGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}
