package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeGraph(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "main.ngraph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600), "failed to set up test file")
	return path
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	path := writeGraph(t, `
node "Start" "start" {
}

node "Print" "print" {
  values {
    value = "hello"
  }
}

connection {
  from = "start.then"
  to   = "print.exec"
}
`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{"-log-format", "text", "-trigger", "start", path})

	// --- Assert ---
	require.NoError(t, err)
	require.Contains(t, out.String(), `value="\"hello\""`)
	require.Contains(t, out.String(), "Run finished.")
}

func TestRun_LoadError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A document with a syntax error fails while the graph is loaded.
	path := writeGraph(t, `
		node "Start" "start" {
	`)
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, []string{path})

	// --- Assert ---
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The "-h" (help) flag should cause cli.Parse to return `shouldExit=true`.
	args := []string{"-h"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// Providing an unknown flag will cause cli.Parse to return an error.
	args := []string{"--this-is-not-a-valid-flag"}
	out := &bytes.Buffer{}

	// --- Act ---
	err := run(context.Background(), out, args)

	// --- Assert ---
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}
