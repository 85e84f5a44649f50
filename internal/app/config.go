package app

import (
	"errors"
	"fmt"
	"slices"

	"github.com/specialistvlad/nodegraph/internal/nodeid"
	"go.uber.org/multierr"
)

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	GraphPath string // graph document or directory of documents

	LogFormat string
	LogLevel  string
	// MaxExecutionDepth limits exec chains. Zero keeps the preference value.
	MaxExecutionDepth int

	// Sets are `node.pin=value` assignments applied after loading.
	Sets []string
	// Triggers name the callable nodes to fire, as `node` or `node.pin`.
	Triggers []string

	EditorURL  string
	ExportPath string
}

// NewConfig validates cfg and returns a copy of it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.GraphPath == "" {
		return nil, errors.New("GraphPath is a required configuration field and cannot be empty")
	}

	var errs error
	if cfg.LogLevel != "" && !slices.Contains(logLevels, cfg.LogLevel) {
		errs = multierr.Append(errs, fmt.Errorf("invalid log level %q: must be one of %v", cfg.LogLevel, logLevels))
	}
	if cfg.LogFormat != "" && !slices.Contains(logFormats, cfg.LogFormat) {
		errs = multierr.Append(errs, fmt.Errorf("invalid log format %q: must be one of %v", cfg.LogFormat, logFormats))
	}
	if cfg.MaxExecutionDepth < 0 {
		errs = multierr.Append(errs, fmt.Errorf("max execution depth must not be negative, got %d", cfg.MaxExecutionDepth))
	}
	for _, set := range cfg.Sets {
		if _, _, err := nodeid.ParseAssignment(set); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	for _, trigger := range cfg.Triggers {
		if _, _, err := parseTrigger(trigger); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	if errs != nil {
		return nil, errs
	}

	cfg.Sets = slices.Clone(cfg.Sets)
	cfg.Triggers = slices.Clone(cfg.Triggers)
	return &cfg, nil
}

// parseTrigger splits `node` or `node.pin` into its parts.
func parseTrigger(raw string) (string, string, error) {
	if nodeid.ValidName(raw) {
		return raw, "", nil
	}
	addr, err := nodeid.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("invalid trigger: %w", err)
	}
	return addr.Node, addr.Pin, nil
}
