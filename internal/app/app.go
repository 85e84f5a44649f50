package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/diagnostics"
	"github.com/specialistvlad/nodegraph/internal/exchange"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/graphfile"
	"github.com/specialistvlad/nodegraph/internal/prefs"
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/internal/tools"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	prefs    *prefs.Preferences
	registry *registry.Registry
	formats  *exchange.Formats
	toolbox  *tools.Toolbox
	recorder *diagnostics.Recorder
	graph    *graph.Graph
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own logger, registry and empty graph.
// With no modules given the core modules are loaded.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) (*App, error) {
	settings, err := preferences(cfg)
	if err != nil {
		return nil, err
	}
	logger := newLogger(settings.String(prefs.LogLevel), settings.String(prefs.LogFormat), outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.", "preferences", settings.Serialize())

	reg, err := registry.New(nil)
	if err != nil {
		return nil, err
	}
	if len(modules) == 0 {
		modules = coreModules
	}
	if err := reg.Load(ctx, modules...); err != nil {
		return nil, fmt.Errorf("failed to load modules: %w", err)
	}

	formats, err := exchange.NewFormats(graphfile.HCL{})
	if err != nil {
		return nil, err
	}
	toolbox, err := tools.NewToolbox(tools.Defaults(formats, cfg.ExportPath)...)
	if err != nil {
		return nil, err
	}

	recorder := diagnostics.NewRecorder()
	g := graph.New(reg,
		graph.WithMaxExecutionDepth(settings.Int(prefs.ExecutionMaxDepth)),
		graph.WithObserver(diagnostics.Fanout(diagnostics.Log{}, recorder)),
	)
	logger.Debug("Graph created.", "max_execution_depth", g.MaxExecutionDepth(), "formats", formats.Extensions())

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		prefs:    settings,
		registry: reg,
		formats:  formats,
		toolbox:  toolbox,
		recorder: recorder,
		graph:    g,
	}, nil
}

// preferences seeds the preference model from the command line.
func preferences(cfg *Config) (*prefs.Preferences, error) {
	p := prefs.Defaults()
	overrides := map[string]any{}
	if cfg.LogLevel != "" {
		overrides[prefs.LogLevel] = cfg.LogLevel
	}
	if cfg.LogFormat != "" {
		overrides[prefs.LogFormat] = cfg.LogFormat
	}
	if cfg.MaxExecutionDepth > 0 {
		overrides[prefs.ExecutionMaxDepth] = cfg.MaxExecutionDepth
	}
	for key, v := range overrides {
		if err := p.Set(key, v); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Graph returns the application's graph. This is primarily for testing.
func (a *App) Graph() *graph.Graph {
	return a.graph
}

// Recorder returns the diagnostics recorder observing the graph.
func (a *App) Recorder() *diagnostics.Recorder {
	return a.recorder
}
