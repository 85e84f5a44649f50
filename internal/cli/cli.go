package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// listFlag collects the values of a flag given several times.
type listFlag []string

func (l *listFlag) String() string { return strings.Join(*l, ",") }

func (l *listFlag) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("nodegraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
nodegraph - Evaluates typed dataflow node graphs.

Usage:
  nodegraph [options] [GRAPH_PATH]

Arguments:
  GRAPH_PATH
    Path to a single .ngraph.hcl file or a directory containing them.

Examples:
  nodegraph -set 'a.inp=true' -trigger start graph.ngraph.hcl
  nodegraph -export out.ngraph.hcl ./graphs

Options:
`)
		flagSet.PrintDefaults()
	}

	var sets, triggers listFlag
	graphFlag := flagSet.String("graph", "", "Path to the graph file or directory.")
	gFlag := flagSet.String("g", "", "Path to the graph file or directory (shorthand).")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	maxDepthFlag := flagSet.Int("max-depth", 0, "Maximum number of callable nodes one exec chain may run. 0 keeps the default.")
	flagSet.Var(&sets, "set", "Pin assignment node.pin=value, value as an HCL literal. Repeatable.")
	flagSet.Var(&triggers, "trigger", "Callable node to fire after evaluation, as node or node.pin. Repeatable.")
	editorFlag := flagSet.String("editor-url", "", "socket.io URL of an editor to stream graph events to.")
	exportFlag := flagSet.String("export", "", "Write the graph to this file after the run.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *graphFlag != "" {
		path = *graphFlag
	} else if *gFlag != "" {
		path = *gFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Graph path determined.", "path", path)

	if path == "" {
		slog.Debug("No graph path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	config, err := app.NewConfig(app.Config{
		GraphPath:         path,
		LogFormat:         strings.ToLower(*logFormatFlag),
		LogLevel:          strings.ToLower(*logLevelFlag),
		MaxExecutionDepth: *maxDepthFlag,
		Sets:              sets,
		Triggers:          triggers,
		EditorURL:         *editorFlag,
		ExportPath:        *exportFlag,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
