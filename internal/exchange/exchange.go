// Package exchange defines how graphs are written to and read from files.
//
// A Format pairs an Exporter and an Importer with the file extension it
// owns. Formats are collected in a table and chosen by file name, so the
// CLI and the export tool never depend on a concrete file format. Both
// directions go through graph.Snapshot and graph.Restore, which means a
// format only uses public graph operations.
package exchange

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/fsutil"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"golang.org/x/sync/errgroup"
)

// Exporter writes a snapshot in some file format.
type Exporter interface {
	Export(ctx context.Context, w io.Writer, snap graph.Snapshot) error
}

// Importer reads a snapshot. filename is used in diagnostics only.
type Importer interface {
	Import(ctx context.Context, r io.Reader, filename string) (graph.Snapshot, error)
}

// Format is a named file format bound to an extension such as ".ngraph.hcl".
type Format interface {
	Name() string
	Extension() string
	Exporter
	Importer
}

// Formats is a table of formats keyed by extension.
type Formats struct {
	byExt map[string]Format
	order []string
}

// NewFormats creates a table holding formats.
func NewFormats(formats ...Format) (*Formats, error) {
	f := &Formats{byExt: make(map[string]Format)}
	for _, format := range formats {
		if err := f.Register(format); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Register adds a format. Extensions must start with a dot and be unique.
func (f *Formats) Register(format Format) error {
	ext := format.Extension()
	if !strings.HasPrefix(ext, ".") {
		return fmt.Errorf("format %q: extension %q must start with a dot", format.Name(), ext)
	}
	if existing, ok := f.byExt[ext]; ok {
		return fmt.Errorf("format %q: extension %q already belongs to %q", format.Name(), ext, existing.Name())
	}
	f.byExt[ext] = format
	f.order = append(f.order, ext)
	return nil
}

// Extensions lists the registered extensions in registration order.
func (f *Formats) Extensions() []string {
	return slices.Clone(f.order)
}

// ForPath picks the format whose extension ends the file name. The longest
// matching extension wins, so ".ngraph.hcl" beats ".hcl".
func (f *Formats) ForPath(path string) (Format, error) {
	var best string
	for _, ext := range f.order {
		if fsutil.HasExtension(path, ext) && len(ext) > len(best) {
			best = ext
		}
	}
	if best == "" {
		return nil, fmt.Errorf("no graph format for %q (known: %s)", path, strings.Join(f.order, ", "))
	}
	return f.byExt[best], nil
}

// Find lists the graph files under paths that some registered format can read.
func (f *Formats) Find(paths ...string) ([]string, error) {
	if len(f.order) == 0 {
		return nil, nil
	}
	return fsutil.FindFiles(paths, f.order...)
}

// ExportFile writes the snapshot of g to path in the format its name selects.
func (f *Formats) ExportFile(ctx context.Context, g *graph.Graph, path string) (err error) {
	format, err := f.ForPath(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	if err := format.Export(ctx, file, g.Snapshot()); err != nil {
		return fmt.Errorf("failed to export %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Graph exported.", "path", path, "format", format.Name(), "nodes", len(g.Nodes()))
	return nil
}

// ReadFile decodes path into a snapshot without touching any graph. It is
// safe to call concurrently.
func (f *Formats) ReadFile(ctx context.Context, path string) (graph.Snapshot, error) {
	format, err := f.ForPath(path)
	if err != nil {
		return graph.Snapshot{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()
	return format.Import(ctx, file, path)
}

// ReadFiles decodes several files concurrently. Snapshots are returned in
// the order of paths; the first error cancels the remaining reads.
func (f *Formats) ReadFiles(ctx context.Context, paths ...string) ([]graph.Snapshot, error) {
	snaps := make([]graph.Snapshot, len(paths))
	grp, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			snap, err := f.ReadFile(ctx, path)
			if err != nil {
				return err
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// ImportFile reads path and restores its nodes and connections into g. The
// returned map translates the ids used in the file to ids in g.
func (f *Formats) ImportFile(ctx context.Context, g *graph.Graph, path string) (map[string]string, error) {
	snap, err := f.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}
	return Restore(ctx, g, path, snap)
}

// Restore adds a snapshot read from path to g.
func Restore(ctx context.Context, g *graph.Graph, path string, snap graph.Snapshot) (map[string]string, error) {
	ids, err := graph.Restore(ctx, g, snap)
	if err != nil {
		return ids, fmt.Errorf("failed to restore %s: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Graph imported.", "path", path, "nodes", len(snap.Nodes), "connections", len(snap.Connections))
	return ids, nil
}
