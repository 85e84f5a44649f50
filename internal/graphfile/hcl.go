package graphfile

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclwrite"
	"github.com/specialistvlad/nodegraph/internal/ctxlog"
	"github.com/specialistvlad/nodegraph/internal/exchange"
	"github.com/specialistvlad/nodegraph/internal/graph"
	"github.com/specialistvlad/nodegraph/internal/nodeid"
	"github.com/specialistvlad/nodegraph/internal/pin"
	"github.com/zclconf/go-cty/cty"
)

// Extension is the file extension of HCL graph documents.
const Extension = ".ngraph.hcl"

// HCL is the HCL document format.
type HCL struct{}

var _ exchange.Format = HCL{}

func (HCL) Name() string      { return "hcl" }
func (HCL) Extension() string { return Extension }

// Export writes snap as an HCL document.
func (HCL) Export(ctx context.Context, w io.Writer, snap graph.Snapshot) error {
	src, err := Encode(snap)
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Debug("Graph document encoded.", "nodes", len(snap.Nodes), "bytes", len(src))
	_, err = w.Write(src)
	return err
}

// Import reads an HCL document.
func (HCL) Import(ctx context.Context, r io.Reader, filename string) (graph.Snapshot, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	snap, err := Decode(src, filename)
	if err != nil {
		return graph.Snapshot{}, err
	}
	ctxlog.FromContext(ctx).Debug("Graph document decoded.", "file", filename, "nodes", len(snap.Nodes), "connections", len(snap.Connections))
	return snap, nil
}

// Encode renders a snapshot. Connections are written with node names, so
// every node they reference must be part of the snapshot.
func Encode(snap graph.Snapshot) ([]byte, error) {
	names := make(map[string]string, len(snap.Nodes))
	f := hclwrite.NewEmptyFile()
	body := f.Body()

	for i, ns := range snap.Nodes {
		names[ns.ID] = ns.Name
		if i > 0 {
			body.AppendNewline()
		}
		nb := body.AppendNewBlock("node", []string{ns.Type, ns.Name}).Body()
		for _, ps := range ns.Pins {
			pb := nb.AppendNewBlock("pin", []string{ps.Name}).Body()
			pb.SetAttributeValue("type", cty.StringVal(ps.Type))
			pb.SetAttributeValue("direction", cty.StringVal(ps.Direction.String()))
			if ps.Structure != pin.Single {
				pb.SetAttributeValue("structure", cty.StringVal(ps.Structure.String()))
			}
		}
		if len(ns.Values) > 0 {
			vb := nb.AppendNewBlock("values", nil).Body()
			for _, name := range slices.Sorted(maps.Keys(ns.Values)) {
				vb.SetAttributeValue(name, ns.Values[name])
			}
		}
	}

	for _, ref := range snap.Connections {
		from, okFrom := names[ref.FromNode]
		to, okTo := names[ref.ToNode]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("connection %s references a node outside the snapshot", ref)
		}
		body.AppendNewline()
		cb := body.AppendNewBlock("connection", nil).Body()
		cb.SetAttributeValue("from", cty.StringVal(nodeid.New(from, ref.FromPin).String()))
		cb.SetAttributeValue("to", cty.StringVal(nodeid.New(to, ref.ToPin).String()))
	}
	return f.Bytes(), nil
}

// Decode parses a document into a snapshot. Node names double as node ids.
func Decode(src []byte, filename string) (graph.Snapshot, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return graph.Snapshot{}, fmt.Errorf("failed to parse HCL file %s: %w", filename, diags)
	}

	var root fileRoot
	diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
	if diags.HasErrors() {
		return graph.Snapshot{}, fmt.Errorf("failed to decode HCL file %s: %w", filename, diags)
	}

	var snap graph.Snapshot
	seen := make(map[string]bool, len(root.Nodes))
	for _, nb := range root.Nodes {
		if !nodeid.ValidName(nb.Name) {
			return graph.Snapshot{}, fmt.Errorf("%s: invalid node name %q", filename, nb.Name)
		}
		if seen[nb.Name] {
			return graph.Snapshot{}, fmt.Errorf("%s: node %q is declared twice", filename, nb.Name)
		}
		seen[nb.Name] = true

		ns, err := translateNode(nb)
		if err != nil {
			return graph.Snapshot{}, fmt.Errorf("%s: %w", filename, err)
		}
		snap.Nodes = append(snap.Nodes, ns)
	}

	for _, cb := range root.Connections {
		ref, err := translateConnection(cb)
		if err != nil {
			return graph.Snapshot{}, fmt.Errorf("%s: %w", filename, err)
		}
		snap.Connections = append(snap.Connections, ref)
	}
	return snap, nil
}

func translateNode(nb *nodeBlock) (graph.NodeSnapshot, error) {
	ns := graph.NodeSnapshot{
		ID:     nb.Name,
		Name:   nb.Name,
		Type:   nb.Type,
		Values: make(map[string]cty.Value),
	}
	for _, pb := range nb.Pins {
		direction, err := pin.ParseDirection(pb.Direction)
		if err != nil {
			return ns, fmt.Errorf("node %q pin %q: %w", nb.Name, pb.Name, err)
		}
		structure, err := pin.ParseStructure(pb.Structure)
		if err != nil {
			return ns, fmt.Errorf("node %q pin %q: %w", nb.Name, pb.Name, err)
		}
		ns.Pins = append(ns.Pins, graph.PinSnapshot{Name: pb.Name, Type: pb.Type, Direction: direction, Structure: structure})
	}
	if nb.Values == nil {
		return ns, nil
	}

	attrs, diags := nb.Values.Body.JustAttributes()
	if diags.HasErrors() {
		return ns, fmt.Errorf("node %q values: %w", nb.Name, diags)
	}
	for name, attr := range attrs {
		v, diags := attr.Expr.Value(nil)
		if diags.HasErrors() {
			return ns, fmt.Errorf("node %q value %q: %w", nb.Name, name, diags)
		}
		ns.Values[name] = v
	}
	return ns, nil
}

func translateConnection(cb *connectionBlock) (graph.ConnectionRef, error) {
	from, err := nodeid.Parse(cb.From)
	if err != nil {
		return graph.ConnectionRef{}, fmt.Errorf("connection from: %w", err)
	}
	to, err := nodeid.Parse(cb.To)
	if err != nil {
		return graph.ConnectionRef{}, fmt.Errorf("connection to: %w", err)
	}
	return graph.ConnectionRef{FromNode: from.Node, FromPin: from.Pin, ToNode: to.Node, ToPin: to.Pin}, nil
}
