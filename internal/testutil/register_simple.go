package testutil

import "github.com/specialistvlad/nodegraph/internal/registry"

// SimpleModule is a test helper for easily creating a mock module that
// registers a fixed list of node types.
type SimpleModule struct {
	ModuleName string
	NodeTypes  []registry.NodeType
}

// Name implements the registry.Module interface.
func (m *SimpleModule) Name() string {
	if m.ModuleName == "" {
		return "simple"
	}
	return m.ModuleName
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) error {
	for _, nt := range m.NodeTypes {
		if err := r.RegisterNode(nt); err != nil {
			return err
		}
	}
	return nil
}
