// internal/nodeid/types.go
package nodeid

// Address is the structured form of a pin reference: the node's name and
// the name of one of its pins.
type Address struct {
	Node string
	Pin  string
}

// New creates an address from its parts without validating them.
func New(node, pin string) *Address {
	return &Address{Node: node, Pin: pin}
}
