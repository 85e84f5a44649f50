// internal/nodeid/address.go
package nodeid

// String serializes the Address into its canonical `node.pin` form.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	if a.Pin == "" {
		return a.Node
	}
	return a.Node + "." + a.Pin
}

// Equal checks for equality between two Address pointers.
func (a *Address) Equal(other *Address) bool {
	if a == nil || other == nil {
		return a == other
	}
	return *a == *other
}
