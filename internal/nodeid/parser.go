// internal/nodeid/parser.go
package nodeid

import (
	"fmt"
	"regexp"
	"strings"
)

// nameRegex matches a single node or pin name.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// isValidName checks for undesirable but technically matching names.
func isValidName(name string) bool {
	return name != "-" && nameRegex.MatchString(name)
}

// ValidName reports whether name can be used as a node or pin name in an
// address.
func ValidName(name string) bool {
	return isValidName(name)
}

// Parse creates a new Address by parsing its canonical `node.pin` form.
func Parse(raw string) (*Address, error) {
	if raw == "" {
		return nil, fmt.Errorf("pin address cannot be empty")
	}

	nodeName, pinName, ok := strings.Cut(raw, ".")
	if !ok {
		return nil, fmt.Errorf("pin address %q must have the form node.pin", raw)
	}
	if !isValidName(nodeName) {
		return nil, fmt.Errorf("invalid node name in %q: %q", raw, nodeName)
	}
	if !isValidName(pinName) {
		return nil, fmt.Errorf("invalid pin name in %q: %q", raw, pinName)
	}
	return New(nodeName, pinName), nil
}

// ParseAssignment splits a `node.pin=value` expression into its address and
// the raw value text.
func ParseAssignment(raw string) (*Address, string, error) {
	lhs, rhs, ok := strings.Cut(raw, "=")
	if !ok {
		return nil, "", fmt.Errorf("assignment %q must have the form node.pin=value", raw)
	}
	addr, err := Parse(strings.TrimSpace(lhs))
	if err != nil {
		return nil, "", err
	}
	return addr, strings.TrimSpace(rhs), nil
}
