// internal/nodeid/doc.go

/*
Package nodeid provides a structured representation for pin references
within a graph, based on the canonical format `node.pin`.

Node and pin names are made of letters, digits, `_` and `-`. Graph files
use addresses in `connect` blocks and the command line uses them to set
input values (`-set not.inp=true`).

This package centralizes all formatting and parsing of these references.
*/
package nodeid
