// Package demo is the reference node package. It shows each extension point
// a package can use: a custom pin type (DemoPin), a hand-written node type
// (DemoNode), function-library nodes built from plain Go functions (DemoLib),
// a callable node and UI factories for all of them.
package demo
