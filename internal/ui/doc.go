// Package ui defines how an editor front end obtains display wrappers and
// input widgets for nodes and pins.
//
// Factories are keyed by registered type name and resolved through a map
// built at startup. A node or pin type without a factory gets the default
// wrapper. An unconnected input pin gets an input widget only when its type
// has a widget factory; otherwise it is edited through connections alone.
// Rendering is left to the host.
package ui
