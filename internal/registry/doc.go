// Package registry provides the central "glue" for the module system.
//
// The Registry maps the type names used in graph documents and by the editor
// (e.g., "DemoNode", "BoolPin") to the constructors and metadata that
// implement them: pin data types, node types and the UI factories keyed by
// those names. Packages of nodes implement Module and are loaded once at
// process start.
//
// After loading, the registry is validated so that every node type can
// actually be instantiated, and its type registry is sealed. From then on it
// is read-only and may be shared by any number of graphs.
package registry
