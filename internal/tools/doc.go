// Package tools holds the editor's shelf and dock tools.
//
// A shelf tool is a button: running it performs one action on the graph. A
// dock tool is a panel: running it renders a read-only view of the graph.
// Tools only use the public operations of graph.Graph, the same ones any
// other caller has.
package tools
