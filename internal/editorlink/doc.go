// Package editorlink streams graph events to a remote editor over socket.io.
//
// A Publisher is a graph.Observer: install it with graph.WithObserver or
// Graph.SetObserver and every compute, failure and connection change is
// emitted as a JSON-friendly payload. Dial opens the socket.io client the
// publisher writes to.
//
// Events:
//
//	node.computed       NodeEvent with the node's output values
//	node.failed         NodeEvent with the error text
//	connection.added    ConnectionEvent
//	connection.removed  ConnectionEvent
package editorlink
