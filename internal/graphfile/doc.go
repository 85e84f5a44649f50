// Package graphfile reads and writes graphs as HCL documents.
//
// A document is a list of node blocks followed by connection blocks. Nodes
// are labelled with their type and name; connections refer to pins by
// `node.pin` address, node given by name:
//
//	node "Const" "src" {
//	  values {
//	    out = true
//	  }
//	}
//
//	node "Sum" "sum" {
//	  pin "bias" {
//	    type      = "IntPin"
//	    direction = "input"
//	  }
//	}
//
//	connection {
//	  from = "src.out"
//	  to   = "not.inp"
//	}
//
// Only values set directly and dynamically added pins are written; everything
// else comes from the node type when the document is restored.
package graphfile
