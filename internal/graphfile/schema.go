package graphfile

import "github.com/hashicorp/hcl/v2"

// fileRoot is a struct used to decode all top-level blocks of a document.
type fileRoot struct {
	Nodes       []*nodeBlock       `hcl:"node,block"`
	Connections []*connectionBlock `hcl:"connection,block"`
}

type nodeBlock struct {
	Type   string       `hcl:"type,label"`
	Name   string       `hcl:"name,label"`
	Pins   []*pinBlock  `hcl:"pin,block"`
	Values *valuesBlock `hcl:"values,block"`
}

type pinBlock struct {
	Name      string `hcl:"name,label"`
	Type      string `hcl:"type"`
	Direction string `hcl:"direction,optional"`
	Structure string `hcl:"structure,optional"`
}

// valuesBlock holds one attribute per pin value.
type valuesBlock struct {
	Body hcl.Body `hcl:",remain"`
}

type connectionBlock struct {
	From string `hcl:"from"`
	To   string `hcl:"to"`
}
