package app

import (
	"github.com/specialistvlad/nodegraph/internal/registry"
	"github.com/specialistvlad/nodegraph/modules/demo"
	"github.com/specialistvlad/nodegraph/modules/env_vars"
	"github.com/specialistvlad/nodegraph/modules/flow"
	"github.com/specialistvlad/nodegraph/modules/http_request"
)

// coreModules is the definitive list of all node packages that are compiled
// into the nodegraph binary.
var coreModules = []registry.Module{
	&demo.Module{},
	&flow.Module{},
	&env_vars.Module{},
	&http_request.Module{},
}
