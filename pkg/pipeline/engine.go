package pipeline

import (
	"sort"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/layout/graphviz"
	"github.com/matzehuels/flowlane/pkg/layout/layered"
)

// DefaultEngine is used when Options.Layout.Engine is empty.
const DefaultEngine = "graphviz"

var engines = map[string]func() layout.Engine{
	"graphviz": func() layout.Engine { return graphviz.New() },
	"layered":  func() layout.Engine { return layered.New() },
}

// NewEngine returns the layout engine registered under name.
func NewEngine(name string) (layout.Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	mk, ok := engines[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeUnsupported, "unknown layout engine %q (want one of %v)", name, EngineNames())
	}
	return mk(), nil
}

// EngineNames lists the registered engines, sorted.
func EngineNames() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
