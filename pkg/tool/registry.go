package tool

import (
	"fmt"

	"github.com/baoman007/ai-weather-agent/pkg/types"
)

// Registry is the static catalog of callable tools. It is immutable after
// construction, so concurrent reads need no locking.
type Registry struct {
	order []string
	tools map[string]Tool
	defs  []types.ToolDefinition
}

// NewRegistry builds a registry from the given tools. Catalog order follows
// the argument order and is stable across calls. Duplicate names are a
// construction error.
func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(tools)),
		tools: make(map[string]Tool, len(tools)),
		defs:  make([]types.ToolDefinition, 0, len(tools)),
	}
	for _, t := range tools {
		name := t.Name()
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		r.order = append(r.order, name)
		r.tools[name] = t
		r.defs = append(r.defs, types.ToolDefinition{
			Type: "function",
			Function: types.FunctionDefinition{
				Name:        name,
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return r, nil
}

// Definitions returns the tool catalog sent to the model, in registration
// order. The returned slice is a copy.
func (r *Registry) Definitions() []types.ToolDefinition {
	out := make([]types.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Resolve maps a function name to its tool. Unknown names are an error, not
// a silent skip.
func (r *Registry) Resolve(name string) (Tool, error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	return t, nil
}

// Names lists the registered tool names in catalog order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
