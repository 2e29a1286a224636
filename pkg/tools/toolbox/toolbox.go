package toolbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// ErrToolNotFound is returned by Call when no tool is registered under the
// requested name.
var ErrToolNotFound = errors.New("unknown tool")

// ToolBox holds a collection of tools keyed by name. It allows registering,
// retrieving, listing, and calling tools.
type ToolBox struct {
	tools map[string]Tool
}

// New creates a new ToolBox ready for use.
func New() *ToolBox {
	return &ToolBox{
		tools: make(map[string]Tool),
	}
}

// Register adds one or more tools to the ToolBox. If a tool with the same name
// already exists, it is replaced.
func (tb *ToolBox) Register(tools ...Tool) {
	for _, t := range tools {
		tb.tools[t.Name] = t
	}
}

// Get returns a tool by name and a boolean indicating whether it was found.
func (tb *ToolBox) Get(name string) (Tool, bool) {
	t, ok := tb.tools[name]
	return t, ok
}

// Tools returns all registered tools sorted by name.
func (tb *ToolBox) Tools() []Tool {
	result := make([]Tool, 0, len(tb.tools))
	for _, t := range tb.tools {
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	return result
}

// Use wraps the handler of every registered tool with mws. The first
// middleware is the outermost.
func (tb *ToolBox) Use(mws ...Middleware) {
	for name, t := range tb.tools {
		tb.tools[name] = t.With(mws...)
	}
}

// Call runs the named tool with input. It returns an error wrapping
// ErrToolNotFound if the tool is not registered.
func (tb *ToolBox) Call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	t, ok := tb.tools[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}

	if len(input) == 0 {
		input = json.RawMessage("{}")
	}

	return t.Handler(ctx, input)
}
