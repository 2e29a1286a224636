package toolbox

import (
	"context"
	"encoding/json"
)

// Handler executes a tool with the given JSON input and returns a text result.
type Handler func(ctx context.Context, input json.RawMessage) (string, error)

// Tool represents an executable tool with a name, description, JSON Schema, and handler.
type Tool struct {
	Name        string
	Description string
	InputSchema json.RawMessage
	Handler     Handler
}

// With returns a copy of t whose handler is wrapped by mws, first one
// outermost.
func (t Tool) With(mws ...Middleware) Tool {
	h := t.Handler
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](t.Name, h)
	}

	t.Handler = h

	return t
}
