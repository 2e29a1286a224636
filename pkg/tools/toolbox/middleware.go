package toolbox

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-runewidth"
)

// Middleware wraps the handler of the named tool, returning a new Handler
// with added behaviour.
type Middleware func(name string, next Handler) Handler

// previewWidth is the display width of the input preview in log lines.
const previewWidth = 80

// --- Timeout middleware ---

// Timeout returns a Middleware that wraps the call context with a deadline.
// A non-positive d leaves the context untouched.
func Timeout(d time.Duration) Middleware {
	return func(_ string, next Handler) Handler {
		if d <= 0 {
			return next
		}

		return func(ctx context.Context, input json.RawMessage) (string, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()

			return next(ctx, input)
		}
	}
}

// --- Recovery middleware ---

// Recovery returns a Middleware that catches panics and converts them to errors.
func Recovery() Middleware {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, input json.RawMessage) (result string, err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("tool %s panicked: %v", name, r)
				}
			}()

			return next(ctx, input)
		}
	}
}

// --- Logger middleware ---

// Logger returns a Middleware that logs call start, duration, and error.
// Every call is tagged with a fresh call_id.
func Logger(log *slog.Logger) Middleware {
	return func(name string, next Handler) Handler {
		return func(ctx context.Context, input json.RawMessage) (string, error) {
			callID := uuid.NewString()

			log.InfoContext(ctx, "tool call started",
				"tool", name,
				"call_id", callID,
				"input", preview(input),
			)

			start := time.Now()

			result, err := next(ctx, input)

			duration := time.Since(start)

			if err != nil {
				log.ErrorContext(ctx, "tool call finished with error",
					"tool", name,
					"call_id", callID,
					"duration", duration,
					"error", err,
				)
			} else {
				log.InfoContext(ctx, "tool call finished",
					"tool", name,
					"call_id", callID,
					"duration", duration,
				)
			}

			return result, err
		}
	}
}

// preview returns input on a single line, truncated to previewWidth cells.
func preview(input json.RawMessage) string {
	s := strings.Join(strings.Fields(string(input)), " ")
	return runewidth.Truncate(s, previewWidth, "...")
}
