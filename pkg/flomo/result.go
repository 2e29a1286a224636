package flomo

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/gjson"
)

// Result is the JSON body returned by the webhook. Fields are read on demand
// because the response shape is not guaranteed.
type Result struct {
	raw []byte
}

// ParseResult validates body as JSON and wraps it as a Result.
func ParseResult(body []byte) (Result, error) {
	if !gjson.ValidBytes(body) {
		return Result{}, fmt.Errorf("flomo: %w: response is not valid JSON", ErrRequestFailed)
	}

	return Result{raw: body}, nil
}

// Slug returns the identifier of the created memo (memo.slug). The second
// value is false when the field is absent or holds a falsy value such as
// "", 0, false or null.
func (r Result) Slug() (string, bool) {
	v := gjson.GetBytes(r.raw, "memo.slug")
	if !truthy(v) {
		return "", false
	}

	return v.String(), true
}

// Message returns the top-level message field, or "" if absent.
func (r Result) Message() string {
	return gjson.GetBytes(r.raw, "message").String()
}

// Raw returns the response body as received.
func (r Result) Raw() json.RawMessage {
	return json.RawMessage(r.raw)
}

func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.String:
		return v.Str != ""
	case gjson.Number:
		return v.Num != 0
	case gjson.True:
		return true
	case gjson.JSON:
		return true
	default:
		return false
	}
}
