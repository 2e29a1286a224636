// Package notetool exposes flomo note writing as a tool. It validates the
// tool input, delegates the write to a [flomo.Client], and turns the webhook
// response into a confirmation with a link to the new memo.
package notetool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"

	"github.com/germanamz/flomo-mcp/pkg/flomo"
	"github.com/germanamz/flomo-mcp/pkg/tools/toolbox"
)

// ToolName is the name under which the note tool is registered.
const ToolName = "write_note"

// DefaultLinkHost is the web client host used for memo links.
const DefaultLinkHost = "v.flomoapp.com"

// fallbackMessage is reported when the webhook rejects a note without a message.
const fallbackMessage = "unknown error"

var (
	// ErrNotConfigured is returned when no webhook URL has been configured.
	ErrNotConfigured = errors.New("flomo API URL not set")
	// ErrInvalidInput is returned when the content argument is missing or empty.
	ErrInvalidInput = flomo.ErrInvalidInput
	// ErrUnknownTool is returned when a call names a tool other than write_note.
	ErrUnknownTool = toolbox.ErrToolNotFound
)

// RemoteError reports a successful HTTP exchange whose body did not
// identify a created memo.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "failed to write note to flomo: " + e.Message
}

// NoteWriter submits a note and returns the webhook response.
type NoteWriter interface {
	WriteNote(ctx context.Context, content string) (flomo.Result, error)
}

// Option configures a Writer.
type Option func(*options)

type options struct {
	linkHost   string
	httpClient *http.Client
	log        *slog.Logger
}

// WithLinkHost sets the host used when building memo links.
func WithLinkHost(host string) Option {
	return func(o *options) {
		if host != "" {
			o.linkHost = host
		}
	}
}

// WithHTTPClient sets the HTTP client handed to the flomo client.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) {
		o.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Writer provides the write_note tool.
type Writer struct {
	client   NoteWriter
	linkHost string
	log      *slog.Logger
	tools    *toolbox.ToolBox
}

// New creates a Writer that posts to apiURL. An empty apiURL is accepted;
// every call then fails with ErrNotConfigured.
func New(apiURL string, opts ...Option) (*Writer, error) {
	o := newOptions(opts)

	var client NoteWriter
	if apiURL != "" {
		clientOpts := []flomo.Option{flomo.WithLogger(o.log)}
		if o.httpClient != nil {
			clientOpts = append(clientOpts, flomo.WithHTTPClient(o.httpClient))
		}

		c, err := flomo.New(apiURL, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("notetool: %w", err)
		}

		client = c
	}

	return newWriter(client, o), nil
}

// NewWithClient creates a Writer backed by an existing NoteWriter. A nil
// client, including a nil *flomo.Client, behaves like an unconfigured
// webhook URL.
func NewWithClient(client NoteWriter, opts ...Option) *Writer {
	return newWriter(client, newOptions(opts))
}

func newOptions(opts []Option) options {
	o := options{
		linkHost: DefaultLinkHost,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return o
}

func newWriter(client NoteWriter, o options) *Writer {
	if c, ok := client.(*flomo.Client); ok && c == nil {
		client = nil
	}

	w := &Writer{client: client, linkHost: o.linkHost, log: o.log}
	w.tools = toolbox.New()
	w.tools.Register(w.writeTool())

	return w
}

// Tools returns a ToolBox containing the note tool.
func (w *Writer) Tools() *toolbox.ToolBox {
	return w.tools
}

// Call runs the named tool. Names other than write_note fail with
// ErrUnknownTool.
func (w *Writer) Call(ctx context.Context, name string, input json.RawMessage) (string, error) {
	return w.tools.Call(ctx, name, input)
}

// MemoURL returns the web link for the memo identified by slug.
func (w *Writer) MemoURL(slug string) string {
	u := url.URL{
		Scheme:   "https",
		Host:     w.linkHost,
		Path:     "/mine/",
		RawQuery: url.Values{"memo_id": {slug}}.Encode(),
	}

	return u.String()
}

// --- write_note ---

func (w *Writer) writeTool() toolbox.Tool {
	return toolbox.Tool{
		Name:        ToolName,
		Description: "Write note to flomo",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"content":{"type":"string","description":"Text content of the note with markdown format"}},"required":["content"]}`),
		Handler:     w.handleWrite,
	}
}

func (w *Writer) handleWrite(ctx context.Context, input json.RawMessage) (string, error) {
	if w.client == nil {
		return "", fmt.Errorf("%s: %w", ToolName, ErrNotConfigured)
	}

	content := contentArg(input)
	if content == "" {
		return "", fmt.Errorf("%s: content is required: %w", ToolName, ErrInvalidInput)
	}

	res, err := w.client.WriteNote(ctx, content)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ToolName, err)
	}

	slug, ok := res.Slug()
	if !ok {
		msg := res.Message()
		if msg == "" {
			msg = fallbackMessage
		}

		w.log.WarnContext(ctx, "flomo rejected note", "message", msg)

		return "", &RemoteError{Message: msg}
	}

	return fmt.Sprintf("Write note to flomo success: view it at %s", w.MemoURL(slug)), nil
}

// contentArg extracts the content argument as text. Strings are used as-is;
// other JSON values use their JSON text. Missing or null yields "".
func contentArg(input json.RawMessage) string {
	v := gjson.GetBytes(input, "content")

	switch v.Type {
	case gjson.Null:
		return ""
	case gjson.String:
		return v.Str
	default:
		return v.Raw
	}
}
