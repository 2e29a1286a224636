// Package mcpserver exposes toolbox tools to MCP clients over stdio or
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/germanamz/flomo-mcp/pkg/tools/toolbox"
)

// emptyArgs stands in for a tools/call request that carries no arguments.
var emptyArgs = json.RawMessage(`{}`)

// MCPServer publishes registered tools through a single SDK server shared by
// every transport.
type MCPServer struct {
	sdk *mcp.Server
}

// New returns a server announcing itself as name/version during initialize.
func New(name, version string) *MCPServer {
	return &MCPServer{
		sdk: mcp.NewServer(&mcp.Implementation{Name: name, Version: version}, nil),
	}
}

// Register publishes tools. Calls to unregistered names are rejected by the
// SDK with a JSON-RPC error before any handler runs.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.sdk.AddTool(descriptor(t), callHandler(t.Handler))
	}
}

// Serve speaks newline-delimited JSON-RPC, reading requests from in and
// writing responses to out. It returns nil once in is exhausted or ctx is
// cancelled; any other transport failure is returned.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	err := s.serve(ctx, &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: writeCloser{out},
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// Handler returns the streamable HTTP transport. Each HTTP session is bound
// to the same set of registered tools.
func (s *MCPServer) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.sdk
	}, nil)
}

func (s *MCPServer) serve(ctx context.Context, t mcp.Transport) error {
	return s.sdk.Run(ctx, t)
}

func descriptor(t toolbox.Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// callHandler adapts h to the SDK. A handler error becomes a result with
// IsError set so the client sees the message as tool output.
func callHandler(h toolbox.Handler) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		input := req.Params.Arguments
		if len(input) == 0 {
			input = emptyArgs
		}

		text, err := h(ctx, input)
		if err != nil {
			return errorResult(err), nil
		}

		return textResult(text), nil
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(err error) *mcp.CallToolResult {
	r := textResult(err.Error())
	r.IsError = true

	return r
}

// writeCloser lets Serve hand out to the SDK without closing it.
type writeCloser struct {
	io.Writer
}

func (writeCloser) Close() error { return nil }
