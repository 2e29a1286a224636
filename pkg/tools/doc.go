// Package tools provides tool execution and MCP (Model Context Protocol) integration.
//
// It is organized into sub-packages:
//   - [github.com/germanamz/flomo-mcp/pkg/tools/toolbox] — Tool type, ToolBox registry, and handler middleware
//   - [github.com/germanamz/flomo-mcp/pkg/tools/mcpserver] — MCP server using the official MCP Go SDK for exposing tools over stdio or streamable HTTP
//
// The toolbox sub-package is the foundation layer; mcpserver depends on it for
// the Tool type. The mcpserver package is a thin wrapper around the official
// MCP Go SDK (github.com/modelcontextprotocol/go-sdk).
package tools
