// Package mcpserver exposes keyfire over the Model Context Protocol so
// agents can validate and run macros through a stdio server.
package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewServer creates a new MCP server with keyfire tools registered.
func NewServer(version string) *server.MCPServer {
	s := server.NewMCPServer(
		"keyfire",
		version,
		server.WithToolCapabilities(true),
	)

	s.AddTool(
		mcp.NewTool("keyfire/validate",
			mcp.WithDescription("Validate a keyfire macro YAML file"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the macro YAML file")),
		),
		HandleValidate,
	)

	s.AddTool(
		mcp.NewTool("keyfire/run",
			mcp.WithDescription("Execute a keyfire macro (defaults to dry-run mode for safety)"),
			mcp.WithString("path", mcp.Required(), mcp.Description("Path to the macro YAML file")),
			mcp.WithString("mode", mcp.Description("Execution mode: real or dry-run")),
		),
		HandleRun,
	)

	s.AddTool(
		mcp.NewTool("keyfire/schema",
			mcp.WithDescription("Export the keyfire macro JSON Schema"),
		),
		HandleSchema,
	)

	return s
}
