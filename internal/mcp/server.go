// Package mcp serves timesheet interpretation to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

var processTimesheetTool = mcp.NewTool("process_timesheet",
	mcp.WithDescription("Turn a plain-English description of work into a timesheet draft, or a clarification question when the project is ambiguous. Nothing is saved."),
	mcp.WithString("input",
		mcp.Required(),
		mcp.Description("What was worked on, e.g. \"3 hours on Project Alpha today\""),
	),
	mcp.WithString("project_id",
		mcp.Description("Project the user already picked, e.g. in answer to a clarification"),
	),
)

var listProjectsTool = mcp.NewTool("list_projects",
	mcp.WithDescription("List the projects time can be logged against"),
)

type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

var toolRegistry = []toolEntry{
	{def: processTimesheetTool, handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProcessTimesheet }},
	{def: listProjectsTool, handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleListProjects }},
}

// NewServer registers the hourly tools on a new MCP server.
func NewServer(h *Handlers, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"hourly",
		version,
		server.WithToolCapabilities(true),
	)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run serves on stdin/stdout until the client disconnects.
func Run(h *Handlers, version string) error {
	return server.ServeStdio(NewServer(h, version))
}
