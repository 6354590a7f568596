// Package mcp exposes the memory subsystem to MCP clients over stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/engram-ai/engram/internal/memory"
	"github.com/engram-ai/engram/internal/prompt"
)

// Server wires memory tools into an MCP stdio server.
type Server struct {
	manager *memory.Manager
	builder *prompt.Builder
	topK    int
}

// NewServer creates a Server. builder may be nil, in which case the
// memory_context tool falls back to plain query results.
func NewServer(manager *memory.Manager, builder *prompt.Builder, topK int) *Server {
	if topK < 1 {
		topK = 5
	}
	return &Server{manager: manager, builder: builder, topK: topK}
}

// Serve registers the tools and blocks serving stdio until the client
// disconnects.
func (s *Server) Serve(version string) error {
	srv := server.NewMCPServer("engram", version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("memory_add",
		mcp.WithDescription("Save a long-term memory about the user. Use for durable facts and preferences, not transient conversation details."),
		mcp.WithString("content", mcp.Required(), mcp.Description("The fact to remember, phrased as a standalone statement")),
	), s.handleAdd)

	srv.AddTool(mcp.NewTool("memory_query",
		mcp.WithDescription("Search stored memories by meaning and return the closest matches with similarity scores."),
		mcp.WithString("query", mcp.Required(), mcp.Description("What to look for")),
		mcp.WithNumber("top_k", mcp.Description("Maximum number of results")),
	), s.handleQuery)

	srv.AddTool(mcp.NewTool("memory_list",
		mcp.WithDescription("List all stored memories with their ids."),
		mcp.WithBoolean("archived", mcp.Description("Include archived memories")),
	), s.handleList)

	srv.AddTool(mcp.NewTool("memory_forget",
		mcp.WithDescription("Permanently delete a memory by id."),
		mcp.WithString("id", mcp.Required(), mcp.Description("The memory id to delete")),
	), s.handleForget)

	srv.AddTool(mcp.NewTool("memory_context",
		mcp.WithDescription("Build a ready-to-inject context block of memories relevant to a question, within a token budget."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question the context should support")),
		mcp.WithNumber("max_tokens", mcp.Description("Token budget for the block")),
	), s.handleContext)

	return server.ServeStdio(srv)
}
