package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/engram-ai/engram/internal/memory"
	"github.com/engram-ai/engram/internal/prompt"
)

func (s *Server) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: content"), nil
	}

	item, err := s.manager.AddMemory(ctx, content)
	if errors.Is(err, memory.ErrIndexingDeferred) {
		return mcp.NewToolResultText(fmt.Sprintf(
			"Remembered (id: %s). The embedding provider was unreachable, so the memory will become searchable after the next reembed.", item.ID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to store memory: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Remembered (id: %s)", item.ID)), nil
}

func (s *Server) handleQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	topK := req.GetInt("top_k", s.topK)

	matches, err := s.manager.QueryMemories(ctx, query, topK)
	if err != nil {
		var mismatch *memory.DimensionMismatchError
		if errors.As(err, &mismatch) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"the embedding model changed (index holds %d-dim vectors, query produced %d): run `engram reembed` to rebuild the index",
				mismatch.Expected, mismatch.Actual)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(matches) == 0 {
		return mcp.NewToolResultText("No matching memories."), nil
	}

	var sb strings.Builder
	sb.WriteString("## Matching Memories\n\n")
	for _, m := range matches {
		fmt.Fprintf(&sb, "- (%.2f) %s (id: %s)\n", m.Score, m.Item.Content, m.Item.ID)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleList(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	includeArchived := req.GetBool("archived", false)

	items := s.manager.Items()
	var sb strings.Builder
	shown := 0
	for _, item := range items {
		if item.Archived && !includeArchived {
			continue
		}
		label := ""
		if item.Archived {
			label = " [archived]"
		}
		fmt.Fprintf(&sb, "%s%s\n  id: %s | created: %s\n\n",
			item.Content, label, item.ID, item.CreatedAt.Format("2006-01-02 15:04"))
		shown++
	}

	if shown == 0 {
		return mcp.NewToolResultText("No memories stored."), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleForget(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if _, found := s.manager.Get(id); !found {
		return mcp.NewToolResultError(fmt.Sprintf("no memory with id %s", id)), nil
	}

	if err := s.manager.DeleteMemories([]string{id}); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete memory: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory %s deleted.", id)), nil
}

func (s *Server) handleContext(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: question"), nil
	}
	maxTokens := req.GetInt("max_tokens", 0)

	if s.builder == nil {
		matches, err := s.manager.QueryMemories(ctx, question, s.topK)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}
		if len(matches) == 0 {
			return mcp.NewToolResultText("No relevant memories."), nil
		}
		var sb strings.Builder
		sb.WriteString("## Relevant memories\n\n")
		for _, m := range matches {
			fmt.Fprintf(&sb, "- %s\n", m.Item.Content)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}

	built, err := s.builder.Build(ctx, prompt.BuildOptions{
		Query:     question,
		MaxTokens: maxTokens,
		TopK:      s.topK,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to build context: %v", err)), nil
	}
	if built.Text == "" {
		return mcp.NewToolResultText("No relevant memories."), nil
	}
	return mcp.NewToolResultText(built.Text), nil
}
