package prompt

import (
	"context"
	"fmt"
	"strings"

	"github.com/engram-ai/engram/internal/memory"
)

// BuildOptions controls how the context block is assembled.
type BuildOptions struct {
	Query string
	// MaxTokens caps the whole block, header included. Zero means 2000.
	MaxTokens int
	// TopK caps how many memories are retrieved. Zero means 5.
	TopK int
	// MinScore drops weakly related memories. Zero means 0.3.
	MinScore float64
}

// BuiltPrompt is the result of a build.
type BuiltPrompt struct {
	Text         string
	TokensUsed   int
	MemoriesUsed int
	// Sources lists what was included, for verbose output.
	Sources []string
}

// Retriever answers similarity queries. *memory.Manager satisfies it.
type Retriever interface {
	QueryMemories(ctx context.Context, query string, topK int) ([]memory.QueryMatch, error)
}

// Builder renders retrieved memories into a markdown block that fits a
// token budget.
type Builder struct {
	retriever Retriever
	tokenizer *Tokenizer
}

// NewBuilder creates a Builder.
func NewBuilder(retriever Retriever, tokenizer *Tokenizer) *Builder {
	return &Builder{retriever: retriever, tokenizer: tokenizer}
}

const header = "## Relevant memories\n\n"

// Build retrieves memories relevant to the query and renders the ones
// that fit the budget, best matches first. The last entry is truncated
// rather than dropped when it almost fits.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (*BuiltPrompt, error) {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = 2000
	}
	if opts.TopK == 0 {
		opts.TopK = 5
	}
	if opts.MinScore == 0 {
		opts.MinScore = 0.3
	}

	matches, err := b.retriever.QueryMemories(ctx, opts.Query, opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("prompt: retrieve: %w", err)
	}

	remaining := opts.MaxTokens - b.tokenizer.Count(header)
	var entries []string
	var sources []string

	for _, match := range matches {
		if match.Score < opts.MinScore {
			continue
		}
		entry := "- " + match.Item.Content + "\n"
		tokens := b.tokenizer.Count(entry)
		switch {
		case tokens <= remaining:
			entries = append(entries, entry)
			remaining -= tokens
			sources = append(sources, fmt.Sprintf("memory (%.2f): %s", match.Score, truncateStr(match.Item.Content, 60)))
		case remaining > 50:
			entry = "- " + b.tokenizer.Truncate(match.Item.Content, remaining-10) + "\n"
			entries = append(entries, entry)
			remaining = 0
			sources = append(sources, fmt.Sprintf("memory (%.2f, truncated): %s", match.Score, truncateStr(match.Item.Content, 60)))
		}
		if remaining == 0 {
			break
		}
	}

	if len(entries) == 0 {
		return &BuiltPrompt{}, nil
	}

	text := header + strings.Join(entries, "")
	return &BuiltPrompt{
		Text:         text,
		TokensUsed:   b.tokenizer.Count(text),
		MemoriesUsed: len(entries),
		Sources:      sources,
	}, nil
}

func truncateStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
