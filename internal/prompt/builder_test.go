package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/engram-ai/engram/internal/memory"
)

type fakeRetriever struct {
	matches []memory.QueryMatch
	err     error
	lastK   int
}

func (f *fakeRetriever) QueryMemories(_ context.Context, _ string, topK int) ([]memory.QueryMatch, error) {
	f.lastK = topK
	return f.matches, f.err
}

func match(content string, score float64) memory.QueryMatch {
	return memory.QueryMatch{Item: memory.Item{ID: content, Content: content}, Score: score}
}

func newTestBuilder(t *testing.T, r Retriever) *Builder {
	t.Helper()
	tok, err := NewTokenizer()
	if err != nil {
		t.Fatalf("NewTokenizer: %v", err)
	}
	return NewBuilder(r, tok)
}

func TestBuildRendersMatches(t *testing.T) {
	retriever := &fakeRetriever{matches: []memory.QueryMatch{
		match("prefers dark roast coffee", 0.91),
		match("works in UTC+2", 0.75),
	}}
	b := newTestBuilder(t, retriever)

	built, err := b.Build(context.Background(), BuildOptions{Query: "coffee"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.MemoriesUsed != 2 {
		t.Errorf("memories used = %d, want 2", built.MemoriesUsed)
	}
	if !strings.HasPrefix(built.Text, "## Relevant memories") {
		t.Errorf("text = %q", built.Text)
	}
	if !strings.Contains(built.Text, "- prefers dark roast coffee\n") {
		t.Errorf("first memory missing from %q", built.Text)
	}
	// Best match renders first.
	if strings.Index(built.Text, "dark roast") > strings.Index(built.Text, "UTC+2") {
		t.Error("matches not in score order")
	}
	if built.TokensUsed <= 0 {
		t.Error("no token count")
	}
	if len(built.Sources) != 2 {
		t.Errorf("sources = %v", built.Sources)
	}
	if retriever.lastK != 5 {
		t.Errorf("topK = %d, want default 5", retriever.lastK)
	}
}

func TestBuildDropsWeakMatches(t *testing.T) {
	retriever := &fakeRetriever{matches: []memory.QueryMatch{
		match("strong match", 0.9),
		match("weak match", 0.1),
	}}
	b := newTestBuilder(t, retriever)

	built, err := b.Build(context.Background(), BuildOptions{Query: "q"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.MemoriesUsed != 1 {
		t.Errorf("memories used = %d, want 1", built.MemoriesUsed)
	}
	if strings.Contains(built.Text, "weak match") {
		t.Error("weak match included")
	}
}

func TestBuildEmptyWhenNothingMatches(t *testing.T) {
	b := newTestBuilder(t, &fakeRetriever{})

	built, err := b.Build(context.Background(), BuildOptions{Query: "q"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.Text != "" || built.MemoriesUsed != 0 {
		t.Errorf("built = %+v, want empty", built)
	}
}

func TestBuildRespectsTokenBudget(t *testing.T) {
	long := strings.Repeat("remember this detail about the deployment pipeline ", 40)
	retriever := &fakeRetriever{matches: []memory.QueryMatch{
		match(long, 0.9),
		match(long, 0.8),
	}}
	b := newTestBuilder(t, retriever)

	built, err := b.Build(context.Background(), BuildOptions{Query: "q", MaxTokens: 120})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if built.TokensUsed > 120 {
		t.Errorf("tokens used = %d, budget 120", built.TokensUsed)
	}
	// One entry fits only truncated; the second is dropped entirely.
	if built.MemoriesUsed != 1 {
		t.Errorf("memories used = %d, want 1", built.MemoriesUsed)
	}
	if !strings.Contains(built.Sources[0], "truncated") {
		t.Errorf("sources = %v, want truncation noted", built.Sources)
	}
}

func TestBuildPropagatesRetrieverError(t *testing.T) {
	retriever := &fakeRetriever{err: context.DeadlineExceeded}
	b := newTestBuilder(t, retriever)

	if _, err := b.Build(context.Background(), BuildOptions{Query: "q"}); err == nil {
		t.Fatal("expected error")
	}
}
