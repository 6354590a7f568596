package chunker

import (
	"strings"
	"testing"
)

func TestChunk_ShortText(t *testing.T) {
	fragments := Chunk("User likes black coffee", 200)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0] != "User likes black coffee" {
		t.Errorf("content mismatch: got %q", fragments[0])
	}
}

func TestChunk_ExactSplit(t *testing.T) {
	// 25 characters with chunkSize 10 → fragments of 10, 10, 5.
	text := "abcdefghijabcdefghijabcde"
	fragments := Chunk(text, 10)
	if len(fragments) != 3 {
		t.Fatalf("expected 3 fragments, got %d", len(fragments))
	}
	wantLens := []int{10, 10, 5}
	for i, f := range fragments {
		if len(f) != wantLens[i] {
			t.Errorf("fragment %d: got length %d, want %d", i, len(f), wantLens[i])
		}
	}
}

func TestChunk_NormalizesLineEndings(t *testing.T) {
	fragments := Chunk("line one\r\nline two\rline three", 200)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if strings.Contains(fragments[0], "\r") {
		t.Errorf("fragment still contains CR: %q", fragments[0])
	}
	if fragments[0] != "line one\nline two\nline three" {
		t.Errorf("got %q", fragments[0])
	}
}

func TestChunk_TrimsWholeText(t *testing.T) {
	fragments := Chunk("   trimmed   ", 200)
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0] != "trimmed" {
		t.Errorf("got %q", fragments[0])
	}
}

func TestChunk_DropsWhitespaceFragments(t *testing.T) {
	// With chunkSize 4 the middle fragment is pure whitespace and must
	// be discarded, not indexed.
	text := "abcd    efgh"
	fragments := Chunk(text, 4)
	for i, f := range fragments {
		if strings.TrimSpace(f) == "" {
			t.Errorf("fragment %d is empty after trimming", i)
		}
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d: %q", len(fragments), fragments)
	}
}

func TestChunk_EmptyInput(t *testing.T) {
	for _, text := range []string{"", "   ", "\r\n\r\n", "\t\n"} {
		if got := Chunk(text, 200); got != nil {
			t.Errorf("Chunk(%q) = %q, want nil", text, got)
		}
	}
}

func TestChunk_ClampsChunkSize(t *testing.T) {
	fragments := Chunk("ab", 0)
	if len(fragments) != 2 {
		t.Fatalf("chunkSize 0 should clamp to 1: got %d fragments", len(fragments))
	}
	fragments = Chunk("ab", -5)
	if len(fragments) != 2 {
		t.Fatalf("negative chunkSize should clamp to 1: got %d fragments", len(fragments))
	}
}

func TestChunk_MultiByteRunes(t *testing.T) {
	// Four two-byte runes with chunkSize 2 must split on rune
	// boundaries, never mid-character.
	text := "éàüö"
	fragments := Chunk(text, 2)
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}
	if fragments[0] != "éà" || fragments[1] != "üö" {
		t.Errorf("got %q", fragments)
	}
}

func TestChunk_Deterministic(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog, repeatedly and deterministically."
	for _, size := range []int{1, 7, 25, 200} {
		first := Chunk(text, size)
		second := Chunk(text, size)
		if len(first) != len(second) {
			t.Fatalf("size %d: fragment count differs between calls", size)
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("size %d: fragment %d differs: %q vs %q", size, i, first[i], second[i])
			}
		}
	}
}
