// Package chunker splits memory text into bounded fragments for embedding.
package chunker

import (
	"strings"
)

// DefaultChunkSize is the fragment size, in characters, used when the
// caller does not configure one.
const DefaultChunkSize = 200

// Chunk splits text into fragments of at most chunkSize characters.
//
// Line endings are normalised (CR/CRLF become LF) and the whole text is
// trimmed before splitting. Fragments that are empty after trimming are
// dropped, so every returned fragment is non-empty. The split is a plain
// character-count walk with no sentence or paragraph awareness; callers
// that need semantic boundaries must pre-process the text themselves.
//
// Chunk is pure: the same text and chunkSize always produce the same
// ordered fragments, which keeps sequence indices stable across rebuilds.
func Chunk(text string, chunkSize int) []string {
	if chunkSize < 1 {
		chunkSize = 1
	}

	text = normalize(text)
	if text == "" {
		return nil
	}

	// Split on rune boundaries so multi-byte characters are never cut.
	runes := []rune(text)

	var fragments []string
	for start := 0; start < len(runes); start += chunkSize {
		end := start + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		fragment := strings.TrimSpace(string(runes[start:end]))
		if fragment == "" {
			continue
		}
		fragments = append(fragments, fragment)
	}
	return fragments
}

// normalize converts CRLF and bare CR line endings to LF and trims
// surrounding whitespace.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
