package memory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Journal is the durable, authoritative store of memory items: one
// pretty-printed JSON document rewritten in full on every save. Memory
// counts are small (user-curated facts, not bulk logs), so whole-file
// rewrites buy crash-safety cheaply.
//
// Journal does no locking of its own; the Manager serializes all
// mutating calls.
type Journal struct {
	path string
}

// NewJournal creates a Journal backed by the file at path.
func NewJournal(path string) *Journal {
	return &Journal{path: path}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// CorruptJournalError reports that the journal file exists but cannot
// be parsed. The caller should treat the store as empty for the session
// and must not overwrite the file until a deliberate save.
type CorruptJournalError struct {
	Path string
	Err  error
}

func (e *CorruptJournalError) Error() string {
	return fmt.Sprintf("journal: corrupt file %s: %v", e.Path, e.Err)
}

func (e *CorruptJournalError) Unwrap() error {
	return e.Err
}

// LoadAll reads every item from the journal file in stored order.
// A missing file is a first run and returns an empty collection, not an
// error. An unparseable file returns a CorruptJournalError.
func (j *Journal) LoadAll() ([]Item, error) {
	data, err := os.ReadFile(j.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", j.path, err)
	}

	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &CorruptJournalError{Path: j.path, Err: err}
	}
	return items, nil
}

// SaveAll atomically replaces the journal file with the given items.
// The document is fully serialized in memory, written to a temp file in
// the same directory, synced, then renamed over the target, so a crash
// mid-write leaves either the old or the new complete file.
func (j *Journal) SaveAll(items []Item) error {
	if items == nil {
		items = []Item{}
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("journal: marshal: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(j.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("journal: create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".memories-*.json")
	if err != nil {
		return fmt.Errorf("journal: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("journal: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("journal: sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("journal: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, j.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("journal: rename into place: %w", err)
	}
	return nil
}
