package memory

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testJournal(t *testing.T) *Journal {
	t.Helper()
	return NewJournal(filepath.Join(t.TempDir(), "memories.json"))
}

func TestJournal_LoadAll_MissingFile(t *testing.T) {
	j := testJournal(t)
	items, err := j.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll on missing file: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty collection, got %d items", len(items))
	}
}

func TestJournal_RoundTrip(t *testing.T) {
	j := testJournal(t)

	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	want := []Item{
		{ID: "a", Content: "User likes black coffee", CreatedAt: now, UpdatedAt: now},
		{ID: "b", Content: "User lives in Lisbon", CreatedAt: now, UpdatedAt: now, Archived: true},
	}

	if err := j.SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	got, err := j.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("item count: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("item %d: got %+v, want %+v", i, got[i], want[i])
		}
	}

	// Saving what was loaded changes nothing observable.
	if err := j.SaveAll(got); err != nil {
		t.Fatalf("SaveAll (second): %v", err)
	}
	again, err := j.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll (second): %v", err)
	}
	for i := range got {
		if again[i] != got[i] {
			t.Errorf("item %d changed across save/load: %+v vs %+v", i, again[i], got[i])
		}
	}
}

func TestJournal_SaveAll_EmptyCollection(t *testing.T) {
	j := testJournal(t)
	if err := j.SaveAll(nil); err != nil {
		t.Fatalf("SaveAll(nil): %v", err)
	}

	data, err := os.ReadFile(j.Path())
	if err != nil {
		t.Fatalf("read journal: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("empty collection should serialize as [], got %q", data)
	}
}

func TestJournal_SaveAll_LeavesNoTempFiles(t *testing.T) {
	j := testJournal(t)
	if err := j.SaveAll([]Item{{ID: "a", Content: "x"}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(j.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != filepath.Base(j.Path()) {
			t.Errorf("unexpected leftover file %q", e.Name())
		}
	}
}

func TestJournal_SaveAll_Timestamps(t *testing.T) {
	j := testJournal(t)
	now := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	if err := j.SaveAll([]Item{{ID: "a", Content: "x", CreatedAt: now, UpdatedAt: now}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}

	data, _ := os.ReadFile(j.Path())
	if !strings.Contains(string(data), "2026-01-02T15:04:05Z") {
		t.Errorf("timestamps should be RFC 3339 encoded, got:\n%s", data)
	}
}

func TestJournal_LoadAll_CorruptFile(t *testing.T) {
	j := testJournal(t)
	if err := os.WriteFile(j.Path(), []byte(`{"not": "an array`), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	_, err := j.LoadAll()
	var corrupt *CorruptJournalError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptJournalError, got %v", err)
	}
	if corrupt.Path != j.Path() {
		t.Errorf("path: got %q", corrupt.Path)
	}

	// The corrupt file must survive the failed load untouched.
	data, readErr := os.ReadFile(j.Path())
	if readErr != nil {
		t.Fatalf("corrupt file vanished: %v", readErr)
	}
	if string(data) != `{"not": "an array` {
		t.Errorf("corrupt file was modified: %q", data)
	}
}

func TestJournal_SaveAll_Overwrite(t *testing.T) {
	j := testJournal(t)

	if err := j.SaveAll([]Item{{ID: "a", Content: "first"}}); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if err := j.SaveAll([]Item{{ID: "b", Content: "second"}}); err != nil {
		t.Fatalf("SaveAll (overwrite): %v", err)
	}

	items, err := j.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if len(items) != 1 || items[0].ID != "b" {
		t.Errorf("expected single item b, got %+v", items)
	}
}
