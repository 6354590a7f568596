// Package memory implements the long-term memory subsystem: the raw
// journal of user facts, the derived vector index, and the manager that
// keeps the two consistent.
package memory

import (
	"fmt"
	"time"
)

// Item is a single user-visible memory: a free-text fact plus lifecycle
// metadata. The journal owns Items; the vector index holds only derived,
// disposable data keyed by Item ID.
type Item struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Archived  bool      `json:"archived"`
}

// ChunkKey identifies one indexed chunk: the owning item plus the
// chunk's position within that item's fragment sequence. The parent
// reference is a plain identifier, never an owning pointer.
type ChunkKey struct {
	ParentID string
	Seq      int
}

func (k ChunkKey) String() string {
	return fmt.Sprintf("%s:%d", k.ParentID, k.Seq)
}

// QueryMatch is one ranked retrieval result. Score is cosine
// similarity in [-1, 1], higher is more similar.
type QueryMatch struct {
	Item  Item
	Score float64
}

// Mismatch reports that a query vector's dimension differs from the
// index's locked dimension, typically because the embedding model
// changed. The fix is an explicit full reembedding.
type Mismatch struct {
	QueryDimension int
	IndexDimension int
}

// ReembedSummary reports the outcome of a full reembedding pass.
type ReembedSummary struct {
	Total     int
	Succeeded int
	Failed    int
	FailedIDs []string
	Elapsed   time.Duration
}
