package memory

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"github.com/engram-ai/engram/internal/db"
)

// VectorIndex persists chunk embeddings in SQLite and answers
// nearest-neighbor queries via sqlite-vec. Each embedding lives in two
// tables committed together: a chunk_vectors payload row (parent id,
// sequence index, source text, insertion counter) and a vec0 row
// holding the vector itself.
//
// The index locks its dimension on the first upsert and refuses to mix
// dimensions afterwards; Clear is the only way to unlock it.
type VectorIndex struct {
	conn *sql.DB
}

// NewVectorIndex creates a VectorIndex backed by the given DB.
func NewVectorIndex(database *db.DB) *VectorIndex {
	return &VectorIndex{conn: database.Conn()}
}

// DimensionMismatchError reports a vector whose length differs from the
// index's locked dimension.
type DimensionMismatchError struct {
	Expected int
	Actual   int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("index: dimension mismatch: index holds %d-dim vectors, got %d", e.Expected, e.Actual)
}

// Meta is the index-wide state: the locked vector dimension and the
// advisory identifier of the model that produced the current vectors.
type Meta struct {
	Dimension int
	Model     string
}

// Meta returns the index metadata. ok is false while the index is empty
// and no dimension has been locked yet.
func (x *VectorIndex) Meta() (meta Meta, ok bool, err error) {
	return readMeta(x.conn)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func readMeta(q querier) (Meta, bool, error) {
	var m Meta
	err := q.QueryRow(`SELECT dimension, model FROM index_meta WHERE id = 1`).Scan(&m.Dimension, &m.Model)
	if err == sql.ErrNoRows {
		return Meta{}, false, nil
	}
	if err != nil {
		return Meta{}, false, fmt.Errorf("index: read meta: %w", err)
	}
	return m, true, nil
}

// SetModel records the advisory identifier of the embedding model that
// produced the current vectors. A no-op while the dimension is unset.
func (x *VectorIndex) SetModel(model string) error {
	_, err := x.conn.Exec(`UPDATE index_meta SET model = ? WHERE id = 1`, model)
	if err != nil {
		return fmt.Errorf("index: set model: %w", err)
	}
	return nil
}

// Count returns the number of stored vectors.
func (x *VectorIndex) Count() (int, error) {
	var n int
	if err := x.conn.QueryRow(`SELECT COUNT(*) FROM chunk_vectors`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

// Upsert stores or replaces the vector for a chunk. The first successful
// upsert locks the index dimension to len(vector); later upserts whose
// length differs fail with DimensionMismatchError and leave the index
// unchanged. Payload and vector rows are committed in one transaction so
// a crash between upserts cannot corrupt already-committed vectors.
func (x *VectorIndex) Upsert(key ChunkKey, vector []float32, sourceText string) error {
	if len(vector) == 0 {
		return fmt.Errorf("index: upsert %s: empty vector", key)
	}

	tx, err := x.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin upsert: %w", err)
	}
	defer tx.Rollback()

	meta, ok, err := readMeta(tx)
	if err != nil {
		return err
	}
	if !ok {
		if err := lockDimension(tx, len(vector)); err != nil {
			return err
		}
	} else if meta.Dimension != len(vector) {
		return &DimensionMismatchError{Expected: meta.Dimension, Actual: len(vector)}
	}

	// Keep the original insertion position on re-upsert so search
	// tie-breaking stays stable across updates.
	var pos int
	err = tx.QueryRow(`SELECT pos FROM chunk_vectors WHERE chunk_key = ?`, key.String()).Scan(&pos)
	if err == sql.ErrNoRows {
		if err := tx.QueryRow(`SELECT COALESCE(MAX(pos), 0) + 1 FROM chunk_vectors`).Scan(&pos); err != nil {
			return fmt.Errorf("index: next position: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("index: read position: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO chunk_vectors (chunk_key, parent_id, seq, source_text, pos)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(chunk_key) DO UPDATE SET
		     parent_id   = excluded.parent_id,
		     seq         = excluded.seq,
		     source_text = excluded.source_text`,
		key.String(), key.ParentID, key.Seq, sourceText, pos,
	)
	if err != nil {
		return fmt.Errorf("index: upsert payload %s: %w", key, err)
	}

	// vec0 virtual tables do not support ON CONFLICT, so replace by
	// delete-then-insert inside the same transaction.
	if _, err := tx.Exec(`DELETE FROM vec_chunks WHERE chunk_key = ?`, key.String()); err != nil {
		return fmt.Errorf("index: replace vector %s: %w", key, err)
	}
	_, err = tx.Exec(
		`INSERT INTO vec_chunks (chunk_key, embedding) VALUES (?, ?)`,
		key.String(), float32SliceToBlob(vector),
	)
	if err != nil {
		return fmt.Errorf("index: upsert vector %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit upsert: %w", err)
	}
	return nil
}

// lockDimension records the dimension and creates the vec0 table sized
// for it. Runs inside the first upsert's transaction.
func lockDimension(tx *sql.Tx, dimension int) error {
	if _, err := tx.Exec(`INSERT INTO index_meta (id, dimension, model) VALUES (1, ?, '')`, dimension); err != nil {
		return fmt.Errorf("index: lock dimension: %w", err)
	}
	stmt := fmt.Sprintf(
		`CREATE VIRTUAL TABLE vec_chunks USING vec0(
			chunk_key TEXT PRIMARY KEY,
			embedding FLOAT[%d] distance_metric=cosine
		)`, dimension)
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("index: create vector table: %w", err)
	}
	return nil
}

// SearchResult is one ranked parent item from a similarity search.
type SearchResult struct {
	ParentID string
	Score    float64
}

// Search ranks stored vectors by cosine similarity against queryVector
// and returns the top topK parent items. A parent with several matching
// chunks is counted once, by its best-scoring chunk. Ranking is
// deterministic: descending score, ties broken by earliest insertion.
func (x *VectorIndex) Search(queryVector []float32, topK int) ([]SearchResult, error) {
	if topK < 1 {
		return nil, nil
	}

	meta, ok, err := x.Meta()
	if !ok || err != nil {
		return nil, err
	}
	if len(queryVector) != meta.Dimension {
		return nil, &DimensionMismatchError{Expected: meta.Dimension, Actual: len(queryVector)}
	}

	total, err := x.Count()
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, nil
	}

	// Load the payload rows before opening the KNN cursor: the pool is
	// capped at a single connection, so a second query while the KNN
	// rows are open would block forever.
	payload, err := x.loadPayload()
	if err != nil {
		return nil, err
	}

	// Rank the full corpus: memory counts are small, and a complete
	// ranking keeps per-parent deduplication exact.
	rows, err := x.conn.Query(
		`SELECT chunk_key, distance FROM vec_chunks WHERE embedding MATCH ? AND k = ?
		 ORDER BY distance`,
		float32SliceToBlob(queryVector), total,
	)
	if err != nil {
		return nil, fmt.Errorf("index: knn query: %w", err)
	}
	defer rows.Close()

	type chunkHit struct {
		score float64
		pos   int
	}
	hits := make(map[string]chunkHit) // parent id → best chunk

	for rows.Next() {
		var key string
		var distance float64
		if err := rows.Scan(&key, &distance); err != nil {
			return nil, fmt.Errorf("index: scan knn row: %w", err)
		}
		p, ok := payload[key]
		if !ok {
			continue
		}
		score := 1.0 - distance
		best, seen := hits[p.parentID]
		if !seen || score > best.score || (score == best.score && p.pos < best.pos) {
			hits[p.parentID] = chunkHit{score: score, pos: p.pos}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: knn rows: %w", err)
	}

	results := make([]SearchResult, 0, len(hits))
	order := make(map[string]int, len(hits))
	for parent, h := range hits {
		results = append(results, SearchResult{ParentID: parent, Score: h.score})
		order[parent] = h.pos
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return order[results[i].ParentID] < order[results[j].ParentID]
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

type payloadRow struct {
	parentID string
	pos      int
}

func (x *VectorIndex) loadPayload() (map[string]payloadRow, error) {
	rows, err := x.conn.Query(`SELECT chunk_key, parent_id, pos FROM chunk_vectors`)
	if err != nil {
		return nil, fmt.Errorf("index: load payload: %w", err)
	}
	defer rows.Close()

	out := make(map[string]payloadRow)
	for rows.Next() {
		var key string
		var p payloadRow
		if err := rows.Scan(&key, &p.parentID, &p.pos); err != nil {
			return nil, fmt.Errorf("index: scan payload: %w", err)
		}
		out[key] = p
	}
	return out, rows.Err()
}

// SourceTexts returns the stored source text of every chunk belonging
// to the given parent, ordered by sequence index. Kept for display and
// debugging; rebuilds read the journal, not these copies.
func (x *VectorIndex) SourceTexts(parentID string) ([]string, error) {
	rows, err := x.conn.Query(
		`SELECT source_text FROM chunk_vectors WHERE parent_id = ? ORDER BY seq`, parentID,
	)
	if err != nil {
		return nil, fmt.Errorf("index: source texts: %w", err)
	}
	defer rows.Close()

	var texts []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		texts = append(texts, s)
	}
	return texts, rows.Err()
}

// DeleteByParent removes every vector owned by the given item. Used
// when an item is deleted or about to be fully re-derived.
func (x *VectorIndex) DeleteByParent(parentID string) error {
	tx, err := x.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin delete: %w", err)
	}
	defer tx.Rollback()

	_, ok, err := readMeta(tx)
	if err != nil {
		return err
	}
	if ok {
		_, err = tx.Exec(
			`DELETE FROM vec_chunks WHERE chunk_key IN
			   (SELECT chunk_key FROM chunk_vectors WHERE parent_id = ?)`,
			parentID,
		)
		if err != nil {
			return fmt.Errorf("index: delete vectors for %s: %w", parentID, err)
		}
	}

	if _, err := tx.Exec(`DELETE FROM chunk_vectors WHERE parent_id = ?`, parentID); err != nil {
		return fmt.Errorf("index: delete payload for %s: %w", parentID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit delete: %w", err)
	}
	return nil
}

// Clear discards every vector and unlocks the dimension. Used only as
// the first step of a full reembedding.
func (x *VectorIndex) Clear() error {
	tx, err := x.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin clear: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DROP TABLE IF EXISTS vec_chunks`); err != nil {
		return fmt.Errorf("index: drop vector table: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM chunk_vectors`); err != nil {
		return fmt.Errorf("index: clear payload: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM index_meta`); err != nil {
		return fmt.Errorf("index: clear meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("index: commit clear: %w", err)
	}
	return nil
}

// float32SliceToBlob serialises a float32 slice to a little-endian byte
// blob, the format sqlite-vec expects for BLOB column input.
func float32SliceToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// blobToFloat32Slice deserialises a little-endian byte blob back to a
// float32 slice.
func blobToFloat32Slice(b []byte) []float32 {
	result := make([]float32, len(b)/4)
	for i := range result {
		bits := binary.LittleEndian.Uint32(b[i*4:])
		result[i] = math.Float32frombits(bits)
	}
	return result
}
