package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/engram-ai/engram/internal/chunker"
)

var (
	// ErrIndexingDeferred signals that an item was durably saved to the
	// journal but its embeddings could not be written to the index. The
	// item is safe; a later reembed run will index it.
	ErrIndexingDeferred = errors.New("memory: indexing deferred")

	// ErrNotFound signals that no item with the given id exists.
	ErrNotFound = errors.New("memory: item not found")
)

// Embedder turns texts into embedding vectors. *embed.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, texts []string, preferredModelID string) ([][]float32, error)
	ActiveModelID(preferredModelID string) (string, error)
}

// ManagerConfig carries Manager tuning knobs.
type ManagerConfig struct {
	// ChunkSize is the maximum chunk length in runes. Values below 1
	// fall back to chunker.DefaultChunkSize.
	ChunkSize int
	// PreferredModel selects the embedding model by id; empty means the
	// embedder's first configured model.
	PreferredModel string
	Logger         zerolog.Logger
}

// Manager owns the memory collection. The journal is the source of
// truth: every mutation lands there first, and index writes follow.
// An index write that fails leaves the journal intact and is reported
// via ErrIndexingDeferred rather than rolled back.
type Manager struct {
	journal  *Journal
	index    *VectorIndex
	embedder Embedder
	cfg      ManagerConfig
	log      zerolog.Logger

	// writeMu serialises mutations end to end (journal write plus the
	// index writes that follow), so concurrent callers cannot interleave
	// partial states.
	writeMu sync.Mutex

	mu      sync.RWMutex
	items   []Item
	corrupt bool

	itemEvents     *broadcaster[[]Item]
	mismatchEvents *broadcaster[Mismatch]
}

// NewManager loads the journal and returns a ready Manager. A corrupt
// journal is reported in the log and treated as empty; the file on disk
// is left untouched until the first explicit mutation overwrites it.
func NewManager(journal *Journal, index *VectorIndex, embedder Embedder, cfg ManagerConfig) (*Manager, error) {
	if cfg.ChunkSize < 1 {
		cfg.ChunkSize = chunker.DefaultChunkSize
	}

	m := &Manager{
		journal:        journal,
		index:          index,
		embedder:       embedder,
		cfg:            cfg,
		log:            cfg.Logger,
		itemEvents:     newBroadcaster[[]Item](),
		mismatchEvents: newBroadcaster[Mismatch](),
	}

	items, err := journal.LoadAll()
	if err != nil {
		var corrupt *CorruptJournalError
		if !errors.As(err, &corrupt) {
			return nil, fmt.Errorf("memory: load journal: %w", err)
		}
		m.log.Warn().Err(corrupt.Err).Str("path", corrupt.Path).
			Msg("journal is unreadable, starting with an empty collection")
		m.corrupt = true
		items = nil
	}
	m.items = items
	return m, nil
}

// Index exposes the underlying vector index for read-only inspection.
func (m *Manager) Index() *VectorIndex {
	return m.index
}

// JournalCorrupt reports whether the journal failed to parse at startup
// and has not been rewritten by a mutation since.
func (m *Manager) JournalCorrupt() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.corrupt
}

// Items returns a copy of the current collection in journal order.
func (m *Manager) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Item, len(m.items))
	copy(out, m.items)
	return out
}

// Get returns the item with the given id.
func (m *Manager) Get(id string) (Item, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, it := range m.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Subscribe returns a channel that receives the current collection
// immediately and again after every mutation. Delivery is conflated: a
// subscriber that falls behind sees only the newest snapshot. The
// cancel function releases the subscription.
func (m *Manager) Subscribe() (<-chan []Item, func()) {
	return m.itemEvents.subscribeInit(m.Items())
}

// SubscribeMismatch returns a channel that receives an event whenever a
// query is rejected because its vector dimension differs from the
// index's. The cancel function releases the subscription.
func (m *Manager) SubscribeMismatch() (<-chan Mismatch, func()) {
	return m.mismatchEvents.subscribe()
}

// AddMemory saves a new item and indexes its chunks. The returned item
// is valid even when err wraps ErrIndexingDeferred: the journal write
// succeeded and only the index write is pending.
func (m *Manager) AddMemory(ctx context.Context, content string) (Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Item{}, errors.New("memory: empty content")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	now := time.Now().UTC()
	item := Item{
		ID:        uuid.NewString(),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.commit(append(m.Items(), item)); err != nil {
		return Item{}, fmt.Errorf("memory: add: %w", err)
	}

	if err := m.indexItem(ctx, item); err != nil {
		m.log.Warn().Err(err).Str("id", item.ID).Msg("item saved but not indexed")
		return item, fmt.Errorf("memory: add %s: %w: %w", item.ID, ErrIndexingDeferred, err)
	}
	return item, nil
}

// UpdateMemory replaces an item's content and re-derives its chunks.
// Old vectors are removed before the new ones are written so the index
// never mixes chunk sets from both versions.
func (m *Manager) UpdateMemory(ctx context.Context, id, content string) (Item, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Item{}, errors.New("memory: empty content")
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	items := m.Items()
	pos := -1
	for i, it := range items {
		if it.ID == id {
			pos = i
			break
		}
	}
	if pos < 0 {
		return Item{}, fmt.Errorf("memory: update %s: %w", id, ErrNotFound)
	}

	items[pos].Content = content
	items[pos].UpdatedAt = time.Now().UTC()
	item := items[pos]

	if err := m.commit(items); err != nil {
		return Item{}, fmt.Errorf("memory: update %s: %w", id, err)
	}

	if err := m.reindexItem(ctx, item); err != nil {
		m.log.Warn().Err(err).Str("id", id).Msg("item updated but not reindexed")
		return item, fmt.Errorf("memory: update %s: %w: %w", id, ErrIndexingDeferred, err)
	}
	return item, nil
}

// Archive marks an item archived. Archived items keep their vectors but
// are excluded from query results until unarchived.
func (m *Manager) Archive(id string) (Item, error) {
	return m.setArchived(id, true)
}

// Unarchive clears an item's archived flag.
func (m *Manager) Unarchive(id string) (Item, error) {
	return m.setArchived(id, false)
}

func (m *Manager) setArchived(id string, archived bool) (Item, error) {
	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	items := m.Items()
	for i := range items {
		if items[i].ID != id {
			continue
		}
		if items[i].Archived == archived {
			return items[i], nil
		}
		items[i].Archived = archived
		items[i].UpdatedAt = time.Now().UTC()
		if err := m.commit(items); err != nil {
			return Item{}, fmt.Errorf("memory: archive %s: %w", id, err)
		}
		return items[i], nil
	}
	return Item{}, fmt.Errorf("memory: archive %s: %w", id, ErrNotFound)
}

// DeleteMemories removes items from the journal, then their vectors
// from the index. Unknown ids are ignored. The journal removal stands
// even when index cleanup fails; each failed cleanup is retried once
// and any residual errors are joined into the returned error.
func (m *Manager) DeleteMemories(ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		doomed[id] = true
	}

	items := m.Items()
	kept := items[:0]
	removed := make([]string, 0, len(ids))
	for _, it := range items {
		if doomed[it.ID] {
			removed = append(removed, it.ID)
			continue
		}
		kept = append(kept, it)
	}
	if len(removed) == 0 {
		return nil
	}

	if err := m.commit(kept); err != nil {
		return fmt.Errorf("memory: delete: %w", err)
	}

	var errs []error
	for _, id := range removed {
		err := m.index.DeleteByParent(id)
		if err != nil {
			err = m.index.DeleteByParent(id)
		}
		if err != nil {
			m.log.Warn().Err(err).Str("id", id).Msg("orphan vectors left behind")
			errs = append(errs, fmt.Errorf("memory: delete vectors for %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// QueryMemories embeds the query and returns up to topK items ranked by
// cosine similarity, best first. Archived items never appear. A query
// embedded at a different dimension than the index returns a
// DimensionMismatchError and notifies mismatch subscribers.
func (m *Manager) QueryMemories(ctx context.Context, query string, topK int) ([]QueryMatch, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("memory: empty query")
	}
	if topK < 1 {
		return nil, nil
	}

	meta, ok, err := m.index.Meta()
	if err != nil {
		return nil, fmt.Errorf("memory: query: %w", err)
	}
	if !ok {
		return nil, nil
	}

	vectors, err := m.embedder.Embed(ctx, []string{query}, m.cfg.PreferredModel)
	if err != nil {
		return nil, fmt.Errorf("memory: embed query: %w", err)
	}
	queryVec := vectors[0]

	if len(queryVec) != meta.Dimension {
		mismatch := Mismatch{QueryDimension: len(queryVec), IndexDimension: meta.Dimension}
		m.mismatchEvents.publish(mismatch)
		m.log.Warn().
			Int("query_dim", mismatch.QueryDimension).
			Int("index_dim", mismatch.IndexDimension).
			Msg("query dimension differs from index, reembed needed")
		return nil, &DimensionMismatchError{Expected: meta.Dimension, Actual: len(queryVec)}
	}

	byID := make(map[string]Item)
	archived := 0
	for _, it := range m.Items() {
		byID[it.ID] = it
		if it.Archived {
			archived++
		}
	}

	// Over-fetch by the archived count so filtering cannot starve the
	// result set below topK.
	results, err := m.index.Search(queryVec, topK+archived)
	if err != nil {
		return nil, fmt.Errorf("memory: query: %w", err)
	}

	matches := make([]QueryMatch, 0, topK)
	for _, r := range results {
		item, ok := byID[r.ParentID]
		if !ok || item.Archived {
			continue
		}
		matches = append(matches, QueryMatch{Item: item, Score: r.Score})
		if len(matches) == topK {
			break
		}
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches, nil
}

// ReembedAll clears the index and re-derives every item's vectors with
// the active model, unlocking the dimension in the process. Items that
// fail to embed are counted in the summary and left unindexed; the run
// continues past them. Cancellation stops between items.
func (m *Manager) ReembedAll(ctx context.Context) (ReembedSummary, error) {
	start := time.Now()

	m.writeMu.Lock()
	items := m.Items()
	err := m.index.Clear()
	m.writeMu.Unlock()
	if err != nil {
		return ReembedSummary{}, fmt.Errorf("memory: reembed: %w", err)
	}

	summary := ReembedSummary{Total: len(items)}
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(start)
			return summary, fmt.Errorf("memory: reembed: %w", err)
		}

		// Take the write lock per item so other mutations can
		// interleave with a long reembed run.
		m.writeMu.Lock()
		err := m.indexItem(ctx, item)
		m.writeMu.Unlock()

		if err != nil {
			m.log.Warn().Err(err).Str("id", item.ID).Msg("reembed failed for item")
			summary.Failed++
			summary.FailedIDs = append(summary.FailedIDs, item.ID)
			continue
		}
		summary.Succeeded++
	}

	summary.Elapsed = time.Since(start)
	m.log.Info().
		Int("total", summary.Total).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Dur("elapsed", summary.Elapsed).
		Msg("reembed finished")
	return summary, nil
}

// commit writes the collection to the journal and, on success, makes it
// the visible snapshot and notifies subscribers. Called with writeMu held.
func (m *Manager) commit(items []Item) error {
	if err := m.journal.SaveAll(items); err != nil {
		return err
	}

	m.mu.Lock()
	m.items = items
	m.corrupt = false
	m.mu.Unlock()

	snapshot := make([]Item, len(items))
	copy(snapshot, items)
	m.itemEvents.publish(snapshot)
	return nil
}

// reindexItem drops an item's old vectors and writes fresh ones.
func (m *Manager) reindexItem(ctx context.Context, item Item) error {
	if err := m.index.DeleteByParent(item.ID); err != nil {
		return err
	}
	return m.indexItem(ctx, item)
}

// indexItem chunks an item, embeds the chunks and upserts the vectors.
// Called with writeMu held.
func (m *Manager) indexItem(ctx context.Context, item Item) error {
	chunks := chunker.Chunk(item.Content, m.cfg.ChunkSize)
	if len(chunks) == 0 {
		return nil
	}

	vectors, err := m.embedder.Embed(ctx, chunks, m.cfg.PreferredModel)
	if err != nil {
		return err
	}

	for i, vec := range vectors {
		key := ChunkKey{ParentID: item.ID, Seq: i}
		if err := m.index.Upsert(key, vec, chunks[i]); err != nil {
			return err
		}
	}

	if modelID, err := m.embedder.ActiveModelID(m.cfg.PreferredModel); err == nil {
		if err := m.index.SetModel(modelID); err != nil {
			m.log.Warn().Err(err).Msg("could not record model id")
		}
	}
	return nil
}
