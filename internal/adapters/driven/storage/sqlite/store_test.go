package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func record(id string, embedding []float32) domain.IndexedRecord {
	return domain.IndexedRecord{
		SourceNote: domain.SourceNote{
			ID:          id,
			Title:       "Title " + id,
			Plaintext:   "body " + id,
			Folder:      "Notes",
			CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			ModifiedAt:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			ContentHash: domain.ComputeContentHash("Title "+id, "body "+id),
		},
		Embedding: embedding,
		SyncedAt:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsertAndMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := record("a", []float32{1, 0, 0})
	require.NoError(t, store.Upsert(ctx, rec))

	meta, err := store.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": rec.ContentHash}, meta)

	// Upsert with new content replaces the row instead of duplicating it.
	rec.Plaintext = "edited"
	rec.ContentHash = domain.ComputeContentHash(rec.Title, rec.Plaintext)
	require.NoError(t, store.Upsert(ctx, rec))

	meta, err = store.Metadata(ctx)
	require.NoError(t, err)
	require.Len(t, meta, 1)
	assert.Equal(t, rec.ContentHash, meta["a"])
}

func TestUpsertRejectsEmptyID(t *testing.T) {
	store := newTestStore(t)
	err := store.Upsert(context.Background(), domain.IndexedRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", []float32{1, 0, 0})))
	require.NoError(t, store.Delete(ctx, "a"))

	meta, err := store.Metadata(ctx)
	require.NoError(t, err)
	assert.Empty(t, meta)

	// Deleting an absent ID is fine.
	assert.NoError(t, store.Delete(ctx, "missing"))
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("exact", []float32{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, record("orthogonal", []float32{0, 1, 0})))
	require.NoError(t, store.Upsert(ctx, record("opposite", []float32{-1, 0, 0})))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "exact", hits[0].Record.ID)
	assert.Equal(t, "orthogonal", hits[1].Record.ID)
	assert.Equal(t, "opposite", hits[2].Record.ID)

	// Cosine shifted into [0,1]: aligned=1, orthogonal=0.5, opposite=0.
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Similarity, 1e-6)
	assert.InDelta(t, 0.0, hits[2].Similarity, 1e-6)

	// Round-tripped embeddings come back intact.
	assert.Equal(t, []float32{1, 0, 0}, hits[0].Record.Embedding)
}

func TestSearchRespectsK(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", []float32{1, 0, 0})))
	require.NoError(t, store.Upsert(ctx, record("b", []float32{0.9, 0.1, 0})))

	hits, err := store.Search(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = store.Search(ctx, []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchDimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, record("a", []float32{1, 0, 0})))

	_, err := store.Search(ctx, []float32{1, 0}, 10)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestStats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := record("a", []float32{1, 0, 0})
	b := record("b", []float32{0, 1, 0})
	b.Folder = "Work"
	b.SyncedAt = time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, a))
	require.NoError(t, store.Upsert(ctx, b))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalNotes)
	assert.Equal(t, map[string]int{"Notes": 1, "Work": 1}, stats.Folders)
	assert.True(t, stats.LastSync.Equal(b.SyncedAt))
}

func TestStatsEmptyIndex(t *testing.T) {
	store := newTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.TotalNotes)
	assert.True(t, stats.LastSync.IsZero())
}

func TestReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Upsert(ctx, record("a", []float32{1, 0, 0})))
	require.NoError(t, store.Close())

	// Re-opening re-runs migrations; they must be idempotent.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	meta, err := store.Metadata(ctx)
	require.NoError(t, err)
	assert.Len(t, meta, 1)
}
