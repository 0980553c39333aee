package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

func testRecord(id, folder string, embedding []float32) domain.IndexedRecord {
	return domain.IndexedRecord{
		SourceNote: domain.SourceNote{
			ID:          id,
			Title:       id,
			Folder:      folder,
			ContentHash: "hash-" + id,
		},
		Embedding: embedding,
		SyncedAt:  time.Now(),
	}
}

func TestVectorStoreLifecycle(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", "Notes", []float32{1, 0})))
	require.NoError(t, store.Upsert(ctx, testRecord("b", "Work", []float32{0, 1})))

	meta, err := store.Metadata(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "hash-a", "b": "hash-b"}, meta)

	require.NoError(t, store.Delete(ctx, "b"))
	meta, err = store.Metadata(ctx)
	require.NoError(t, err)
	assert.Len(t, meta, 1)
}

func TestVectorStoreUpsertRejectsEmptyID(t *testing.T) {
	store := NewVectorStore()
	err := store.Upsert(context.Background(), domain.IndexedRecord{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorStoreSearch(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("aligned", "Notes", []float32{1, 0})))
	require.NoError(t, store.Upsert(ctx, testRecord("orthogonal", "Notes", []float32{0, 1})))

	hits, err := store.Search(ctx, []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "aligned", hits[0].Record.ID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.InDelta(t, 0.5, hits[1].Similarity, 1e-6)

	hits, err = store.Search(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestVectorStoreSearchDimensionMismatch(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", "Notes", []float32{1, 0})))

	_, err := store.Search(ctx, []float32{1, 0, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestVectorStoreStats(t *testing.T) {
	store := NewVectorStore()
	ctx := context.Background()

	require.NoError(t, store.Upsert(ctx, testRecord("a", "Notes", []float32{1, 0})))
	require.NoError(t, store.Upsert(ctx, testRecord("b", "Notes", []float32{0, 1})))
	require.NoError(t, store.Upsert(ctx, testRecord("c", "Work", []float32{1, 1})))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalNotes)
	assert.Equal(t, map[string]int{"Notes": 2, "Work": 1}, stats.Folders)
	assert.False(t, stats.LastSync.IsZero())
}
