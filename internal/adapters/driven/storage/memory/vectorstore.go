// Package memory provides in-memory implementations of driven ports,
// useful for tests and ephemeral runs.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
)

// Ensure VectorStore implements the interface.
var _ driven.VectorStore = (*VectorStore)(nil)

// VectorStore is an in-memory vector store. Safe for concurrent use.
type VectorStore struct {
	mu      sync.RWMutex
	records map[string]domain.IndexedRecord
}

// NewVectorStore creates an empty in-memory vector store.
func NewVectorStore() *VectorStore {
	return &VectorStore{
		records: make(map[string]domain.IndexedRecord),
	}
}

// Upsert inserts or replaces the record for a note.
func (s *VectorStore) Upsert(_ context.Context, record domain.IndexedRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record has no id", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = record
	return nil
}

// Delete removes a note's record. Deleting an absent ID is not an error.
func (s *VectorStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

// Metadata returns the content hash of every stored note, keyed by ID.
func (s *VectorStore) Metadata(_ context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta := make(map[string]string, len(s.records))
	for id, rec := range s.records {
		meta[id] = rec.ContentHash
	}
	return meta, nil
}

// Search scores every stored embedding by cosine similarity normalised to
// [0,1] and returns the top k hits.
func (s *VectorStore) Search(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(s.records))
	for _, rec := range s.records {
		sim, err := cosineSimilarity(query, rec.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", rec.ID, err)
		}
		hits = append(hits, driven.VectorHit{Record: rec, Similarity: sim})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats returns index-level counters.
func (s *VectorStore) Stats(_ context.Context) (*driven.IndexStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &driven.IndexStats{
		TotalNotes: len(s.records),
		Folders:    make(map[string]int),
	}
	for _, rec := range s.records {
		stats.Folders[rec.Folder]++
		if rec.SyncedAt.After(stats.LastSync) {
			stats.LastSync = rec.SyncedAt
		}
	}
	return stats, nil
}

// Close is a no-op for the in-memory store.
func (s *VectorStore) Close() error {
	return nil
}

func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: query has %d dimensions, record has %d",
			domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2, nil
}
