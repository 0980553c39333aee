package services

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
)

var errProviderDown = errors.New("provider down")

// --- Mock implementations of driven ports for service testing ---

// mockExporter implements driven.NoteExporter.
type mockExporter struct {
	notes       []domain.SourceNote
	exportErr   error
	validateErr error
}

func (m *mockExporter) ExportAll(_ context.Context) ([]domain.SourceNote, error) {
	if m.exportErr != nil {
		return nil, m.exportErr
	}
	return m.notes, nil
}

func (m *mockExporter) Validate(_ context.Context) error {
	return m.validateErr
}

// mockEmbedder implements driven.EmbeddingService. It returns a fixed-size
// vector whose first component encodes the call order, and can be told to
// fail for specific texts.
type mockEmbedder struct {
	dims      int
	pingErr   error
	embedErr  error
	failTexts map[string]bool
	badDims   bool

	mu    sync.Mutex
	calls []string
}

func newMockEmbedder(dims int) *mockEmbedder {
	return &mockEmbedder{dims: dims}
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	if m.failTexts[text] {
		return nil, errProviderDown
	}

	dims := m.dims
	if m.badDims {
		dims = m.dims + 1
	}
	vec := make([]float32, dims)
	vec[0] = 1
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int    { return m.dims }
func (m *mockEmbedder) ModelName() string  { return "mock-embed" }
func (m *mockEmbedder) Close() error       { return nil }
func (m *mockEmbedder) Ping(_ context.Context) error {
	return m.pingErr
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockVectorStore implements driven.VectorStore over a map.
type mockVectorStore struct {
	mu        sync.Mutex
	records   map[string]domain.IndexedRecord
	hits      []driven.VectorHit
	lastK     int
	upsertErr error
	deleteErr error
	searchErr error
	metaErr   error
}

func newMockVectorStore() *mockVectorStore {
	return &mockVectorStore{records: make(map[string]domain.IndexedRecord)}
}

func (m *mockVectorStore) Upsert(_ context.Context, record domain.IndexedRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.ID] = record
	return nil
}

func (m *mockVectorStore) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *mockVectorStore) Search(_ context.Context, _ []float32, k int) ([]driven.VectorHit, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	m.mu.Lock()
	m.lastK = k
	m.mu.Unlock()
	if k > len(m.hits) {
		return m.hits, nil
	}
	return m.hits[:k], nil
}

func (m *mockVectorStore) Metadata(_ context.Context) (map[string]string, error) {
	if m.metaErr != nil {
		return nil, m.metaErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	meta := make(map[string]string, len(m.records))
	for id, rec := range m.records {
		meta[id] = rec.ContentHash
	}
	return meta, nil
}

func (m *mockVectorStore) Stats(_ context.Context) (*driven.IndexStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &driven.IndexStats{
		TotalNotes: len(m.records),
		Folders:    make(map[string]int),
	}
	for _, rec := range m.records {
		stats.Folders[rec.Folder]++
		if rec.SyncedAt.After(stats.LastSync) {
			stats.LastSync = rec.SyncedAt
		}
	}
	return stats, nil
}

func (m *mockVectorStore) Close() error { return nil }

func (m *mockVectorStore) storedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
