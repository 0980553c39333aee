package cli

import (
	"context"
	"testing"
	"time"

	configfile "github.com/notera-io/notera-cli/internal/adapters/driven/config/file"
	"github.com/notera-io/notera-cli/internal/adapters/driven/storage/memory"
	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/services"
)

// stubEmbedder returns the same unit vector for every text, so similarity
// is always 1 and ranking is driven purely by freshness and tie-breaks.
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{1, 0, 0, 0}, nil
}

func (e stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i], _ = e.Embed(ctx, texts[i])
	}
	return out, nil
}

func (stubEmbedder) Dimensions() int              { return 4 }
func (stubEmbedder) ModelName() string            { return "stub" }
func (stubEmbedder) Ping(_ context.Context) error { return nil }
func (stubEmbedder) Close() error                 { return nil }

// stubExporter serves a fixed set of notes.
type stubExporter struct {
	notes []domain.SourceNote
}

func (s *stubExporter) ExportAll(_ context.Context) ([]domain.SourceNote, error) {
	return s.notes, nil
}

func (s *stubExporter) Validate(_ context.Context) error { return nil }

func stubNote(id, title, body, folder string) domain.SourceNote {
	return domain.SourceNote{
		ID:          id,
		Title:       title,
		Plaintext:   body,
		Folder:      folder,
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ModifiedAt:  time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ContentHash: domain.ComputeContentHash(title, body),
	}
}

// setupTestServices wires the package-level services against in-memory
// fakes and returns a cleanup that puts everything back.
func setupTestServices(t *testing.T) func() {
	t.Helper()

	store := memory.NewVectorStore()
	embed := stubEmbedder{}
	exporter := &stubExporter{notes: []domain.SourceNote{
		stubNote("n1", "Team retro notes", "what went well this sprint", "Work"),
		stubNote("n2", "Pasta recipe", "boil water, add salt", "Personal"),
	}}

	cfg, err := configfile.NewConfigStore(t.TempDir())
	if err != nil {
		t.Fatalf("config store: %v", err)
	}

	noteExporter = exporter
	embedder = embed
	vectorStore = store
	syncRunner = services.NewSyncService(exporter, embed, store, nil)
	queryService = services.NewRetrievalService(embed, store)
	configStore = cfg

	return func() {
		noteExporter = nil
		embedder = nil
		vectorStore = nil
		syncRunner = nil
		queryService = nil
		configStore = nil
	}
}
