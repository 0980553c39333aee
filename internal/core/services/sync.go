package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
	"github.com/notera-io/notera-cli/internal/logger"
)

// Ensure SyncService implements the interface.
var _ driving.SyncRunner = (*SyncService)(nil)

// maxEmbedChars caps the text sent to the embedding model, keeping requests
// under the model's token limit.
const maxEmbedChars = 8000

// SyncService coordinates one sync pass: export, resolve changes, embed
// changed notes and apply index mutations. Per-note failures are counted
// and reported, never batch-fatal.
type SyncService struct {
	exporter driven.NoteExporter
	embedder driven.EmbeddingService
	store    driven.VectorStore
	limiter  *rate.Limiter

	mu      sync.Mutex
	running bool
	status  driving.SyncStatus
}

// NewSyncService creates a sync service. The limiter throttles embedding
// requests; pass nil to disable throttling.
func NewSyncService(
	exporter driven.NoteExporter,
	embedder driven.EmbeddingService,
	store driven.VectorStore,
	limiter *rate.Limiter,
) *SyncService {
	return &SyncService{
		exporter: exporter,
		embedder: embedder,
		store:    store,
		limiter:  limiter,
	}
}

// Sync runs one sync pass in the given mode.
// Returns domain.ErrSyncInProgress if a pass is already running.
func (s *SyncService) Sync(ctx context.Context, mode domain.SyncMode) (*driving.SyncReport, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	defer s.end()

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrIndexUnavailable
	}

	logger.Section("Sync Pass")
	logger.Info("Mode: %s", mode)

	report := &driving.SyncReport{
		ID:        uuid.NewString(),
		Mode:      mode,
		StartedAt: time.Now(),
	}

	// Fail fast before exporting anything.
	if err := s.embedder.Ping(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}
	if err := s.exporter.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validate exporter: %w", err)
	}

	export, err := s.exporter.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export notes: %w", err)
	}
	report.Total = len(export)
	logger.Info("Exported %d notes", len(export))

	indexMeta, err := s.store.Metadata(ctx)
	if err != nil {
		return nil, fmt.Errorf("load index metadata: %w", err)
	}
	logger.Debug("Existing index: %d notes", len(indexMeta))

	changes, err := ResolveChanges(export, indexMeta, mode)
	if err != nil {
		return nil, fmt.Errorf("resolve changes: %w", err)
	}
	report.Unchanged = changes.Unchanged
	logger.Info("Changes: %d new, %d modified, %d deleted",
		len(changes.ToAdd), len(changes.ToUpdate), len(changes.ToDelete))

	// Deletions first, mirroring the order the index mutates in.
	for _, id := range changes.ToDelete {
		if err := s.store.Delete(ctx, id); err != nil {
			s.recordFailure(report, fmt.Sprintf("delete %s: %v", id, err))
			continue
		}
		report.Deleted++
		s.bumpProcessed()
	}

	for _, n := range changes.ToAdd {
		if err := s.applyOne(ctx, n); err != nil {
			s.recordFailure(report, fmt.Sprintf("index %s: %v", n.ID, err))
			continue
		}
		report.Added++
		s.bumpProcessed()
	}

	for _, n := range changes.ToUpdate {
		if err := s.applyOne(ctx, n); err != nil {
			s.recordFailure(report, fmt.Sprintf("reindex %s: %v", n.ID, err))
			continue
		}
		report.Updated++
		s.bumpProcessed()
	}

	report.FinishedAt = time.Now()
	logger.Info("Sync complete: %d added, %d updated, %d deleted, %d unchanged, %d failed",
		report.Added, report.Updated, report.Deleted, report.Unchanged, report.Failed)

	return report, nil
}

// Status returns a snapshot of the currently running pass.
func (s *SyncService) Status() driving.SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// applyOne embeds a note and writes its index record. The embedding is
// generated and validated before any index write, so a failed or malformed
// embedding never reaches storage.
func (s *SyncService) applyOne(ctx context.Context, n domain.SourceNote) error {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	embedding, err := s.embedder.Embed(ctx, EmbedText(n))
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	if want := s.embedder.Dimensions(); len(embedding) != want {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrDimensionMismatch, len(embedding), want)
	}

	record := domain.IndexedRecord{
		SourceNote: n,
		Embedding:  embedding,
		SyncedAt:   time.Now(),
	}
	if err := s.store.Upsert(ctx, record); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	logger.Debug("Indexed %s (%q)", n.ID, n.Title)
	return nil
}

// EmbedText builds the text embedded for a note: title and body joined,
// truncated to the model's input budget.
func EmbedText(n domain.SourceNote) string {
	text := n.Title + "\n\n" + n.Plaintext
	if len(text) > maxEmbedChars {
		// Truncate on a rune boundary.
		runes := []rune(text)
		if len(runes) > maxEmbedChars {
			runes = runes[:maxEmbedChars]
		}
		text = string(runes)
	}
	return text
}

func (s *SyncService) begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return domain.ErrSyncInProgress
	}
	s.running = true
	s.status = driving.SyncStatus{Running: true}
	return nil
}

func (s *SyncService) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	s.status.Running = false
}

func (s *SyncService) bumpProcessed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.NotesProcessed++
}

func (s *SyncService) recordFailure(report *driving.SyncReport, msg string) {
	report.Failed++
	report.Errors = append(report.Errors, msg)
	logger.Warn("%s", msg)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.ErrorCount++
}
