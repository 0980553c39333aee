package mcp

import (
	"context"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
)

// mockQueryService implements driving.QueryService.
type mockQueryService struct {
	results  []domain.QueryResult
	err      error
	lastOpts domain.QueryOptions
	lastText string
}

func (m *mockQueryService) Query(
	_ context.Context, query string, opts domain.QueryOptions,
) ([]domain.QueryResult, error) {
	m.lastText = query
	m.lastOpts = opts
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

// mockSyncRunner implements driving.SyncRunner.
type mockSyncRunner struct {
	report   *driving.SyncReport
	err      error
	status   driving.SyncStatus
	lastMode domain.SyncMode
}

func (m *mockSyncRunner) Sync(_ context.Context, mode domain.SyncMode) (*driving.SyncReport, error) {
	m.lastMode = mode
	if m.err != nil {
		return nil, m.err
	}
	return m.report, nil
}

func (m *mockSyncRunner) Status() driving.SyncStatus {
	return m.status
}

// mockStatsStore implements the subset of driven.VectorStore the status
// resource touches; other methods are unused by the server.
type mockStatsStore struct {
	stats *driven.IndexStats
	err   error
}

func (m *mockStatsStore) Upsert(_ context.Context, _ domain.IndexedRecord) error { return nil }
func (m *mockStatsStore) Delete(_ context.Context, _ string) error               { return nil }
func (m *mockStatsStore) Search(_ context.Context, _ []float32, _ int) ([]driven.VectorHit, error) {
	return nil, nil
}
func (m *mockStatsStore) Metadata(_ context.Context) (map[string]string, error) { return nil, nil }
func (m *mockStatsStore) Stats(_ context.Context) (*driven.IndexStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}
func (m *mockStatsStore) Close() error { return nil }

func queryResult(id, title, body string, score float64) domain.QueryResult {
	return domain.QueryResult{
		RecordID:     id,
		Similarity:   score,
		Freshness:    1,
		BlendedScore: score,
		Record: domain.IndexedRecord{
			SourceNote: domain.SourceNote{
				ID:         id,
				Title:      title,
				Plaintext:  body,
				Folder:     "Notes",
				ModifiedAt: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			},
		},
	}
}
