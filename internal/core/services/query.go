package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
	"github.com/notera-io/notera-cli/internal/logger"
)

// Ensure RetrievalService implements the interface.
var _ driving.QueryService = (*RetrievalService)(nil)

// Retrieval tuning constants.
const (
	// defaultQueryLimit is used when the caller does not set a limit.
	defaultQueryLimit = 10

	// overfetchFactor is how many extra candidates are fetched when
	// freshness re-ranking may reorder them.
	overfetchFactor = 3

	// keywordBoost is added to the blended score per matched keyword.
	keywordBoost = 0.1
)

// RetrievalService answers queries by embedding the query text, searching
// the vector store and re-ranking hits by blended similarity and freshness.
type RetrievalService struct {
	embedder driven.EmbeddingService
	store    driven.VectorStore

	// now is injectable for tests; defaults to time.Now.
	now func() time.Time
}

// NewRetrievalService creates a retrieval service.
func NewRetrievalService(embedder driven.EmbeddingService, store driven.VectorStore) *RetrievalService {
	return &RetrievalService{
		embedder: embedder,
		store:    store,
		now:      time.Now,
	}
}

// Query performs freshness-aware semantic retrieval.
func (s *RetrievalService) Query(
	ctx context.Context, query string, opts domain.QueryOptions,
) ([]domain.QueryResult, error) {
	logger.Section("Query Execution")
	logger.Debug("Query: %q", query)

	query = strings.TrimSpace(query)
	if query == "" {
		return []domain.QueryResult{}, nil
	}

	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	if s.store == nil {
		return nil, domain.ErrIndexUnavailable
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}

	intent := opts.Intent
	if !intent.Valid() {
		intent = domain.DetectIntent(query)
		logger.Debug("Auto-detected intent: %s", intent)
	}

	cfg := intent.Config()
	if opts.FreshnessWeight != nil {
		cfg.FreshnessWeight = *opts.FreshnessWeight
	}
	logger.Info("Intent: %s (weight=%.2f, decay=%.3f)", intent, cfg.FreshnessWeight, cfg.DecayRate)

	// Over-fetch when freshness may reorder results, and when filters
	// will discard candidates afterwards.
	fetchLimit := limit
	if cfg.FreshnessWeight > 0 || opts.Folder != "" {
		fetchLimit = limit * overfetchFactor
	}

	queryVec, err := s.embedder.Embed(ctx, truncateQuery(query))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	logger.Debug("Query embedding: %d dimensions", len(queryVec))

	hits, err := s.store.Search(ctx, queryVec, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	logger.Debug("Raw hits: %d", len(hits))

	records := make(map[string]domain.IndexedRecord, len(hits))
	raw := make([]domain.RawResult, 0, len(hits))
	for _, hit := range hits {
		if opts.Folder != "" && hit.Record.Folder != opts.Folder {
			continue
		}
		records[hit.Record.ID] = hit.Record
		raw = append(raw, domain.RawResult{
			RecordID:   hit.Record.ID,
			Similarity: hit.Similarity,
			ModifiedAt: hit.Record.ModifiedAt,
		})
	}

	results, err := RankResults(raw, s.now(), cfg)
	if err != nil {
		return nil, fmt.Errorf("rank results: %w", err)
	}

	for i := range results {
		results[i].Record = records[results[i].RecordID]
		if !opts.IncludeBody {
			results[i].Record.Plaintext = preview(results[i].Record.Plaintext)
		}
	}

	if len(opts.Keywords) > 0 {
		applyKeywordBoost(results, records, opts.Keywords)
	}

	if len(results) > limit {
		results = results[:limit]
	}
	logger.Info("Final results: %d", len(results))

	return results, nil
}

// applyKeywordBoost adds a flat boost per keyword found in a result's title
// or body, then restores the blended-score ordering.
func applyKeywordBoost(
	results []domain.QueryResult,
	records map[string]domain.IndexedRecord,
	keywords []string,
) {
	for i := range results {
		rec := records[results[i].RecordID]
		text := strings.ToLower(rec.Title + " " + rec.Plaintext)

		var boost float64
		for _, kw := range keywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				boost += keywordBoost
			}
		}

		results[i].KeywordBoost = boost
		results[i].BlendedScore += boost
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].BlendedScore != results[j].BlendedScore {
			return results[i].BlendedScore > results[j].BlendedScore
		}
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return results[i].RecordID < results[j].RecordID
	})
}

// previewLength bounds the body text returned when the caller did not ask
// for full content.
const previewLength = 300

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= previewLength {
		return body
	}
	return string(runes[:previewLength]) + "..."
}

func truncateQuery(q string) string {
	runes := []rune(q)
	if len(runes) > maxEmbedChars {
		runes = runes[:maxEmbedChars]
	}
	return string(runes)
}
