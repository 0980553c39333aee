package services

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// scoreEpsilon is the tolerance applied when validating similarity scores.
// Scores outside [0,1] beyond this margin indicate an upstream
// distance-metric mismatch.
const scoreEpsilon = 1e-9

// hoursPerDay converts result ages to the day scale the decay rate uses.
const hoursPerDay = 24.0

// RankResults re-ranks raw similarity hits by blending vector similarity
// with recency under the given intent configuration.
//
// For each result: freshness = exp(-decayRate * ageDays) and
// blended = (1-w)*similarity + w*freshness. Results are ordered by
// descending blended score, ties broken by descending similarity, then
// ascending record ID so the ordering is fully deterministic.
//
// Similarity scores are assumed pre-normalised to [0,1] by the store; a
// score outside that range fails with domain.ErrScoreRange and produces
// no partial output.
func RankResults(
	raw []domain.RawResult,
	now time.Time,
	cfg domain.IntentConfig,
) ([]domain.QueryResult, error) {
	results := make([]domain.QueryResult, len(raw))

	for i, r := range raw {
		if r.Similarity < -scoreEpsilon || r.Similarity > 1+scoreEpsilon {
			return nil, fmt.Errorf("%w: %q scored %v", domain.ErrScoreRange, r.RecordID, r.Similarity)
		}

		ageDays := now.Sub(r.ModifiedAt).Hours() / hoursPerDay
		if ageDays < 0 {
			ageDays = 0
		}

		freshness := 1.0
		if cfg.DecayRate != 0 {
			freshness = math.Exp(-cfg.DecayRate * ageDays)
		}

		blended := (1-cfg.FreshnessWeight)*r.Similarity + cfg.FreshnessWeight*freshness

		results[i] = domain.QueryResult{
			RecordID:     r.RecordID,
			Similarity:   r.Similarity,
			AgeDays:      ageDays,
			Freshness:    freshness,
			BlendedScore: blended,
		}
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

	return results, nil
}
