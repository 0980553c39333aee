package domain

import (
	"regexp"
	"strings"
	"time"
)

// QueryIntent names a freshness preset for ranking. Intents form a closed
// set: adding a preset means adding an entry to intentPresets, the ranking
// algorithm itself never changes.
type QueryIntent string

const (
	// IntentCurrent favours very recent notes (contact info, current status).
	IntentCurrent QueryIntent = "current"

	// IntentBalanced applies a mild recency preference (general search).
	IntentBalanced QueryIntent = "balanced"

	// IntentHistorical ranks purely by similarity (research, audit trails).
	IntentHistorical QueryIntent = "historical"
)

// IntentConfig holds the freshness tuning for one query intent.
type IntentConfig struct {
	// FreshnessWeight is how much recency affects the blended score, in [0,1].
	FreshnessWeight float64

	// DecayRate controls how quickly old notes lose freshness. Zero means
	// freshness is constant 1.0 and recency is ignored.
	DecayRate float64
}

// Preset constants carried over from the tuned defaults of the original
// pipeline: 0.02/day halves freshness in ~35 days, 0.005/day in ~139 days.
var intentPresets = map[QueryIntent]IntentConfig{
	IntentCurrent:    {FreshnessWeight: 0.4, DecayRate: 0.02},
	IntentBalanced:   {FreshnessWeight: 0.2, DecayRate: 0.005},
	IntentHistorical: {FreshnessWeight: 0, DecayRate: 0},
}

// Config returns the preset configuration for the intent.
// Unknown intents fall back to the balanced preset.
func (i QueryIntent) Config() IntentConfig {
	if cfg, ok := intentPresets[i]; ok {
		return cfg
	}
	return intentPresets[IntentBalanced]
}

// Valid reports whether the intent names a known preset.
func (i QueryIntent) Valid() bool {
	_, ok := intentPresets[i]
	return ok
}

// Keyword patterns for intent auto-detection.
var (
	currentPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bcurrent\b`), regexp.MustCompile(`\bnow\b`),
		regexp.MustCompile(`\btoday\b`), regexp.MustCompile(`\blatest\b`),
		regexp.MustCompile(`\brecent\b`), regexp.MustCompile(`\bactive\b`),
		regexp.MustCompile(`\bpresent\b`), regexp.MustCompile(`\bup.?to.?date\b`),
		regexp.MustCompile(`\bmodern\b`),
	}

	historicalPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\bold\b`), regexp.MustCompile(`\bprevious\b`),
		regexp.MustCompile(`\bformer\b`), regexp.MustCompile(`\bhistory\b`),
		regexp.MustCompile(`\bpast\b`), regexp.MustCompile(`\barchive\b`),
		regexp.MustCompile(`\boriginal\b`), regexp.MustCompile(`\bbackup\b`),
		regexp.MustCompile(`\blegacy\b`),
	}
)

// DetectIntent classifies free-text query terms into an intent by keyword
// matching. The classification is advisory: callers may override it with an
// explicit intent. It never fails; unmatched input yields IntentBalanced.
func DetectIntent(query string) QueryIntent {
	lower := strings.ToLower(query)

	for _, p := range currentPatterns {
		if p.MatchString(lower) {
			return IntentCurrent
		}
	}
	for _, p := range historicalPatterns {
		if p.MatchString(lower) {
			return IntentHistorical
		}
	}
	return IntentBalanced
}

// RawResult is one hit from the vector store before freshness ranking.
type RawResult struct {
	// RecordID identifies the matched index record.
	RecordID string

	// Similarity is the vector similarity, pre-normalised to [0,1]
	// by the store (higher is closer).
	Similarity float64

	// ModifiedAt is the note's last-modified time, used to derive age.
	ModifiedAt time.Time
}

// QueryResult is one ranked retrieval result. Sequences of QueryResult are
// always ordered by descending BlendedScore, ties broken by descending
// Similarity, then ascending RecordID.
type QueryResult struct {
	// RecordID identifies the matched index record.
	RecordID string `json:"record_id"`

	// Similarity is the vector similarity component in [0,1].
	Similarity float64 `json:"similarity"`

	// AgeDays is the note age at query time, never negative.
	AgeDays float64 `json:"age_days"`

	// Freshness is exp(-decayRate * AgeDays), in (0,1].
	Freshness float64 `json:"freshness"`

	// BlendedScore is the weighted combination used for final ordering.
	BlendedScore float64 `json:"blended_score"`

	// Record carries the matched note metadata when hydrated by the
	// query service; zero-valued when ranking standalone raw results.
	Record IndexedRecord `json:"record"`

	// KeywordBoost is the additive boost from keyword matches, if any.
	KeywordBoost float64 `json:"keyword_boost,omitempty"`
}

// QueryOptions configures a retrieval call.
type QueryOptions struct {
	// Limit is the maximum number of results (default applied by service).
	Limit int

	// Folder filters results to a single folder when non-empty.
	Folder string

	// Intent selects a freshness preset. Empty means auto-detect.
	Intent QueryIntent

	// FreshnessWeight overrides the preset weight when non-nil.
	FreshnessWeight *float64

	// Keywords boost results whose title or body contain the given terms.
	Keywords []string

	// IncludeBody includes the full note body in results.
	IncludeBody bool
}
