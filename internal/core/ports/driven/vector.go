package driven

import (
	"context"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// VectorStore persists indexed records and answers similarity queries.
//
// The store is an explicit handle with a lifecycle: the orchestration layer
// opens it, passes it into sync and query services, and closes it on
// shutdown. There is no ambient global database.
//
// A read immediately following a write must see the write.
type VectorStore interface {
	// Upsert writes a record, replacing any existing record with the same
	// ID. The write of hash, embedding and synced-at is a single logical
	// update: a record is never visible half-written.
	Upsert(ctx context.Context, record domain.IndexedRecord) error

	// Delete removes a record by ID. Deleting an absent ID is not an error.
	Delete(ctx context.Context, id string) error

	// Search returns the k most similar records to the query vector,
	// with similarity pre-normalised to [0,1] (higher is closer).
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Metadata returns the id -> content hash mapping for every record,
	// used by the resolver for change detection.
	Metadata(ctx context.Context) (map[string]string, error)

	// Stats returns summary statistics about the index.
	Stats(ctx context.Context) (*IndexStats, error)

	// Close releases resources.
	Close() error
}

// VectorHit represents one similarity search result.
type VectorHit struct {
	// Record is the matched index record. Embedding may be omitted by
	// stores that cannot return vectors cheaply.
	Record domain.IndexedRecord

	// Similarity is the similarity score in [0,1].
	Similarity float64
}

// IndexStats summarises the state of the index.
type IndexStats struct {
	// TotalNotes is the number of records in the index.
	TotalNotes int `json:"total_notes"`

	// Folders maps folder name to record count.
	Folders map[string]int `json:"folders"`

	// LastSync is the most recent synced-at timestamp, zero if empty.
	LastSync time.Time `json:"last_sync"`
}
