package driving

import (
	"context"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// SyncRunner coordinates note synchronisation into the vector index.
type SyncRunner interface {
	// Sync runs one sync pass in the given mode and returns a report.
	// Only one pass may run at a time; a concurrent call fails with
	// domain.ErrSyncInProgress.
	Sync(ctx context.Context, mode domain.SyncMode) (*SyncReport, error)

	// Status returns a snapshot of the currently running pass, or an
	// idle status if no pass is running.
	Status() SyncStatus
}

// SyncReport summarises a completed sync pass. Per-note failures are
// reported as counts rather than failing the whole pass: a partially
// successful sync is still useful.
type SyncReport struct {
	// ID uniquely identifies this sync run.
	ID string `json:"id"`

	// Mode is the sync mode that was run.
	Mode domain.SyncMode `json:"mode"`

	// Total is the number of notes in the export.
	Total int `json:"total"`

	// Added, Updated, Deleted count successful index mutations.
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Deleted int `json:"deleted"`

	// Unchanged counts notes whose hash matched the index.
	Unchanged int `json:"unchanged"`

	// Failed counts notes that could not be embedded or written.
	Failed int `json:"failed"`

	// Errors holds one message per failed note.
	Errors []string `json:"errors,omitempty"`

	// StartedAt and FinishedAt bound the pass.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// SyncStatus is a point-in-time snapshot of a sync pass.
type SyncStatus struct {
	// Running indicates a pass is currently in progress.
	Running bool `json:"running"`

	// NotesProcessed is the count of notes handled so far.
	NotesProcessed int `json:"notes_processed"`

	// ErrorCount is the number of per-note failures so far.
	ErrorCount int `json:"error_count"`
}
