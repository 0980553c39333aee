package driven

import (
	"context"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// NoteExporter produces the current full set of notes from the note source.
// Each export cycle returns the complete current state; the sync service
// treats it as the new ground truth and diffs it against the index.
//
// The export mechanism itself (OS automation, file drops, etc.) is the
// adapter's concern. The core only sees SourceNotes with content hashes
// already computed.
type NoteExporter interface {
	// ExportAll returns every note currently in the source.
	// The result is not guaranteed to be deduplicated; the resolver
	// rejects duplicate IDs as an export bug.
	ExportAll(ctx context.Context) ([]domain.SourceNote, error)

	// Validate checks the exporter is ready to produce notes
	// (export file present and parseable, source reachable).
	Validate(ctx context.Context) error
}
