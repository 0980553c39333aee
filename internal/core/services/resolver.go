package services

import (
	"fmt"
	"sort"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// ResolveChanges computes the minimal set of additions, updates and
// deletions needed to bring the index in line with the current export.
//
// It is a pure function: no I/O, no embedding calls. Every note in the
// export lands in exactly one of {unchanged, to-add, to-update}; every ID
// known to the index but absent from the export lands in to-delete.
//
// In full mode the index metadata is treated as empty, so every current
// note is re-added. Deletions are still resolved against the current
// export, so notes that vanished from the source are removed either way.
//
// Returns domain.ErrDuplicateID if the export contains the same note ID
// twice: that is an upstream export bug and must not be papered over by
// picking one of the duplicates.
func ResolveChanges(
	currentExport []domain.SourceNote,
	indexMeta map[string]string,
	mode domain.SyncMode,
) (domain.ChangeSet, error) {
	full := mode == domain.SyncModeFull

	var cs domain.ChangeSet
	seen := make(map[string]struct{}, len(currentExport))

	for _, note := range currentExport {
		if _, dup := seen[note.ID]; dup {
			return domain.ChangeSet{}, fmt.Errorf("%w: %q", domain.ErrDuplicateID, note.ID)
		}
		seen[note.ID] = struct{}{}

		hash, indexed := indexMeta[note.ID]
		switch {
		case full || !indexed:
			cs.ToAdd = append(cs.ToAdd, note)
		case hash != note.ContentHash:
			cs.ToUpdate = append(cs.ToUpdate, note)
		default:
			cs.Unchanged++
		}
	}

	for id := range indexMeta {
		if _, exists := seen[id]; !exists {
			cs.ToDelete = append(cs.ToDelete, id)
		}
	}

	// Map iteration order is random; keep deletions deterministic.
	sort.Strings(cs.ToDelete)

	return cs, nil
}
