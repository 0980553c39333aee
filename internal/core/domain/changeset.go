package domain

// SyncMode selects how the resolver treats existing index metadata.
type SyncMode string

const (
	// SyncModeIncremental diffs the current export against the index.
	SyncModeIncremental SyncMode = "incremental"

	// SyncModeFull ignores existing index metadata so every current note
	// is re-embedded and re-written. Deletion semantics are unchanged:
	// anything indexed but absent from the current export is still removed.
	SyncModeFull SyncMode = "full"
)

// ChangeSet is the minimal diff between the current export and the index.
// It is produced once per sync pass and discarded after being applied.
// The three sets are pairwise disjoint by note ID.
type ChangeSet struct {
	// ToAdd holds notes present in the export but not in the index.
	ToAdd []SourceNote

	// ToUpdate holds notes present in both whose content hash differs.
	ToUpdate []SourceNote

	// ToDelete holds IDs present in the index but absent from the export.
	ToDelete []string

	// Unchanged counts notes present in both with matching hashes.
	Unchanged int
}

// Empty reports whether the change set contains no work.
func (c ChangeSet) Empty() bool {
	return len(c.ToAdd) == 0 && len(c.ToUpdate) == 0 && len(c.ToDelete) == 0
}

// Changed returns the notes requiring embedding, additions first.
func (c ChangeSet) Changed() []SourceNote {
	changed := make([]SourceNote, 0, len(c.ToAdd)+len(c.ToUpdate))
	changed = append(changed, c.ToAdd...)
	changed = append(changed, c.ToUpdate...)
	return changed
}
