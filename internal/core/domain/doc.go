// Package domain defines the core business entities for Notera.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - SourceNote: One note as exported from the note source
//   - IndexedRecord: One row persisted in the vector index
//   - ChangeSet: The add/update/delete diff between export and index
//   - QueryResult: One ranked retrieval result
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
