package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateID indicates the export contains two notes with the same
	// ID. This is an upstream export bug and fails the whole sync pass
	// rather than silently picking one of the duplicates.
	ErrDuplicateID = errors.New("duplicate note id in export")

	// ErrScoreRange indicates a similarity score outside [0,1] was passed
	// to the ranker. This is a collaborator contract violation, usually a
	// distance-metric mismatch upstream.
	ErrScoreRange = errors.New("similarity score out of range")

	// ErrDimensionMismatch indicates an embedding's length does not match
	// the index's fixed dimensionality. The record is rejected before any
	// index write so a malformed vector never reaches storage.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSyncInProgress indicates a sync pass is already running.
	ErrSyncInProgress = errors.New("sync in progress")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured or unreachable. Sync and semantic queries are disabled
	// without embeddings.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrIndexUnavailable indicates the vector store is not configured.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrIndexEmpty indicates the vector store has no records yet.
	// The caller should run a sync first.
	ErrIndexEmpty = errors.New("vector index empty")
)
