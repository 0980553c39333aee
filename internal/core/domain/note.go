package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// ContentHashLength is the number of hex characters kept from the SHA-256
// digest when storing a content hash. It must stay fixed for the lifetime
// of an index: changing it invalidates every stored hash and forces a
// full re-sync.
const ContentHashLength = 16

// SourceNote represents one note as exported from the note source.
// The exporter produces the full current set on every export cycle;
// a SourceNote is never mutated after capture.
type SourceNote struct {
	// ID is the stable external identifier assigned by the note source.
	ID string `json:"id"`

	// Title is the note title.
	Title string `json:"title"`

	// Plaintext is the note body with all markup stripped.
	Plaintext string `json:"plaintext,omitempty"`

	// Folder is the grouping label the note lives under.
	Folder string `json:"folder"`

	// CreatedAt is when the note was created in the source.
	CreatedAt time.Time `json:"created_at"`

	// ModifiedAt is when the note was last modified in the source.
	ModifiedAt time.Time `json:"modified_at"`

	// ContentHash is the truncated digest of the normalised title and body,
	// used for change detection without comparing full content.
	ContentHash string `json:"content_hash"`
}

// IndexedRecord represents one row in the persisted vector index.
// It is owned exclusively by the sync pass: mutated only by upsert and
// delete, never during query reads. Its ContentHash always equals the
// hash of the SourceNote it was derived from at last sync.
type IndexedRecord struct {
	SourceNote

	// Embedding is the vector representation of the note content.
	// Its length is fixed by the embedding model in use.
	Embedding []float32 `json:"-"`

	// SyncedAt is when the record was last written to the index.
	SyncedAt time.Time `json:"synced_at"`
}

// NormalizeContent canonicalises note text for hashing: line endings are
// normalised to LF and outer whitespace is stripped. Identical logical
// content always normalises to identical bytes.
func NormalizeContent(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}

// ComputeContentHash derives the change-detection hash for a note from its
// title and plaintext body. Both inputs are normalised first, so formatting
// differences that don't change content don't change the hash.
func ComputeContentHash(title, plaintext string) string {
	canonical := NormalizeContent(title) + "\n\n" + NormalizeContent(plaintext)
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])[:ContentHashLength]
}
