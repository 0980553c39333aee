package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/notera-io/notera-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store is a SQLite-backed vector store for indexed notes.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.notera/data/notes.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".notera", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "notes.db")

	// WAL mode so the daemon and ad-hoc queries can share the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Upsert inserts or replaces the record for a note in one statement, so a
// re-index never leaves a note half-written.
func (s *Store) Upsert(ctx context.Context, record domain.IndexedRecord) error {
	if record.ID == "" {
		return fmt.Errorf("%w: record has no id", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, title, plaintext, folder, created_at, modified_at, content_hash, embedding, synced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			plaintext = excluded.plaintext,
			folder = excluded.folder,
			created_at = excluded.created_at,
			modified_at = excluded.modified_at,
			content_hash = excluded.content_hash,
			embedding = excluded.embedding,
			synced_at = excluded.synced_at
	`, record.ID, record.Title, record.Plaintext, record.Folder,
		record.CreatedAt, record.ModifiedAt, record.ContentHash,
		float32SliceToBytes(record.Embedding), record.SyncedAt)

	if err != nil {
		return fmt.Errorf("upserting note: %w", err)
	}
	return nil
}

// Delete removes a note's record. Deleting an absent ID is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return nil
}

// Metadata returns the content hash of every indexed note, keyed by ID.
func (s *Store) Metadata(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, content_hash FROM notes")
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		meta[id] = hash
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating metadata: %w", err)
	}
	return meta, nil
}

// Search scores every stored embedding against the query vector by cosine
// similarity, normalised to [0,1], and returns the top k hits.
func (s *Store) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, plaintext, folder, created_at, modified_at, content_hash, embedding, synced_at
		FROM notes
	`)
	if err != nil {
		return nil, fmt.Errorf("querying notes: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}

		sim, err := cosineSimilarity(query, record.Embedding)
		if err != nil {
			return nil, fmt.Errorf("scoring %s: %w", record.ID, err)
		}

		hits = append(hits, driven.VectorHit{
			Record:     record,
			Similarity: sim,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating notes: %w", err)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Similarity != hits[j].Similarity {
			return hits[i].Similarity > hits[j].Similarity
		}
		return hits[i].Record.ID < hits[j].Record.ID
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Stats returns index-level counters for the status surface.
func (s *Store) Stats(ctx context.Context) (*driven.IndexStats, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT folder, COUNT(*) FROM notes GROUP BY folder")
	if err != nil {
		return nil, fmt.Errorf("querying folder stats: %w", err)
	}
	defer rows.Close()

	stats := &driven.IndexStats{Folders: make(map[string]int)}
	for rows.Next() {
		var folder string
		var count int
		if err := rows.Scan(&folder, &count); err != nil {
			return nil, fmt.Errorf("scanning folder stats: %w", err)
		}
		stats.Folders[folder] = count
		stats.TotalNotes += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folder stats: %w", err)
	}

	var lastSync sql.NullTime
	err = s.db.QueryRowContext(ctx, "SELECT MAX(synced_at) FROM notes").Scan(&lastSync)
	if err != nil {
		return nil, fmt.Errorf("querying last sync: %w", err)
	}
	if lastSync.Valid {
		stats.LastSync = lastSync.Time
	}

	return stats, nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}
		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// scanRecord scans an indexed record from *sql.Rows.
func scanRecord(rows *sql.Rows) (domain.IndexedRecord, error) {
	var record domain.IndexedRecord
	var embeddingBlob []byte
	var createdAt, modifiedAt, syncedAt sql.NullTime

	if err := rows.Scan(&record.ID, &record.Title, &record.Plaintext, &record.Folder,
		&createdAt, &modifiedAt, &record.ContentHash, &embeddingBlob, &syncedAt); err != nil {
		return domain.IndexedRecord{}, fmt.Errorf("scanning note: %w", err)
	}

	record.Embedding = bytesToFloat32Slice(embeddingBlob)
	if createdAt.Valid {
		record.CreatedAt = createdAt.Time
	}
	if modifiedAt.Valid {
		record.ModifiedAt = modifiedAt.Time
	}
	if syncedAt.Valid {
		record.SyncedAt = syncedAt.Time
	}

	return record, nil
}

// cosineSimilarity returns the cosine of the angle between a and b, shifted
// from [-1,1] into [0,1].
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: query has %d dimensions, record has %d",
			domain.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
