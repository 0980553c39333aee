// Package exportfile provides a note exporter that reads notes from a JSON
// export file written by the OS-level Notes export step.
package exportfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/notera-io/notera-cli/internal/core/domain"
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/logger"
)

// Ensure Exporter implements the interface.
var _ driven.NoteExporter = (*Exporter)(nil)

// DefaultExportPath is where the export step writes its output by default.
func DefaultExportPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".notera", "export", "all_notes.json")
	}
	return filepath.Join(home, ".notera", "export", "all_notes.json")
}

// exportedNote is the JSON shape the export step produces. Field names
// follow the exporter's camelCase convention.
type exportedNote struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Body             string `json:"body"`
	Plaintext        string `json:"plaintext"`
	Folder           string `json:"folder"`
	CreationDate     string `json:"creationDate"`
	ModificationDate string `json:"modificationDate"`
	ContentHash      string `json:"content_hash"`
}

// Exporter reads source notes from a JSON export file.
type Exporter struct {
	path string
}

// New creates an exporter reading from the given file path. An empty path
// falls back to the default export location.
func New(path string) *Exporter {
	if path == "" {
		path = DefaultExportPath()
	}
	return &Exporter{path: path}
}

// Path returns the export file location this exporter reads.
func (e *Exporter) Path() string {
	return e.path
}

// Validate checks the export file exists and is a regular file.
func (e *Exporter) Validate(_ context.Context) error {
	info, err := os.Stat(e.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: export file %s (run the export step first)", domain.ErrNotFound, e.path)
		}
		return fmt.Errorf("stat export file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: export path %s is a directory", domain.ErrInvalidInput, e.path)
	}
	return nil
}

// ExportAll reads and parses every note from the export file. Notes missing
// a content hash get one computed from their normalized title and body.
func (e *Exporter) ExportAll(_ context.Context) ([]domain.SourceNote, error) {
	data, err := os.ReadFile(e.path)
	if err != nil {
		return nil, fmt.Errorf("read export file: %w", err)
	}

	var exported []exportedNote
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("parse export file %s: %w", e.path, err)
	}

	notes := make([]domain.SourceNote, 0, len(exported))
	for i, raw := range exported {
		if raw.ID == "" {
			return nil, fmt.Errorf("%w: note %d has no id", domain.ErrInvalidInput, i)
		}

		body := raw.Plaintext
		if body == "" {
			body = raw.Body
		}

		hash := raw.ContentHash
		if hash == "" {
			hash = domain.ComputeContentHash(raw.Name, body)
		}

		notes = append(notes, domain.SourceNote{
			ID:          raw.ID,
			Title:       raw.Name,
			Plaintext:   body,
			Folder:      raw.Folder,
			CreatedAt:   parseExportTime(raw.CreationDate),
			ModifiedAt:  parseExportTime(raw.ModificationDate),
			ContentHash: hash,
		})
	}

	logger.Debug("Loaded %d notes from %s", len(notes), e.path)
	return notes, nil
}

// parseExportTime parses the ISO timestamps the export step emits. A missing
// or malformed timestamp yields the zero time rather than failing the whole
// export.
func parseExportTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	logger.Debug("Unparseable timestamp in export: %q", s)
	return time.Time{}
}
