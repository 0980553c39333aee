package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/notera-io/notera-cli/internal/core/domain"
)

// SearchNotesInput is the input schema for the search_notes tool.
type SearchNotesInput struct {
	Query       string   `json:"query" jsonschema:"the query text to search notes for"`
	Limit       int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Folder      string   `json:"folder,omitempty" jsonschema:"restrict results to one notes folder"`
	Intent      string   `json:"intent,omitempty" jsonschema:"freshness intent: current, balanced or historical (default: detected from the query)"`
	Keywords    []string `json:"keywords,omitempty" jsonschema:"keywords that boost matching results"`
	IncludeBody bool     `json:"include_body,omitempty" jsonschema:"return full note bodies instead of previews"`
}

// SearchNotesOutput is the output schema for the search_notes tool.
type SearchNotesOutput struct {
	Results []NoteResult `json:"results"`
	Count   int          `json:"count"`
}

// NoteResult represents a single search result.
type NoteResult struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Folder     string  `json:"folder"`
	Content    string  `json:"content"`
	Modified   string  `json:"modified,omitempty"`
	Score      float64 `json:"score"`
	Similarity float64 `json:"similarity"`
	Freshness  float64 `json:"freshness"`
}

// SyncNotesInput is the input schema for the sync_notes tool.
type SyncNotesInput struct {
	Full bool `json:"full,omitempty" jsonschema:"re-embed every note instead of only changed ones"`
}

// SyncNotesOutput is the output schema for the sync_notes tool.
type SyncNotesOutput struct {
	Mode      string `json:"mode"`
	Total     int    `json:"total"`
	Added     int    `json:"added"`
	Updated   int    `json:"updated"`
	Deleted   int    `json:"deleted"`
	Unchanged int    `json:"unchanged"`
	Failed    int    `json:"failed"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_notes",
		Description: "Search Apple Notes semantically with freshness-aware ranking",
	}, s.handleSearchNotes)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_notes",
		Description: "Sync the notes index with the latest export",
	}, s.handleSyncNotes)
}

// handleSearchNotes handles the search_notes tool invocation.
func (s *Server) handleSearchNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchNotesInput,
) (*mcp.CallToolResult, SearchNotesOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.QueryOptions{
		Limit:       limit,
		Folder:      input.Folder,
		Intent:      domain.QueryIntent(input.Intent),
		Keywords:    input.Keywords,
		IncludeBody: input.IncludeBody,
	}

	results, err := s.ports.Query.Query(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchNotesOutput{}, err
	}

	output := SearchNotesOutput{
		Results: make([]NoteResult, len(results)),
		Count:   len(results),
	}

	for i := range results {
		rec := results[i].Record
		modified := ""
		if !rec.ModifiedAt.IsZero() {
			modified = rec.ModifiedAt.Format(time.RFC3339)
		}
		output.Results[i] = NoteResult{
			ID:         rec.ID,
			Title:      rec.Title,
			Folder:     rec.Folder,
			Content:    rec.Plaintext,
			Modified:   modified,
			Score:      results[i].BlendedScore,
			Similarity: results[i].Similarity,
			Freshness:  results[i].Freshness,
		}
	}

	return nil, output, nil
}

// handleSyncNotes handles the sync_notes tool invocation.
func (s *Server) handleSyncNotes(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncNotesInput,
) (*mcp.CallToolResult, SyncNotesOutput, error) {
	if s.ports.Sync == nil {
		return nil, SyncNotesOutput{}, errors.New("mcp: sync service not configured")
	}

	mode := domain.SyncModeIncremental
	if input.Full {
		mode = domain.SyncModeFull
	}

	report, err := s.ports.Sync.Sync(ctx, mode)
	if err != nil {
		return nil, SyncNotesOutput{}, err
	}

	return nil, SyncNotesOutput{
		Mode:      string(report.Mode),
		Total:     report.Total,
		Added:     report.Added,
		Updated:   report.Updated,
		Deleted:   report.Deleted,
		Unchanged: report.Unchanged,
		Failed:    report.Failed,
	}, nil
}
