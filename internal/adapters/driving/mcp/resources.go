package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// uriScheme is the custom URI scheme for Notera resources.
const uriScheme = "notera://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Index statistics: note counts per folder and last sync time",
		MIMEType:    "application/json",
	}, s.handleStatusResource)
}

// statusInfo is the JSON shape of the status resource.
type statusInfo struct {
	TotalNotes int            `json:"total_notes"`
	Folders    map[string]int `json:"folders"`
	LastSync   string         `json:"last_sync,omitempty"`
	Running    bool           `json:"sync_running"`
}

// handleStatusResource returns index-level statistics.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	info := statusInfo{Folders: map[string]int{}}

	if s.ports.Store != nil {
		stats, err := s.ports.Store.Stats(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading index stats: %w", err)
		}
		info.TotalNotes = stats.TotalNotes
		if stats.Folders != nil {
			info.Folders = stats.Folders
		}
		if !stats.LastSync.IsZero() {
			info.LastSync = stats.LastSync.Format(time.RFC3339)
		}
	}

	if s.ports.Sync != nil {
		info.Running = s.ports.Sync.Status().Running
	}

	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling status: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
