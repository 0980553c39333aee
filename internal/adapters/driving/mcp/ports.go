package mcp

import (
	"github.com/notera-io/notera-cli/internal/core/ports/driven"
	"github.com/notera-io/notera-cli/internal/core/ports/driving"
)

// Ports aggregates the port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Query answers semantic queries over the index.
	Query driving.QueryService

	// Sync runs sync passes. Optional; without it the sync tool is
	// registered but reports an error.
	Sync driving.SyncRunner

	// Store exposes index statistics for the status resource. Optional.
	Store driven.VectorStore
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Query == nil {
		return ErrMissingQueryService
	}
	// Sync and Store are optional
	return nil
}
