package mcp

import (
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Surfaces runs searches and suggestion fetches.
	Surfaces driving.SurfaceFactory

	// History backs the recent-search tools.
	History driving.SearchHistory

	// Cache backs the cache resources. Optional.
	Cache driving.ResultCache
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Surfaces == nil {
		return ErrMissingSurfaces
	}
	if p.History == nil {
		return ErrMissingHistory
	}
	return nil
}
