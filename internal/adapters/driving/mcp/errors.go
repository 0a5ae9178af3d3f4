// Package mcp provides an MCP (Model Context Protocol) server adapter for Sercha.
// It lets AI assistants search the catalogue and manage recent searches.
package mcp

import "errors"

// ErrMissingSurfaces is returned when the surface factory is not provided.
var ErrMissingSurfaces = errors.New("mcp: surface factory is required")

// ErrMissingHistory is returned when the search history is not provided.
var ErrMissingHistory = errors.New("mcp: search history is required")
