package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for Sercha resources.
	uriScheme = "sercha://"

	jsonMIME = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "history",
		Name:        "recent-searches",
		Description: "Recent searches, most recent first",
		MIMEType:    jsonMIME,
	}, s.handleHistoryResource)

	if s.ports.Cache == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cache/stats",
		Name:        "cache-stats",
		Description: "Number of cached result pages and how many have expired",
		MIMEType:    jsonMIME,
	}, s.handleCacheStatsResource)

	// Reads the cache only; a miss never reaches the network.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cache/results/{query}",
		Name:        "cached-results",
		Description: "Cached unfiltered results for a query, if still fresh",
		MIMEType:    jsonMIME,
	}, s.handleCachedResultsResource)
}

// handleHistoryResource returns the recent-search list.
func (s *Server) handleHistoryResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	entries := s.ports.History.List(ctx)
	if entries == nil {
		entries = []domain.RecentSearchEntry{}
	}
	return jsonResource(req.Params.URI, entries)
}

// handleCacheStatsResource returns cache counters.
func (s *Server) handleCacheStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats := s.ports.Cache.Stats(ctx)
	return jsonResource(req.Params.URI, map[string]int{
		"entries": stats.Entries,
		"expired": stats.Expired,
	})
}

// handleCachedResultsResource returns a fresh cached page for a query.
func (s *Server) handleCachedResultsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	query := extractCachedQuery(req.Params.URI)
	if query == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	entry := s.ports.Cache.Get(ctx, query, nil)
	if entry == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, entry)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: jsonMIME,
			Text:     string(data),
		}},
	}, nil
}

// extractCachedQuery extracts the query from a URI like
// sercha://cache/results/{query}. The query may be percent-encoded.
func extractCachedQuery(uri string) string {
	const prefix = uriScheme + "cache/results/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	query, err := url.PathUnescape(strings.TrimPrefix(uri, prefix))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(query)
}
