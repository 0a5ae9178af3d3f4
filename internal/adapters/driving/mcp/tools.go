package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

const defaultResultLimit = 10

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query   string         `json:"query" jsonschema:"the search query"`
	Filters map[string]any `json:"filters,omitempty" jsonschema:"optional filters such as category or enterprise"`
	Limit   int            `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Query   string              `json:"query"`
	Cached  bool                `json:"cached"`
	Results []domain.ResultItem `json:"results"`
	Count   int                 `json:"count"`
	Total   int                 `json:"total,omitempty"`
}

// SuggestInput is the input schema for the suggest tool.
type SuggestInput struct {
	Text string `json:"text" jsonschema:"partial query text"`
}

// SuggestOutput is the output schema for the suggest tool.
type SuggestOutput struct {
	Suggestions []domain.SuggestionItem `json:"suggestions"`
}

// RecentSearchesInput is the input schema for the recent_searches tool.
type RecentSearchesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of entries to return (default all)"`
}

// RecentSearch is one recent search in tool output.
type RecentSearch struct {
	Query          string `json:"query"`
	ResultCount    int    `json:"result_count"`
	LastSearchedAt string `json:"last_searched_at" jsonschema:"RFC 3339 timestamp"`
}

// RecentSearchesOutput is the output schema for the recent_searches tool.
type RecentSearchesOutput struct {
	Searches []RecentSearch `json:"searches"`
}

// ClearHistoryInput is the input schema for the clear_history tool.
type ClearHistoryInput struct {
	Query string `json:"query,omitempty" jsonschema:"remove only this search; empty clears all"`
}

// ClearHistoryOutput is the output schema for the clear_history tool.
type ClearHistoryOutput struct {
	Removed string `json:"removed,omitempty"`
	Cleared bool   `json:"cleared"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the catalogue. Recent identical searches are served from the local cache.",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "suggest",
		Description: "Typeahead suggestions (products, categories, companies) for partial text",
	}, s.handleSuggest)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_searches",
		Description: "List recent searches, most recent first",
	}, s.handleRecentSearches)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "clear_history",
		Description: "Remove one recent search, or clear them all",
	}, s.handleClearHistory)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	query := domain.NormalizeQuery(input.Query)
	if query == "" {
		return nil, SearchOutput{}, fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}

	limit := input.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}

	surface := s.ports.Surfaces.NewSurface()
	defer s.ports.Surfaces.ReleaseSurface(surface)

	surface.SetFilters(domain.FilterSet(input.Filters))
	surface.OnSubmit(query)
	surface.Wait()

	state := surface.State()
	if state.Err != nil {
		return nil, SearchOutput{}, fmt.Errorf("search failed: %w", state.Err)
	}

	results := state.Results
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []domain.ResultItem{}
	}

	output := SearchOutput{
		Query:   state.ResultsQuery,
		Cached:  state.Source == domain.ResultSourceCache,
		Results: results,
		Count:   len(results),
	}
	if state.ResultMeta != nil {
		output.Total = state.ResultMeta.TotalResults
	}
	return nil, output, nil
}

// handleSuggest handles the suggest tool invocation.
func (s *Server) handleSuggest(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SuggestInput,
) (*mcp.CallToolResult, SuggestOutput, error) {
	surface := s.ports.Surfaces.NewSurface()
	defer s.ports.Surfaces.ReleaseSurface(surface)

	surface.OnQueryChange(input.Text)
	surface.Wait()

	suggestions := surface.State().Suggestions
	if suggestions == nil {
		suggestions = []domain.SuggestionItem{}
	}
	return nil, SuggestOutput{Suggestions: suggestions}, nil
}

// handleRecentSearches handles the recent_searches tool invocation.
func (s *Server) handleRecentSearches(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentSearchesInput,
) (*mcp.CallToolResult, RecentSearchesOutput, error) {
	entries := s.ports.History.List(ctx)
	if input.Limit > 0 && len(entries) > input.Limit {
		entries = entries[:input.Limit]
	}

	searches := make([]RecentSearch, len(entries))
	for i, e := range entries {
		searches[i] = RecentSearch{
			Query:          e.Query,
			ResultCount:    e.ResultCount,
			LastSearchedAt: e.LastSearchedAt.UTC().Format(time.RFC3339),
		}
	}
	return nil, RecentSearchesOutput{Searches: searches}, nil
}

// handleClearHistory handles the clear_history tool invocation.
func (s *Server) handleClearHistory(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ClearHistoryInput,
) (*mcp.CallToolResult, ClearHistoryOutput, error) {
	if input.Query != "" {
		s.ports.History.Remove(ctx, input.Query)
		return nil, ClearHistoryOutput{Removed: input.Query}, nil
	}

	s.ports.History.Clear(ctx)
	return nil, ClearHistoryOutput{Cleared: true}, nil
}
