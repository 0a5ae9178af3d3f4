package mcp

import (
	"context"
	"sync"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// mockSurface answers submissions and keystrokes from canned data.
type mockSurface struct {
	response    *domain.SearchResponse
	suggestions []domain.SuggestionItem
	err         error

	filters domain.FilterSet
	state   domain.SurfaceState
}

func (m *mockSurface) ID() string { return "mock" }

func (m *mockSurface) OnQueryChange(text string) {
	m.state.QueryText = text
	if len(domain.NormalizeQuery(text)) >= 2 {
		m.state.Suggestions = m.suggestions
		m.state.ShowSuggestions = len(m.suggestions) > 0
	}
}

func (m *mockSurface) OnSubmit(query string) {
	m.state.QueryText = query
	if m.err != nil {
		m.state.Err = m.err
		return
	}
	if m.response != nil {
		m.state.Results = m.response.Results
		m.state.ResultMeta = m.response.Meta
		m.state.ResultsQuery = query
		m.state.Source = domain.ResultSourceNetwork
	}
}

func (m *mockSurface) OnSelectSuggestion(domain.SuggestionItem) {}

func (m *mockSurface) OnSelectRecent(domain.RecentSearchEntry) {}

func (m *mockSurface) OnClearHistory() {}

func (m *mockSurface) OnRemoveRecent(string) {}

func (m *mockSurface) OnFocus() {}

func (m *mockSurface) SetFilters(filters domain.FilterSet) { m.filters = filters }

func (m *mockSurface) State() domain.SurfaceState { return m.state }

func (m *mockSurface) Subscribe(func(domain.SurfaceState)) func() { return func() {} }

func (m *mockSurface) Wait() {}

func (m *mockSurface) Close() {}

// mockFactory hands out one mock surface and counts releases.
type mockFactory struct {
	surface  *mockSurface
	released int
}

func (m *mockFactory) NewSurface() driving.SearchSurface {
	if m.surface == nil {
		m.surface = &mockSurface{}
	}
	return m.surface
}

func (m *mockFactory) ReleaseSurface(driving.SearchSurface) {
	m.released++
}

// mockHistory is an in-memory driving.SearchHistory.
type mockHistory struct {
	mu      sync.Mutex
	entries []domain.RecentSearchEntry
	removed []string
	cleared bool
}

func (m *mockHistory) Record(_ context.Context, query string, resultCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append([]domain.RecentSearchEntry{{Query: query, ResultCount: resultCount}}, m.entries...)
}

func (m *mockHistory) List(context.Context) []domain.RecentSearchEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries
}

func (m *mockHistory) Remove(_ context.Context, query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, query)
}

func (m *mockHistory) Clear(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared = true
	m.entries = nil
}

func (m *mockHistory) Prune(context.Context) int { return 0 }

// mockCache is a driving.ResultCache holding at most one entry.
type mockCache struct {
	entry *domain.CacheEntry
	stats domain.CacheStats
}

func (m *mockCache) Put(context.Context, string, domain.FilterSet, []domain.ResultItem, *domain.SearchMeta) {
}

func (m *mockCache) Get(_ context.Context, query string, _ domain.FilterSet) *domain.CacheEntry {
	if m.entry == nil || m.entry.Query != query {
		return nil
	}
	return m.entry
}

func (m *mockCache) InvalidateAll(context.Context) {}

func (m *mockCache) Prune(context.Context) domain.PruneResult { return domain.PruneResult{} }

func (m *mockCache) Stats(context.Context) domain.CacheStats { return m.stats }
