package driving

import "github.com/custodia-labs/sercha-client/internal/core/domain"

// SearchSurface is one search-capable screen's controller. UI adapters
// forward input events to it and render the states it publishes.
// Event methods never block on I/O.
type SearchSurface interface {
	// ID identifies the surface in logs.
	ID() string

	// OnQueryChange applies a keystroke.
	OnQueryChange(text string)

	// OnSubmit submits query, or the current text when query is empty.
	OnSubmit(query string)

	// OnSelectSuggestion submits a suggestion.
	OnSelectSuggestion(item domain.SuggestionItem)

	// OnSelectRecent re-issues a recent search.
	OnSelectRecent(entry domain.RecentSearchEntry)

	// OnClearHistory empties the recent-search history.
	OnClearHistory()

	// OnRemoveRecent removes one recent search.
	OnRemoveRecent(query string)

	// OnFocus loads recent searches for the empty-state panel.
	OnFocus()

	// SetFilters sets the filter set used by later submissions.
	SetFilters(filters domain.FilterSet)

	// State returns a snapshot of the observable state.
	State() domain.SurfaceState

	// Subscribe registers a render callback invoked with every new state.
	// The returned function unsubscribes.
	Subscribe(fn func(domain.SurfaceState)) func()

	// Wait blocks until all in-flight work has settled.
	Wait()

	// Close cancels pending timers and in-flight requests.
	Close()
}

// SurfaceFactory hands out search surfaces that share one result cache
// and history.
type SurfaceFactory interface {
	// NewSurface creates a surface. Release it when the screen goes away.
	NewSurface() SearchSurface

	// ReleaseSurface closes the surface and forgets it.
	ReleaseSurface(s SearchSurface)
}
