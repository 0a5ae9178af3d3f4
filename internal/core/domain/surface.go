package domain

import "slices"

// Phase is the position of a search surface in its state machine.
// The typing and submitting tracks are orthogonal; Phase reports the
// most recent transition.
type Phase string

// Surface phases.
const (
	PhaseIdle                Phase = "idle"
	PhaseTyping              Phase = "typing"
	PhaseAwaitingSuggestions Phase = "awaiting_suggestions"
	PhaseSuggestionsShown    Phase = "suggestions_shown"
	PhaseSubmitting          Phase = "submitting"
	PhaseResultsFromCache    Phase = "results_from_cache"
	PhaseResultsFromNetwork  Phase = "results_from_network"
	PhaseFailed              Phase = "failed"
)

// String returns the string representation.
func (p Phase) String() string {
	return string(p)
}

// ResultSource records where the displayed results came from.
type ResultSource string

// Result sources.
const (
	ResultSourceNone    ResultSource = ""
	ResultSourceCache   ResultSource = "cache"
	ResultSourceNetwork ResultSource = "network"
)

// SurfaceState is the observable state of one search surface.
// Values handed to subscribers are snapshots and safe to keep.
type SurfaceState struct {
	// QueryText is the raw text field content.
	QueryText string

	// Suggestions holds the last accepted suggestion fetch.
	Suggestions     []SuggestionItem
	ShowSuggestions bool

	// RecentSearches is the last loaded history list.
	RecentSearches []RecentSearchEntry
	ShowRecent     bool

	// Results and ResultMeta are the displayed result set.
	Results    []ResultItem
	ResultMeta *SearchMeta

	// ResultsQuery is the query that produced Results.
	ResultsQuery string
	Source       ResultSource

	Loading bool
	Err     error
	Phase   Phase
}

// Clone returns a copy whose slices do not alias the receiver's.
func (s SurfaceState) Clone() SurfaceState {
	out := s
	out.Suggestions = slices.Clone(s.Suggestions)
	out.RecentSearches = slices.Clone(s.RecentSearches)
	out.Results = slices.Clone(s.Results)
	if s.ResultMeta != nil {
		meta := *s.ResultMeta
		out.ResultMeta = &meta
	}
	return out
}

// HasResults reports whether a result set is displayed.
func (s SurfaceState) HasResults() bool {
	return s.Source != ResultSourceNone
}
