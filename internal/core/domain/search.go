package domain

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
)

// FilterSet is an opaque, serialisable set of search filters
// (city, district, sort, pagination, ...). The client never interprets
// it; it is only fingerprinted and echoed back to the remote API.
type FilterSet map[string]any

// Clone returns a shallow copy of the filter set.
// A nil filter set clones to nil.
func (f FilterSet) Clone() FilterSet {
	if f == nil {
		return nil
	}
	return maps.Clone(f)
}

// With returns a copy of the filter set with key set to value.
func (f FilterSet) With(key string, value any) FilterSet {
	out := f.Clone()
	if out == nil {
		out = make(FilterSet, 1)
	}
	out[key] = value
	return out
}

// ResultItem is a single result record exactly as returned by the remote API.
type ResultItem map[string]any

// titleKeys are tried in order when labelling a result for display.
var titleKeys = []string{"title", "name", "label", "id"}

// Title returns a display label for the item: the first non-empty string
// among the common title fields, or "" when none is present.
func (r ResultItem) Title() string {
	for _, k := range titleKeys {
		switch v := r[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case json.Number:
			return v.String()
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// SearchMeta carries optional metadata echoed from the remote API.
type SearchMeta struct {
	// TotalResults is the total number of matches reported by the API.
	TotalResults int `json:"totalResults"`

	// SearchTimeMs is the server-side search time in milliseconds.
	SearchTimeMs int64 `json:"searchTimeMs"`

	// Extra holds any additional fields the API returned.
	Extra map[string]any `json:"extra,omitempty"`
}

// SearchResponse is the payload of a live search.
type SearchResponse struct {
	// Results are kept in the order the API returned them.
	Results []ResultItem `json:"results"`

	// Meta is optional.
	Meta *SearchMeta `json:"meta,omitempty"`
}

// ResultCount returns the count recorded in history for this response:
// the reported total when present, otherwise the page size.
func (r SearchResponse) ResultCount() int {
	if r.Meta != nil && r.Meta.TotalResults > 0 {
		return r.Meta.TotalResults
	}
	return len(r.Results)
}

// NormalizeQuery trims surrounding whitespace. Case is preserved, so
// "Shoes" and "shoes" are distinct queries.
func NormalizeQuery(query string) string {
	return strings.TrimSpace(query)
}
