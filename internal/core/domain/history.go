package domain

import "time"

// RecentSearchEntry is one row of the recent-search history.
type RecentSearchEntry struct {
	// Query is the normalised search term; unique within the list.
	Query string `json:"query"`

	// LastSearchedAt is when the query last executed.
	LastSearchedAt time.Time `json:"lastSearchedAt"`

	// ResultCount comes from the most recent execution.
	ResultCount int `json:"resultCount"`
}

// Expired reports whether the entry is older than ttl at now.
func (e RecentSearchEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.LastSearchedAt) > ttl
}
