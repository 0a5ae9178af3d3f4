package domain

import "time"

// CacheEntry is a previously fetched result page for one
// (query, filter set) combination.
type CacheEntry struct {
	// Fingerprint is the deterministic key derived from the normalised
	// query and the canonicalised filter set.
	Fingerprint string `json:"fingerprint"`

	// Query is the original search term, kept for diagnostics.
	Query string `json:"query"`

	// Filters is echoed back as given to Put.
	Filters FilterSet `json:"filters,omitempty"`

	// Results are stored in the order received.
	Results []ResultItem `json:"results"`

	// Meta is optional.
	Meta *SearchMeta `json:"meta,omitempty"`

	// StoredAt is the creation time used for TTL checks.
	StoredAt time.Time `json:"storedAt"`
}

// Expired reports whether the entry is older than ttl at now.
// An entry exactly ttl old is still fresh.
func (e CacheEntry) Expired(now time.Time, ttl time.Duration) bool {
	return now.Sub(e.StoredAt) > ttl
}

// CacheStats summarises the stored result cache.
type CacheStats struct {
	Entries int
	Expired int
}

// PruneResult reports what a cache sweep removed.
type PruneResult struct {
	Expired int
	Evicted int
}

// Total returns the number of entries removed.
func (r PruneResult) Total() int {
	return r.Expired + r.Evicted
}
