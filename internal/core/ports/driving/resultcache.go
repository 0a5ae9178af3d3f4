package driving

import (
	"context"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// ResultCache is the fast path for previously fetched result pages.
// None of its methods return errors: storage failures degrade to a miss
// or a no-op and are only logged.
type ResultCache interface {
	// Put stores results for the (query, filters) fingerprint,
	// overwriting any existing entry.
	Put(ctx context.Context, query string, filters domain.FilterSet, results []domain.ResultItem, meta *domain.SearchMeta)

	// Get returns the fresh entry for (query, filters), or nil.
	// An expired entry is deleted and reported as a miss.
	Get(ctx context.Context, query string, filters domain.FilterSet) *domain.CacheEntry

	// InvalidateAll drops every cache entry.
	InvalidateAll(ctx context.Context)

	// Prune deletes expired entries and evicts the oldest entries beyond
	// the configured maximum.
	Prune(ctx context.Context) domain.PruneResult

	// Stats counts stored and expired entries.
	Stats(ctx context.Context) domain.CacheStats
}
