package driving

import (
	"context"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// SearchHistory is the rolling, deduplicated list of recent searches.
// Like ResultCache it never returns errors.
type SearchHistory interface {
	// Record moves query to the front with the given result count.
	Record(ctx context.Context, query string, resultCount int)

	// List returns entries most recent first, dropping expired ones.
	List(ctx context.Context) []domain.RecentSearchEntry

	// Remove deletes the entry for the trimmed query, if any.
	Remove(ctx context.Context, query string)

	// Clear empties the list.
	Clear(ctx context.Context)

	// Prune drops expired entries and returns how many were removed.
	Prune(ctx context.Context) int
}
