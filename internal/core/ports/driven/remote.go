package driven

import (
	"context"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// SuggestionAPI fetches typeahead suggestions.
// Implementations must be idempotent and safe to call repeatedly
// with the same query.
type SuggestionAPI interface {
	GetSuggestions(ctx context.Context, query string, limit int) ([]domain.SuggestionItem, error)
}

// SearchAPI runs a live search against the remote API.
// It may fail with a transport or server error.
type SearchAPI interface {
	Search(ctx context.Context, query string, filters domain.FilterSet) (*domain.SearchResponse, error)
}
