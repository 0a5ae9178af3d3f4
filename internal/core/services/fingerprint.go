package services

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// Key layout inside the key-value store.
const (
	cacheKeyPrefix = "search:cache:"
	historyKey     = "search:history"
)

// Fingerprint derives the cache address of a (query, filters) pair.
//
// The query is trimmed and the filter set is serialised with
// encoding/json, which writes map keys in sorted order at every nesting
// level, so {sort:"a", city:"X"} and {city:"X", sort:"a"} hash alike.
// Empty and nil filter sets are equivalent.
func Fingerprint(query string, filters domain.FilterSet) (string, error) {
	if len(filters) == 0 {
		filters = nil
	}

	raw, err := json.Marshal(map[string]any{
		"query":   domain.NormalizeQuery(query),
		"filters": filters,
	})
	if err != nil {
		return "", fmt.Errorf("canonicalise filters: %w", err)
	}

	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

func cacheKey(fingerprint string) string {
	return cacheKeyPrefix + fingerprint
}
