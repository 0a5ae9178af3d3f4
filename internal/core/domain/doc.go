// Package domain holds the values the search client is built around:
// cached result pages (CacheEntry), recent searches (RecentSearchEntry),
// typeahead suggestions (SuggestionItem) and the observable state of a
// search surface (SurfaceState), along with settings and sentinel errors.
//
// It imports only the standard library; every other package may import it.
package domain
