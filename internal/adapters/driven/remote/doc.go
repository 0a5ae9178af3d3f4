// Package remote provides the HTTP client for the search and suggestion API.
//
// Requests are throttled with a token bucket and honour Retry-After on 429
// responses. Concurrent suggestion lookups for the same query share a single
// round trip.
package remote
