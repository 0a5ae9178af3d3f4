// Package services holds the client's core logic: query fingerprinting,
// the fail-open result cache and recent-search history, the debounced
// search surface, settings and the maintenance scheduler. Everything
// here talks to storage and the remote API through driven ports only.
package services
