// Package redis provides a Redis-backed KeyValueStore so several clients on
// one machine or a small team can share the result cache and recent-search
// history. Keys are namespaced so the store can live beside other data in
// the same Redis database.
package redis
