package driven

import "context"

// KeyValueStore is a durable, string-keyed store.
// Every call may fail (disk full, serialisation error, closed store);
// callers must treat it as fallible. Each key is written atomically.
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// ListKeys returns every key starting with prefix, in ascending order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)

	// Close releases resources.
	Close() error
}
