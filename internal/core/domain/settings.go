package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// StorageBackend selects the durable key-value store implementation.
type StorageBackend string

// Available storage backends.
const (
	// StorageSQLite is a local SQLite file (default).
	StorageSQLite StorageBackend = "sqlite"

	// StorageMemory keeps everything in process memory; nothing survives exit.
	StorageMemory StorageBackend = "memory"

	// StorageRedis shares the cache between processes through Redis.
	StorageRedis StorageBackend = "redis"
)

// AllStorageBackends returns the supported backends, default first.
func AllStorageBackends() []StorageBackend {
	return []StorageBackend{StorageSQLite, StorageMemory, StorageRedis}
}

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	switch b {
	case StorageSQLite, StorageMemory, StorageRedis:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b StorageBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b StorageBackend) Description() string {
	switch b {
	case StorageSQLite:
		return "SQLite (local file)"
	case StorageMemory:
		return "Memory (not persisted)"
	case StorageRedis:
		return "Redis (shared)"
	default:
		return unknownDescription
	}
}

// CacheSettings tunes the result cache.
type CacheSettings struct {
	// TTL is the freshness window of a cached result page.
	TTL time.Duration

	// MaxEntries caps the number of stored pages; enforced by the sweep.
	MaxEntries int

	// SweepInterval is how often the background sweep runs.
	SweepInterval time.Duration
}

// HistorySettings tunes the recent-search history.
type HistorySettings struct {
	// TTL is how long an entry survives without being searched again.
	TTL time.Duration

	// Limit is the maximum number of entries kept.
	Limit int
}

// SuggestSettings tunes typeahead suggestions.
type SuggestSettings struct {
	// Debounce is the idle delay before a suggestion fetch fires.
	Debounce time.Duration

	// MinLength is the minimum trimmed query length that fetches suggestions.
	MinLength int

	// Limit is the number of suggestions requested.
	Limit int
}

// APISettings configures the remote search API client.
type APISettings struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	Burst     int
}

// StorageSettings configures the durable store.
type StorageSettings struct {
	Backend   StorageBackend
	DataDir   string
	RedisAddr string
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	Cache   CacheSettings
	History HistorySettings
	Suggest SuggestSettings
	API     APISettings
	Storage StorageSettings
}

// Default values. The TTLs are product-tunable and exposed through config.
const (
	DefaultCacheTTL           = 30 * time.Minute
	DefaultCacheMaxEntries    = 500
	DefaultCacheSweepInterval = 10 * time.Minute
	DefaultHistoryTTL         = 7 * 24 * time.Hour
	DefaultHistoryLimit       = 10
	DefaultSuggestDebounce    = 300 * time.Millisecond
	DefaultSuggestMinLength   = 2
	DefaultSuggestLimit       = 8
	DefaultAPIBaseURL         = "http://localhost:8080"
	DefaultAPITimeout         = 15 * time.Second
	DefaultAPIRateLimit       = 5.0
	DefaultAPIBurst           = 10
	DefaultRedisAddr          = "localhost:6379"
)

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Cache: CacheSettings{
			TTL:           DefaultCacheTTL,
			MaxEntries:    DefaultCacheMaxEntries,
			SweepInterval: DefaultCacheSweepInterval,
		},
		History: HistorySettings{
			TTL:   DefaultHistoryTTL,
			Limit: DefaultHistoryLimit,
		},
		Suggest: SuggestSettings{
			Debounce:  DefaultSuggestDebounce,
			MinLength: DefaultSuggestMinLength,
			Limit:     DefaultSuggestLimit,
		},
		API: APISettings{
			BaseURL:   DefaultAPIBaseURL,
			Timeout:   DefaultAPITimeout,
			RateLimit: DefaultAPIRateLimit,
			Burst:     DefaultAPIBurst,
		},
		Storage: StorageSettings{
			Backend:   StorageSQLite,
			RedisAddr: DefaultRedisAddr,
		},
	}
}

// Validate checks the settings for values no component can run with.
func (s AppSettings) Validate() error {
	if !s.Storage.Backend.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedBackend, s.Storage.Backend)
	}
	if s.Cache.TTL <= 0 {
		return fmt.Errorf("%w: cache ttl must be positive", ErrInvalidInput)
	}
	if s.History.TTL <= 0 {
		return fmt.Errorf("%w: history ttl must be positive", ErrInvalidInput)
	}
	if s.History.Limit <= 0 {
		return fmt.Errorf("%w: history limit must be positive", ErrInvalidInput)
	}
	if s.Suggest.Debounce < 0 {
		return fmt.Errorf("%w: suggest debounce must not be negative", ErrInvalidInput)
	}
	if s.API.BaseURL == "" {
		return fmt.Errorf("%w: api base_url is required", ErrInvalidInput)
	}
	return nil
}
