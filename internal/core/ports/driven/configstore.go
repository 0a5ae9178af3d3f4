package driven

// ConfigStore holds configuration as flat dot-notation keys matching the
// TOML tables, so ttl under [cache] is "cache.ttl". Values keep whatever
// type the decoder produced; SettingsService interprets them.
type ConfigStore interface {
	// Lookup returns the raw value stored under key.
	Lookup(key string) (any, bool)

	// Update merges values into the configuration and persists it once.
	// On error the in-memory configuration is left unchanged.
	Update(values map[string]any) error

	// Reload discards the in-memory configuration and reads it again.
	Reload() error

	// Path returns where the configuration lives.
	Path() string
}
