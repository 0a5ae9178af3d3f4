package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyCacheTTL         = "cache.ttl"
	keyCacheMaxEntries  = "cache.max_entries"
	keyCacheSweep       = "cache.sweep_interval"
	keyHistoryTTL       = "history.ttl"
	keyHistoryLimit     = "history.limit"
	keySuggestDebounce  = "suggest.debounce"
	keySuggestMinLength = "suggest.min_length"
	keySuggestLimit     = "suggest.limit"
	keyAPIBaseURL       = "api.base_url"
	keyAPITimeout       = "api.timeout"
	keyAPIRateLimit     = "api.rate_limit"
	keyAPIBurst         = "api.burst"
	keyStorageBackend   = "storage.backend"
	keyStorageDataDir   = "storage.data_dir"
	keyStorageRedisAddr = "storage.redis_addr"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings. Missing, malformed or
// non-positive values fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Cache: domain.CacheSettings{
			TTL:           s.getDuration(keyCacheTTL, defaults.Cache.TTL),
			MaxEntries:    s.getInt(keyCacheMaxEntries, defaults.Cache.MaxEntries),
			SweepInterval: s.getDuration(keyCacheSweep, defaults.Cache.SweepInterval),
		},
		History: domain.HistorySettings{
			TTL:   s.getDuration(keyHistoryTTL, defaults.History.TTL),
			Limit: s.getInt(keyHistoryLimit, defaults.History.Limit),
		},
		Suggest: domain.SuggestSettings{
			Debounce:  s.getDuration(keySuggestDebounce, defaults.Suggest.Debounce),
			MinLength: s.getInt(keySuggestMinLength, defaults.Suggest.MinLength),
			Limit:     s.getInt(keySuggestLimit, defaults.Suggest.Limit),
		},
		API: domain.APISettings{
			BaseURL:   s.getString(keyAPIBaseURL, defaults.API.BaseURL),
			Timeout:   s.getDuration(keyAPITimeout, defaults.API.Timeout),
			RateLimit: s.getFloat(keyAPIRateLimit, defaults.API.RateLimit),
			Burst:     s.getInt(keyAPIBurst, defaults.API.Burst),
		},
		Storage: domain.StorageSettings{
			Backend:   s.getBackend(defaults.Storage.Backend),
			DataDir:   s.getString(keyStorageDataDir, ""), // empty means ~/.sercha/data
			RedisAddr: s.getString(keyStorageRedisAddr, defaults.Storage.RedisAddr),
		},
	}

	return settings, nil
}

// Save persists application settings in a single write.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := map[string]any{
		keyCacheTTL:         settings.Cache.TTL.String(),
		keyCacheMaxEntries:  settings.Cache.MaxEntries,
		keyCacheSweep:       settings.Cache.SweepInterval.String(),
		keyHistoryTTL:       settings.History.TTL.String(),
		keyHistoryLimit:     settings.History.Limit,
		keySuggestDebounce:  settings.Suggest.Debounce.String(),
		keySuggestMinLength: settings.Suggest.MinLength,
		keySuggestLimit:     settings.Suggest.Limit,
		keyAPIBaseURL:       settings.API.BaseURL,
		keyAPITimeout:       settings.API.Timeout.String(),
		keyAPIRateLimit:     settings.API.RateLimit,
		keyAPIBurst:         settings.API.Burst,
		keyStorageBackend:   settings.Storage.Backend.String(),
		keyStorageDataDir:   settings.Storage.DataDir,
		keyStorageRedisAddr: settings.Storage.RedisAddr,
	}
	if err := s.configStore.Update(values); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	if raw, ok := s.lookupString(keyStorageBackend); ok {
		if backend := domain.StorageBackend(raw); !backend.IsValid() {
			return fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, raw)
		}
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Reload re-reads the config file and returns the resulting settings.
func (s *SettingsService) Reload() (*domain.AppSettings, error) {
	if err := s.configStore.Reload(); err != nil {
		return nil, fmt.Errorf("reload config: %w", err)
	}
	return s.Get()
}

// ConfigPath returns the path of the backing config file.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) lookupString(key string) (string, bool) {
	v, _ := s.configStore.Lookup(key)
	return asString(v)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.lookupString(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	v, _ := s.configStore.Lookup(key)
	if val, ok := asInt(v); ok && val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	v, _ := s.configStore.Lookup(key)
	if val, ok := asFloat(v); ok && val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	v, _ := s.configStore.Lookup(key)
	if d, ok := asDuration(v); ok && d > 0 {
		return d
	}
	return defaultVal
}

func (s *SettingsService) getBackend(defaultVal domain.StorageBackend) domain.StorageBackend {
	if raw, ok := s.lookupString(keyStorageBackend); ok {
		if backend := domain.StorageBackend(raw); backend.IsValid() {
			return backend
		}
	}
	return defaultVal
}
