package memory

import (
	"maps"
	"sync"

	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigStore keeps configuration in a map. Nothing is persisted, so
// Reload keeps what Update wrote.
type ConfigStore struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewConfigStore creates an empty config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{values: make(map[string]any)}
}

func (s *ConfigStore) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	maps.Copy(s.values, values)
	s.mu.Unlock()
	return nil
}

func (s *ConfigStore) Reload() error { return nil }

func (s *ConfigStore) Path() string { return ":memory:" }
