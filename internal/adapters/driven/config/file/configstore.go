package file

import (
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// Ensure ConfigStore implements the interface.
var _ driven.ConfigStore = (*ConfigStore)(nil)

// configFileName is the file inside the config directory.
const configFileName = "config.toml"

// ConfigStore reads and writes ~/.sercha/config.toml. Tables are exposed
// as dot-notation keys: ttl under [cache] is "cache.ttl".
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens the config file in configDir, creating the
// directory if needed. An empty configDir means ~/.sercha. A missing file
// is an empty configuration; a malformed one is an error.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(home, ".sercha")
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	s := &ConfigStore{path: filepath.Join(configDir, configFileName)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Lookup returns the raw decoded value under key. TOML integers decode
// as int64 and floats as float64.
func (s *ConfigStore) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Update merges values and rewrites the file. The file is replaced by
// rename, so the watcher never reads a half-written config.
func (s *ConfigStore) Update(values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := maps.Clone(s.values)
	maps.Copy(next, values)

	data, err := toml.Marshal(nest(next))
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing config: %w", err)
	}

	s.values = next
	return nil
}

// Reload re-reads the file. On error the previous values are kept.
func (s *ConfigStore) Reload() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		data, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}

	tree := make(map[string]any)
	if err := toml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	values := make(map[string]any)
	flatten("", tree, values)

	s.mu.Lock()
	s.values = values
	s.mu.Unlock()
	return nil
}

// Path returns the config file path.
func (s *ConfigStore) Path() string {
	return s.path
}

// flatten copies tree into out with dot-joined keys.
func flatten(prefix string, tree map[string]any, out map[string]any) {
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if table, ok := v.(map[string]any); ok {
			flatten(k, table, out)
			continue
		}
		out[k] = v
	}
}

// nest turns dot-notation keys back into TOML tables. When a key is both
// a value and a table ("cache" and "cache.ttl"), the table is kept.
func nest(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, v := range flat {
		path := strings.Split(key, ".")
		table := root
		for _, name := range path[:len(path)-1] {
			child, ok := table[name].(map[string]any)
			if !ok {
				child = make(map[string]any)
				table[name] = child
			}
			table = child
		}
		leaf := path[len(path)-1]
		if _, isTable := table[leaf].(map[string]any); !isTable {
			table[leaf] = v
		}
	}
	return root
}
