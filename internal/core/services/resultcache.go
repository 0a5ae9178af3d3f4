package services

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// Ensure ResultCacheService implements the interface.
var _ driving.ResultCache = (*ResultCacheService)(nil)

// ResultCacheService stores result pages in a key-value store, addressed
// by fingerprint. It is fail-open: storage errors are logged and turned
// into misses or no-ops.
type ResultCacheService struct {
	store driven.KeyValueStore
	clock driven.Clock
	log   *logger.Logger

	mu       sync.RWMutex
	settings domain.CacheSettings
}

// NewResultCacheService creates a result cache over store.
// A nil clock uses the system clock.
func NewResultCacheService(
	store driven.KeyValueStore, clock driven.Clock, settings domain.CacheSettings,
) *ResultCacheService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ResultCacheService{
		store:    store,
		clock:    clock,
		log:      logger.Scoped("resultcache"),
		settings: normalizeCacheSettings(settings),
	}
}

// UpdateSettings swaps the TTL and size limits, e.g. after a config reload.
func (c *ResultCacheService) UpdateSettings(settings domain.CacheSettings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = normalizeCacheSettings(settings)
}

func (c *ResultCacheService) current() domain.CacheSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

func normalizeCacheSettings(s domain.CacheSettings) domain.CacheSettings {
	if s.TTL <= 0 {
		s.TTL = domain.DefaultCacheTTL
	}
	if s.MaxEntries < 0 {
		s.MaxEntries = 0
	}
	return s
}

// Put stores results under the fingerprint of (query, filters).
func (c *ResultCacheService) Put(
	ctx context.Context, query string, filters domain.FilterSet,
	results []domain.ResultItem, meta *domain.SearchMeta,
) {
	fp, err := Fingerprint(query, filters)
	if err != nil {
		c.log.Warn("put %q: %v", query, err)
		return
	}

	if results == nil {
		results = []domain.ResultItem{}
	}
	entry := domain.CacheEntry{
		Fingerprint: fp,
		Query:       query,
		Filters:     filters.Clone(),
		Results:     results,
		Meta:        meta,
		StoredAt:    c.clock.Now().UTC(),
	}

	raw, err := json.Marshal(entry)
	if err != nil {
		c.log.Warn("encode entry %s: %v", fp, err)
		return
	}
	if err := c.store.Set(ctx, cacheKey(fp), string(raw)); err != nil {
		c.log.Warn("store entry %s: %v", fp, err)
		return
	}
	c.log.Debug("stored %s (%d results)", fp, len(results))
}

// Get returns the fresh entry for (query, filters), or nil on a miss.
func (c *ResultCacheService) Get(ctx context.Context, query string, filters domain.FilterSet) *domain.CacheEntry {
	fp, err := Fingerprint(query, filters)
	if err != nil {
		c.log.Warn("get %q: %v", query, err)
		return nil
	}
	key := cacheKey(fp)

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			c.log.Warn("read entry %s: %v", fp, err)
		}
		return nil
	}

	entry, err := decodeEntry(raw)
	if err != nil {
		c.log.Warn("corrupt entry %s: %v", fp, err)
		c.deleteQuietly(ctx, key)
		return nil
	}

	if entry.Expired(c.clock.Now(), c.current().TTL) {
		c.log.Debug("expired %s", fp)
		c.deleteQuietly(ctx, key)
		return nil
	}

	c.log.Debug("hit %s", fp)
	return entry
}

// InvalidateAll deletes every cache entry. History is untouched.
func (c *ResultCacheService) InvalidateAll(ctx context.Context) {
	keys, err := c.store.ListKeys(ctx, cacheKeyPrefix)
	if err != nil {
		c.log.Warn("list entries: %v", err)
		return
	}
	for _, key := range keys {
		c.deleteQuietly(ctx, key)
	}
	c.log.Info("invalidated %d entries", len(keys))
}

// Prune deletes expired and unreadable entries, then evicts the oldest
// entries until at most MaxEntries remain. MaxEntries of zero disables
// eviction.
func (c *ResultCacheService) Prune(ctx context.Context) domain.PruneResult {
	var result domain.PruneResult
	settings := c.current()
	now := c.clock.Now()

	type live struct {
		key   string
		entry domain.CacheEntry
	}
	var kept []live

	c.scan(ctx, func(key string, entry *domain.CacheEntry) {
		if entry == nil || entry.Expired(now, settings.TTL) {
			if c.deleteQuietly(ctx, key) {
				result.Expired++
			}
			return
		}
		kept = append(kept, live{key: key, entry: *entry})
	})

	if settings.MaxEntries > 0 && len(kept) > settings.MaxEntries {
		sort.SliceStable(kept, func(i, j int) bool {
			return kept[i].entry.StoredAt.Before(kept[j].entry.StoredAt)
		})
		for _, l := range kept[:len(kept)-settings.MaxEntries] {
			if c.deleteQuietly(ctx, l.key) {
				result.Evicted++
			}
		}
	}

	if result.Total() > 0 {
		c.log.Info("pruned %d expired, %d evicted", result.Expired, result.Evicted)
	}
	return result
}

// Stats counts stored entries and how many of them are expired.
func (c *ResultCacheService) Stats(ctx context.Context) domain.CacheStats {
	var stats domain.CacheStats
	ttl := c.current().TTL
	now := c.clock.Now()

	c.scan(ctx, func(_ string, entry *domain.CacheEntry) {
		stats.Entries++
		if entry == nil || entry.Expired(now, ttl) {
			stats.Expired++
		}
	})
	return stats
}

// scan calls fn for every stored entry. Unreadable entries are passed as nil.
func (c *ResultCacheService) scan(ctx context.Context, fn func(key string, entry *domain.CacheEntry)) {
	keys, err := c.store.ListKeys(ctx, cacheKeyPrefix)
	if err != nil {
		c.log.Warn("list entries: %v", err)
		return
	}
	for _, key := range keys {
		if ctx.Err() != nil {
			return
		}
		raw, err := c.store.Get(ctx, key)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				c.log.Warn("read entry %s: %v", key, err)
			}
			continue
		}
		entry, err := decodeEntry(raw)
		if err != nil {
			fn(key, nil)
			continue
		}
		fn(key, entry)
	}
}

func (c *ResultCacheService) deleteQuietly(ctx context.Context, key string) bool {
	if err := c.store.Delete(ctx, key); err != nil {
		c.log.Warn("delete %s: %v", key, err)
		return false
	}
	return true
}

// decodeEntry keeps numbers as json.Number so result values come back
// exactly as the API sent them.
func decodeEntry(raw string) (*domain.CacheEntry, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var entry domain.CacheEntry
	if err := dec.Decode(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}
