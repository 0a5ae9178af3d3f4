package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// Ensure HistoryService implements the interface.
var _ driving.SearchHistory = (*HistoryService)(nil)

// HistoryService keeps the recent-search list as a single JSON array in
// the key-value store. Every read-modify-write runs under mu so
// concurrent records cannot lose updates.
type HistoryService struct {
	store driven.KeyValueStore
	clock driven.Clock
	log   *logger.Logger

	mu       sync.Mutex
	settings domain.HistorySettings
}

// NewHistoryService creates a history over store.
// A nil clock uses the system clock.
func NewHistoryService(
	store driven.KeyValueStore, clock driven.Clock, settings domain.HistorySettings,
) *HistoryService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &HistoryService{
		store:    store,
		clock:    clock,
		log:      logger.Scoped("history"),
		settings: normalizeHistorySettings(settings),
	}
}

// UpdateSettings swaps the TTL and limit. The stored list is trimmed on
// the next write.
func (h *HistoryService) UpdateSettings(settings domain.HistorySettings) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.settings = normalizeHistorySettings(settings)
}

func normalizeHistorySettings(s domain.HistorySettings) domain.HistorySettings {
	if s.TTL <= 0 {
		s.TTL = domain.DefaultHistoryTTL
	}
	if s.Limit <= 0 {
		s.Limit = domain.DefaultHistoryLimit
	}
	return s
}

// Record moves query to the front of the list. Blank queries are ignored.
func (h *HistoryService) Record(ctx context.Context, query string, resultCount int) {
	query = domain.NormalizeQuery(query)
	if query == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries, ok := h.load(ctx)
	if !ok {
		return
	}
	now := h.clock.Now()
	entries, _ = h.dropExpired(entries, now)

	next := make([]domain.RecentSearchEntry, 0, len(entries)+1)
	next = append(next, domain.RecentSearchEntry{
		Query:          query,
		LastSearchedAt: now.UTC(),
		ResultCount:    resultCount,
	})
	for _, e := range entries {
		if e.Query != query {
			next = append(next, e)
		}
	}
	if len(next) > h.settings.Limit {
		next = next[:h.settings.Limit]
	}

	if h.save(ctx, next) {
		h.log.Debug("recorded %q (%d results)", query, resultCount)
	}
}

// List returns live entries, most recent first. When expired entries are
// dropped the pruned list is written back before returning.
func (h *HistoryService) List(ctx context.Context) []domain.RecentSearchEntry {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, ok := h.load(ctx)
	if !ok {
		return []domain.RecentSearchEntry{}
	}
	live, dropped := h.dropExpired(entries, h.clock.Now())
	if dropped > 0 {
		h.save(ctx, live)
	}
	return live
}

// Remove deletes the entry for query. The query is trimmed like in
// Record, then matched exactly.
func (h *HistoryService) Remove(ctx context.Context, query string) {
	query = domain.NormalizeQuery(query)
	if query == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries, ok := h.load(ctx)
	if !ok {
		return
	}
	next := make([]domain.RecentSearchEntry, 0, len(entries))
	for _, e := range entries {
		if e.Query != query {
			next = append(next, e)
		}
	}
	if len(next) == len(entries) {
		return
	}
	h.save(ctx, next)
}

// Clear empties the list.
func (h *HistoryService) Clear(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.store.Delete(ctx, historyKey); err != nil {
		h.log.Warn("clear: %v", err)
		return
	}
	h.log.Debug("cleared")
}

// Prune drops expired entries and reports how many were removed.
func (h *HistoryService) Prune(ctx context.Context) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	entries, ok := h.load(ctx)
	if !ok {
		return 0
	}
	live, dropped := h.dropExpired(entries, h.clock.Now())
	if dropped == 0 || !h.save(ctx, live) {
		return 0
	}
	return dropped
}

// load reads the stored list. ok is false when the store failed; a
// missing or corrupt list reads as empty.
func (h *HistoryService) load(ctx context.Context) ([]domain.RecentSearchEntry, bool) {
	raw, err := h.store.Get(ctx, historyKey)
	if errors.Is(err, domain.ErrNotFound) {
		return []domain.RecentSearchEntry{}, true
	}
	if err != nil {
		h.log.Warn("read: %v", err)
		return nil, false
	}

	var entries []domain.RecentSearchEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		h.log.Warn("corrupt list, starting over: %v", err)
		return []domain.RecentSearchEntry{}, true
	}
	return entries, true
}

func (h *HistoryService) save(ctx context.Context, entries []domain.RecentSearchEntry) bool {
	raw, err := json.Marshal(entries)
	if err != nil {
		h.log.Warn("encode: %v", err)
		return false
	}
	if err := h.store.Set(ctx, historyKey, string(raw)); err != nil {
		h.log.Warn("write: %v", err)
		return false
	}
	return true
}

func (h *HistoryService) dropExpired(
	entries []domain.RecentSearchEntry, now time.Time,
) ([]domain.RecentSearchEntry, int) {
	live := make([]domain.RecentSearchEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Expired(now, h.settings.TTL) {
			live = append(live, e)
		}
	}
	return live, len(entries) - len(live)
}
