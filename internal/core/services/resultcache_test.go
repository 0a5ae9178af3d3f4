package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

func newTestCache(t *testing.T) (*ResultCacheService, *memory.KeyValueStore, *fakeClock) {
	t.Helper()
	store := memory.NewKeyValueStore()
	clock := newFakeClock()
	cache := NewResultCacheService(store, clock, domain.CacheSettings{
		TTL:        30 * time.Minute,
		MaxEntries: 3,
	})
	return cache, store, clock
}

func TestResultCache_RoundTrip(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	results := []domain.ResultItem{
		{"title": "red shoes", "price": json.Number("49.5"), "inStock": true},
		{"title": "blue shoes", "price": json.Number("19"), "inStock": false},
	}
	meta := &domain.SearchMeta{TotalResults: 2, SearchTimeMs: 12}
	filters := domain.FilterSet{"city": "X"}

	cache.Put(ctx, "shoes", filters, results, meta)
	entry := cache.Get(ctx, "shoes", filters)

	require.NotNil(t, entry)
	assert.Equal(t, results, entry.Results)
	assert.Equal(t, meta, entry.Meta)
	assert.Equal(t, "shoes", entry.Query)
	assert.Equal(t, filters, entry.Filters)
}

func TestResultCache_NumbersSurviveExactly(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	put := []domain.ResultItem{{"id": int64(9007199254740993), "qty": 3, "score": 0.25}}
	filters := domain.FilterSet{"page": 2}
	cache.Put(ctx, "q", filters, put, nil)

	entry := cache.Get(ctx, "q", filters)
	require.NotNil(t, entry)
	require.Len(t, entry.Results, 1)
	assert.Equal(t, json.Number("9007199254740993"), entry.Results[0]["id"])
	assert.Equal(t, json.Number("3"), entry.Results[0]["qty"])
	assert.Equal(t, json.Number("0.25"), entry.Results[0]["score"])
	assert.Equal(t, json.Number("2"), entry.Filters["page"])

	want, err := json.Marshal(put)
	require.NoError(t, err)
	got, err := json.Marshal(entry.Results)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(got))

	// Decoded values re-cache unchanged.
	cache.Put(ctx, "q", filters, entry.Results, nil)
	again := cache.Get(ctx, "q", filters)
	require.NotNil(t, again)
	assert.Equal(t, entry.Results, again.Results)
}

func TestResultCache_FilterOrderHitsSameSlot(t *testing.T) {
	cache, store, _ := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "shoes", domain.FilterSet{"sort": "a", "city": "X"}, []domain.ResultItem{{"id": "1"}}, nil)

	entry := cache.Get(ctx, " shoes ", domain.FilterSet{"city": "X", "sort": "a"})
	require.NotNil(t, entry)

	keys, err := store.ListKeys(ctx, cacheKeyPrefix)
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestResultCache_Miss(t *testing.T) {
	cache, _, _ := newTestCache(t)
	assert.Nil(t, cache.Get(context.Background(), "nothing", nil))
}

func TestResultCache_TTL(t *testing.T) {
	cache, store, clock := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "shoes", nil, []domain.ResultItem{{"id": "1"}}, nil)

	clock.Advance(30 * time.Minute)
	require.NotNil(t, cache.Get(ctx, "shoes", nil), "an entry exactly TTL old is fresh")

	clock.Advance(time.Nanosecond)
	assert.Nil(t, cache.Get(ctx, "shoes", nil))

	keys, err := store.ListKeys(ctx, cacheKeyPrefix)
	require.NoError(t, err)
	assert.Empty(t, keys, "expired entry is deleted on read")
}

func TestResultCache_LastWriteWins(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "shoes", nil, []domain.ResultItem{{"id": "old"}}, nil)
	clock.Advance(time.Minute)
	cache.Put(ctx, "shoes", nil, []domain.ResultItem{{"id": "new"}}, nil)

	entry := cache.Get(ctx, "shoes", nil)
	require.NotNil(t, entry)
	assert.Equal(t, []domain.ResultItem{{"id": "new"}}, entry.Results)
	assert.True(t, clock.Now().Equal(entry.StoredAt))
}

func TestResultCache_EmptyResultsAreCached(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "zzz", nil, nil, nil)

	entry := cache.Get(ctx, "zzz", nil)
	require.NotNil(t, entry)
	assert.Empty(t, entry.Results)
	assert.Nil(t, entry.Meta)
}

func TestResultCache_InvalidateAll_KeepsHistory(t *testing.T) {
	cache, store, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, historyKey, "[]"))
	cache.Put(ctx, "a", nil, nil, nil)
	cache.Put(ctx, "b", nil, nil, nil)

	cache.InvalidateAll(ctx)

	assert.Nil(t, cache.Get(ctx, "a", nil))
	assert.Nil(t, cache.Get(ctx, "b", nil))
	_, err := store.Get(ctx, historyKey)
	assert.NoError(t, err)
}

func TestResultCache_CorruptEntryIsMissAndDeleted(t *testing.T) {
	cache, store, _ := newTestCache(t)
	ctx := context.Background()

	fp, err := Fingerprint("shoes", nil)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, cacheKey(fp), "{not json"))

	assert.Nil(t, cache.Get(ctx, "shoes", nil))
	_, err = store.Get(ctx, cacheKey(fp))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestResultCache_FailOpen(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	logger.SetVerbose(true)
	t.Cleanup(func() {
		logger.SetVerbose(false)
		logger.SetOutput(os.Stderr)
	})

	cache := NewResultCacheService(failingStore{}, newFakeClock(), domain.CacheSettings{})
	ctx := context.Background()

	assert.NotPanics(t, func() {
		cache.Put(ctx, "shoes", nil, []domain.ResultItem{{"id": "1"}}, nil)
		cache.InvalidateAll(ctx)
	})
	assert.Nil(t, cache.Get(ctx, "shoes", nil))
	assert.Equal(t, domain.PruneResult{}, cache.Prune(ctx))
	assert.Equal(t, domain.CacheStats{}, cache.Stats(ctx))
	assert.Contains(t, buf.String(), "[WARN] [resultcache]")
}

func TestResultCache_PruneAndStats(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	// Two entries that will expire, then four fresh ones.
	cache.Put(ctx, "old-1", nil, nil, nil)
	cache.Put(ctx, "old-2", nil, nil, nil)
	clock.Advance(31 * time.Minute)
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		cache.Put(ctx, fmt.Sprintf("fresh-%d", i), nil, nil, nil)
	}

	assert.Equal(t, domain.CacheStats{Entries: 6, Expired: 2}, cache.Stats(ctx))

	result := cache.Prune(ctx)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 1, result.Evicted)
	assert.Equal(t, domain.CacheStats{Entries: 3}, cache.Stats(ctx))

	assert.Nil(t, cache.Get(ctx, "fresh-0", nil), "oldest fresh entry is evicted")
	assert.NotNil(t, cache.Get(ctx, "fresh-3", nil))
}

func TestResultCache_UpdateSettings(t *testing.T) {
	cache, _, clock := newTestCache(t)
	ctx := context.Background()

	cache.Put(ctx, "shoes", nil, nil, nil)
	clock.Advance(10 * time.Minute)

	cache.UpdateSettings(domain.CacheSettings{TTL: 5 * time.Minute})
	assert.Nil(t, cache.Get(ctx, "shoes", nil))
}
