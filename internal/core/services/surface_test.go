package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

type surfaceFixture struct {
	surface *Surface
	cache   *ResultCacheService
	history *HistoryService
	clock   *fakeClock
	search  *fakeSearchAPI
	suggest *fakeSuggestionAPI
}

func newSurfaceFixture(t *testing.T) *surfaceFixture {
	t.Helper()
	store := memory.NewKeyValueStore()
	clock := newFakeClock()
	f := &surfaceFixture{
		cache:   NewResultCacheService(store, clock, domain.CacheSettings{TTL: 30 * time.Minute}),
		history: NewHistoryService(store, clock, domain.HistorySettings{TTL: 7 * 24 * time.Hour, Limit: 10}),
		clock:   clock,
		search:  newFakeSearchAPI(),
		suggest: newFakeSuggestionAPI(),
	}
	f.surface = NewSurface(f.cache, f.history, f.suggest, f.search, clock, SurfaceConfig{
		Debounce:     300 * time.Millisecond,
		MinLength:    2,
		SuggestLimit: 8,
	})
	t.Cleanup(func() {
		f.surface.Close()
		f.surface.Wait()
	})
	return f
}

// recordPhases subscribes to the surface and collects published phases.
func recordPhases(s *Surface) (func() []domain.Phase, func()) {
	var mu sync.Mutex
	var phases []domain.Phase
	unsubscribe := s.Subscribe(func(st domain.SurfaceState) {
		mu.Lock()
		defer mu.Unlock()
		phases = append(phases, st.Phase)
	})
	return func() []domain.Phase {
		mu.Lock()
		defer mu.Unlock()
		return append([]domain.Phase(nil), phases...)
	}, unsubscribe
}

func TestSurface_DebounceSuppression(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnQueryChange("s")
	f.surface.OnQueryChange("sh")
	f.clock.Advance(100 * time.Millisecond)
	f.surface.OnQueryChange("sho")
	f.clock.Advance(299 * time.Millisecond)

	assert.Empty(t, f.suggest.Calls())
	assert.Equal(t, domain.PhaseAwaitingSuggestions, f.surface.State().Phase)
	assert.Equal(t, 1, f.clock.Pending())

	f.clock.Advance(time.Millisecond)
	f.surface.Wait()

	assert.Equal(t, []string{"sho"}, f.suggest.Calls())
	st := f.surface.State()
	assert.True(t, st.ShowSuggestions)
	require.Len(t, st.Suggestions, 1)
	assert.Equal(t, "sho suggestion", st.Suggestions[0].Text)
	assert.Equal(t, domain.PhaseSuggestionsShown, st.Phase)
}

func TestSurface_BelowMinLengthNeverFetches(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnQueryChange(" s ")
	f.clock.Advance(time.Second)
	f.surface.Wait()

	assert.Empty(t, f.suggest.Calls())
	assert.Equal(t, 0, f.clock.Pending())
	st := f.surface.State()
	assert.Equal(t, " s ", st.QueryText)
	assert.Equal(t, domain.PhaseTyping, st.Phase)
	assert.False(t, st.ShowSuggestions)
}

func TestSurface_MinLengthCountsRunes(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnQueryChange("é")
	assert.Equal(t, 0, f.clock.Pending())

	f.surface.OnQueryChange("éa")
	assert.Equal(t, 1, f.clock.Pending())
}

func TestSurface_StaleSuggestionsDropped(t *testing.T) {
	f := newSurfaceFixture(t)
	gate := f.suggest.gate("sho")

	f.surface.OnQueryChange("sho")
	f.clock.Advance(300 * time.Millisecond)
	f.surface.OnQueryChange("shoe")
	f.clock.Advance(300 * time.Millisecond)

	require.Eventually(t, func() bool {
		return f.surface.State().Phase == domain.PhaseSuggestionsShown
	}, time.Second, 5*time.Millisecond)

	close(gate)
	f.surface.Wait()

	st := f.surface.State()
	assert.Equal(t, []string{"sho", "shoe"}, f.suggest.Calls())
	require.Len(t, st.Suggestions, 1)
	assert.Equal(t, "shoe suggestion", st.Suggestions[0].Text)
}

func TestSurface_SuggestionErrorIsSilent(t *testing.T) {
	f := newSurfaceFixture(t)
	f.suggest.err = errors.New("suggest down")

	f.surface.OnQueryChange("shoes")
	f.clock.Advance(300 * time.Millisecond)
	f.surface.Wait()

	st := f.surface.State()
	assert.False(t, st.ShowSuggestions)
	assert.Empty(t, st.Suggestions)
	assert.NoError(t, st.Err)
	assert.Equal(t, domain.PhaseIdle, st.Phase)
}

func TestSurface_NoSuggestionAPI(t *testing.T) {
	store := memory.NewKeyValueStore()
	clock := newFakeClock()
	s := NewSurface(
		NewResultCacheService(store, clock, domain.CacheSettings{}),
		NewHistoryService(store, clock, domain.HistorySettings{}),
		nil, newFakeSearchAPI(), clock, SurfaceConfigFrom(domain.SuggestSettings{}),
	)
	defer s.Close()

	s.OnQueryChange("shoes")

	assert.Equal(t, 0, clock.Pending())
	assert.Equal(t, domain.PhaseTyping, s.State().Phase)
}

func TestSurface_SubmitMissThenHit(t *testing.T) {
	f := newSurfaceFixture(t)
	ctx := context.Background()

	f.surface.OnQueryChange("shoes")
	f.surface.OnSubmit("")
	f.surface.Wait()

	want := resultsFor("shoes")
	st := f.surface.State()
	assert.Equal(t, domain.ResultSourceNetwork, st.Source)
	assert.Equal(t, want.Results, st.Results)
	assert.Equal(t, want.Meta, st.ResultMeta)
	assert.Equal(t, "shoes", st.ResultsQuery)
	assert.False(t, st.Loading)
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.Equal(t, []string{"shoes"}, queries(st.RecentSearches))
	assert.Empty(t, f.suggest.Calls(), "submission cancels the pending suggestion timer")

	require.NotNil(t, f.cache.Get(ctx, "shoes", nil))
	recent := f.history.List(ctx)
	require.Len(t, recent, 1)
	assert.Equal(t, 2, recent[0].ResultCount)

	f.surface.OnSubmit("shoes")
	f.surface.Wait()

	st = f.surface.State()
	assert.Equal(t, domain.ResultSourceCache, st.Source)
	assert.Equal(t, want.Results, st.Results)
	assert.Len(t, f.search.Calls(), 1, "cache hit skips the network")
}

func TestSurface_PublishesTransitionsInOrder(t *testing.T) {
	f := newSurfaceFixture(t)
	phases, unsubscribe := recordPhases(f.surface)

	f.surface.OnSubmit("shoes")
	f.surface.Wait()
	f.surface.OnSubmit("shoes")
	f.surface.Wait()

	assert.Equal(t, []domain.Phase{
		domain.PhaseSubmitting, domain.PhaseResultsFromNetwork, domain.PhaseIdle,
		domain.PhaseSubmitting, domain.PhaseResultsFromCache, domain.PhaseIdle,
	}, phases())

	unsubscribe()
	f.surface.OnSubmit("bags")
	f.surface.Wait()
	assert.Len(t, phases(), 6)
}

func TestSurface_StaleResponseSuppressed(t *testing.T) {
	f := newSurfaceFixture(t)
	ctx := context.Background()
	gate := f.search.gate("shoes")

	f.surface.OnSubmit("shoes")
	f.surface.OnSubmit("bags")

	require.Eventually(t, func() bool {
		st := f.surface.State()
		return st.ResultsQuery == "bags" && st.Phase == domain.PhaseIdle
	}, time.Second, 5*time.Millisecond)

	close(gate)
	f.surface.Wait()

	st := f.surface.State()
	assert.Equal(t, "bags", st.ResultsQuery)
	assert.Equal(t, resultsFor("bags").Results, st.Results)
	assert.Equal(t, []string{"bags"}, queries(f.history.List(ctx)))
	assert.NotNil(t, f.cache.Get(ctx, "shoes", nil), "late success still populates the cache")
}

func TestSurface_FailureClearsResultsAndSkipsCaches(t *testing.T) {
	f := newSurfaceFixture(t)
	ctx := context.Background()
	boom := errors.New("boom")

	f.surface.OnSubmit("shoes")
	f.surface.Wait()
	require.NotEmpty(t, f.surface.State().Results)

	phases, _ := recordPhases(f.surface)
	f.search.setErr(boom)
	f.surface.OnSubmit("bags")
	f.surface.Wait()

	st := f.surface.State()
	assert.Nil(t, st.Results)
	assert.Nil(t, st.ResultMeta)
	assert.Equal(t, domain.ResultSourceNone, st.Source)
	assert.False(t, st.Loading)
	assert.ErrorIs(t, st.Err, boom)
	assert.Equal(t, domain.PhaseIdle, st.Phase)
	assert.Equal(t, []domain.Phase{domain.PhaseSubmitting, domain.PhaseFailed, domain.PhaseIdle}, phases())

	assert.Nil(t, f.cache.Get(ctx, "bags", nil))
	assert.Equal(t, []string{"shoes"}, queries(f.history.List(ctx)))
}

func TestSurface_FailOpenStorage(t *testing.T) {
	clock := newFakeClock()
	search := newFakeSearchAPI()
	s := NewSurface(
		NewResultCacheService(failingStore{}, clock, domain.CacheSettings{}),
		NewHistoryService(failingStore{}, clock, domain.HistorySettings{}),
		nil, search, clock, SurfaceConfigFrom(domain.SuggestSettings{}),
	)
	defer s.Close()

	s.OnSubmit("shoes")
	s.Wait()

	st := s.State()
	assert.Equal(t, domain.ResultSourceNetwork, st.Source)
	assert.Equal(t, resultsFor("shoes").Results, st.Results)
	assert.NoError(t, st.Err)
	assert.Empty(t, st.RecentSearches)

	s.OnSubmit("shoes")
	s.Wait()
	assert.Len(t, search.Calls(), 2)
}

func TestSurface_QueryChangeClearsStaleResults(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnSubmit("shoes")
	f.surface.Wait()

	f.surface.OnQueryChange("shoes ")
	assert.True(t, f.surface.State().HasResults(), "same trimmed text keeps results")

	f.surface.OnQueryChange("shoe")
	st := f.surface.State()
	assert.False(t, st.HasResults())
	assert.Nil(t, st.Results)
	assert.Empty(t, st.ResultsQuery)
}

func TestSurface_TypingInvalidatesInFlightSubmission(t *testing.T) {
	f := newSurfaceFixture(t)
	gate := f.search.gate("shoes")

	f.surface.OnSubmit("shoes")
	require.True(t, f.surface.State().Loading)

	f.surface.OnQueryChange("x")
	assert.False(t, f.surface.State().Loading)

	close(gate)
	f.surface.Wait()

	st := f.surface.State()
	assert.False(t, st.HasResults())
	assert.Equal(t, "x", st.QueryText)
	assert.Empty(t, f.history.List(context.Background()))
}

func TestSurface_BlankSubmitIsNoop(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnSubmit("   ")
	f.surface.Wait()

	assert.Empty(t, f.search.Calls())
	assert.Equal(t, domain.PhaseIdle, f.surface.State().Phase)
}

func TestSurface_SelectSuggestion(t *testing.T) {
	tests := []struct {
		name        string
		item        domain.SuggestionItem
		wantQuery   string
		wantFilters domain.FilterSet
	}{
		{
			name:        "product submits value",
			item:        domain.SuggestionItem{Type: domain.SuggestionProduct, Text: "Red Shoes", Value: "red shoes"},
			wantQuery:   "red shoes",
			wantFilters: domain.FilterSet{"city": "X"},
		},
		{
			name:        "product without value submits text",
			item:        domain.SuggestionItem{Type: domain.SuggestionProduct, Text: "Red Shoes"},
			wantQuery:   "Red Shoes",
			wantFilters: domain.FilterSet{"city": "X"},
		},
		{
			name:        "category narrows by filter",
			item:        domain.SuggestionItem{Type: domain.SuggestionCategory, Text: "Shoes", Value: "cat-12"},
			wantQuery:   "Shoes",
			wantFilters: domain.FilterSet{"city": "X", "category": "cat-12"},
		},
		{
			name:        "enterprise narrows by filter",
			item:        domain.SuggestionItem{Type: domain.SuggestionEnterprise, Text: "Acme", Value: "ent-7"},
			wantQuery:   "Acme",
			wantFilters: domain.FilterSet{"city": "X", "enterprise": "ent-7"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSurfaceFixture(t)
			f.surface.SetFilters(domain.FilterSet{"city": "X"})

			f.surface.OnSelectSuggestion(tt.item)
			f.surface.Wait()

			calls := f.search.Calls()
			require.Len(t, calls, 1)
			assert.Equal(t, tt.wantQuery, calls[0].query)
			assert.Equal(t, tt.wantFilters, calls[0].filters)
			assert.Equal(t, tt.wantQuery, f.surface.State().QueryText)
		})
	}
}

func TestSurface_SelectRecent(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnSelectRecent(domain.RecentSearchEntry{Query: "bags", ResultCount: 3})
	f.surface.Wait()

	calls := f.search.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "bags", calls[0].query)
	assert.Equal(t, "bags", f.surface.State().ResultsQuery)
}

func TestSurface_RecentPanel(t *testing.T) {
	f := newSurfaceFixture(t)
	ctx := context.Background()
	f.history.Record(ctx, "shoes", 2)
	f.history.Record(ctx, "bags", 1)

	f.surface.OnFocus()
	f.surface.Wait()

	st := f.surface.State()
	assert.True(t, st.ShowRecent)
	assert.Equal(t, []string{"bags", "shoes"}, queries(st.RecentSearches))

	f.surface.OnQueryChange("b")
	assert.False(t, f.surface.State().ShowRecent)

	f.surface.OnQueryChange("")
	f.surface.Wait()
	assert.True(t, f.surface.State().ShowRecent)

	f.surface.OnRemoveRecent("bags")
	f.surface.Wait()
	st = f.surface.State()
	assert.Equal(t, []string{"shoes"}, queries(st.RecentSearches))
	assert.True(t, st.ShowRecent)

	f.surface.OnClearHistory()
	f.surface.Wait()
	st = f.surface.State()
	assert.Empty(t, st.RecentSearches)
	assert.False(t, st.ShowRecent)
	assert.Empty(t, f.history.List(ctx))
}

func TestSurface_StaleRecentListDropped(t *testing.T) {
	f := newSurfaceFixture(t)
	history := newStalledHistory(f.history)
	surface := NewSurface(f.cache, history, f.suggest, f.search, f.clock, SurfaceConfig{MinLength: 2, SuggestLimit: 8})
	t.Cleanup(func() {
		surface.Close()
		surface.Wait()
	})

	// The focus refresh reads an empty list, then stalls.
	surface.OnFocus()
	<-history.read

	surface.OnSubmit("shoes")
	require.Eventually(t, func() bool {
		return len(surface.State().RecentSearches) == 1
	}, time.Second, 5*time.Millisecond)

	close(history.release)
	surface.Wait()

	assert.Equal(t, []string{"shoes"}, queries(surface.State().RecentSearches))
	assert.Equal(t, []string{"shoes"}, queries(f.history.List(context.Background())))
}

func TestSurface_CloseStopsWork(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnQueryChange("shoes")
	require.Equal(t, 1, f.clock.Pending())

	f.surface.Close()
	assert.Equal(t, 0, f.clock.Pending())

	f.surface.OnSubmit("shoes")
	f.surface.OnQueryChange("bags")
	f.clock.Advance(time.Second)
	f.surface.Wait()

	assert.Empty(t, f.search.Calls())
	assert.Empty(t, f.suggest.Calls())
	assert.Equal(t, "shoes", f.surface.State().QueryText)
}

func TestSurface_StateIsSnapshot(t *testing.T) {
	f := newSurfaceFixture(t)

	f.surface.OnSubmit("shoes")
	f.surface.Wait()

	st := f.surface.State()
	st.Results[0] = domain.ResultItem{"title": "mutated"}

	assert.Equal(t, resultsFor("shoes").Results, f.surface.State().Results)
}

func TestSurface_IDsAreUnique(t *testing.T) {
	a := newSurfaceFixture(t)
	b := newSurfaceFixture(t)
	assert.NotEmpty(t, a.surface.ID())
	assert.NotEqual(t, a.surface.ID(), b.surface.ID())
}

func TestSurfaceConfigFrom(t *testing.T) {
	tests := []struct {
		name string
		in   domain.SuggestSettings
		want SurfaceConfig
	}{
		{
			name: "defaults",
			in:   domain.SuggestSettings{Debounce: -1},
			want: SurfaceConfig{
				Debounce:     domain.DefaultSuggestDebounce,
				MinLength:    domain.DefaultSuggestMinLength,
				SuggestLimit: domain.DefaultSuggestLimit,
			},
		},
		{
			name: "explicit",
			in:   domain.SuggestSettings{Debounce: 150 * time.Millisecond, MinLength: 3, Limit: 4},
			want: SurfaceConfig{Debounce: 150 * time.Millisecond, MinLength: 3, SuggestLimit: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SurfaceConfigFrom(tt.in))
		})
	}
}
