package services

import (
	"context"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// Ensure Surface implements the interface.
var _ driving.SearchSurface = (*Surface)(nil)

// SurfaceConfig tunes the typeahead behaviour of a surface.
type SurfaceConfig struct {
	// Debounce is the idle delay before a suggestion fetch fires.
	Debounce time.Duration

	// MinLength is the minimum trimmed rune count that fetches suggestions.
	MinLength int

	// SuggestLimit is passed to the suggestion API.
	SuggestLimit int
}

// SurfaceConfigFrom builds a surface config from suggestion settings,
// filling defaults for unset values.
func SurfaceConfigFrom(s domain.SuggestSettings) SurfaceConfig {
	cfg := SurfaceConfig{
		Debounce:     s.Debounce,
		MinLength:    s.MinLength,
		SuggestLimit: s.Limit,
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = domain.DefaultSuggestDebounce
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = domain.DefaultSuggestMinLength
	}
	if cfg.SuggestLimit <= 0 {
		cfg.SuggestLimit = domain.DefaultSuggestLimit
	}
	return cfg
}

type subscriber struct {
	id int
	fn func(domain.SurfaceState)
}

// Surface orchestrates one search screen: debounced suggestion fetches,
// cache-first submissions, live fetches and history updates.
//
// Every event that starts new work increments a generation counter.
// Asynchronous completions capture the generation at issue time and are
// dropped when it no longer matches, so only the latest user intent can
// change visible state. Superseded requests also have their context
// cancelled.
type Surface struct {
	id          string
	cache       driving.ResultCache
	history     driving.SearchHistory
	suggestions driven.SuggestionAPI
	search      driven.SearchAPI
	clock       driven.Clock
	cfg         SurfaceConfig
	log         *logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// wg counts pending timers, fetches, history jobs and the notifier.
	wg sync.WaitGroup

	// historyMu orders history jobs started by panel actions.
	historyMu sync.Mutex

	mu          sync.Mutex
	state       domain.SurfaceState
	filters     domain.FilterSet
	generation  uint64
	timer       driven.Timer
	cancelFetch context.CancelFunc
	subscribers []subscriber
	nextSubID   int
	queue       []domain.SurfaceState
	draining    bool
	closed      bool

	// recentIssued numbers history reads as they start; recentShown is
	// the number of the list on screen. An older read never replaces a
	// newer one.
	recentIssued uint64
	recentShown  uint64
}

// NewSurface creates a surface. suggestions may be nil, in which case
// typing never fetches suggestions. A nil clock uses the system clock.
func NewSurface(
	cache driving.ResultCache,
	history driving.SearchHistory,
	suggestions driven.SuggestionAPI,
	search driven.SearchAPI,
	clock driven.Clock,
	cfg SurfaceConfig,
) *Surface {
	if clock == nil {
		clock = SystemClock{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Surface{
		id:          uuid.NewString(),
		cache:       cache,
		history:     history,
		suggestions: suggestions,
		search:      search,
		clock:       clock,
		cfg:         cfg,
		log:         logger.Scoped("surface"),
		ctx:         ctx,
		cancel:      cancel,
		state:       domain.SurfaceState{Phase: domain.PhaseIdle},
	}
}

// ID returns the surface identifier.
func (s *Surface) ID() string {
	return s.id
}

// OnQueryChange applies a keystroke. The text is updated immediately;
// suggestions are fetched once the text has been stable for the
// debounce delay.
func (s *Surface) OnQueryChange(text string) {
	s.mu.Lock()
	if s.closed || text == s.state.QueryText {
		s.mu.Unlock()
		return
	}

	s.bumpLocked()
	st := &s.state
	st.QueryText = text
	st.Loading = false
	st.Err = nil

	trimmed := domain.NormalizeQuery(text)
	if st.HasResults() && trimmed != st.ResultsQuery {
		s.clearResultsLocked()
	}

	loadRecent := false
	switch {
	case trimmed == "":
		st.Suggestions = nil
		st.ShowSuggestions = false
		st.ShowRecent = len(st.RecentSearches) > 0
		st.Phase = domain.PhaseIdle
		loadRecent = true
	case s.suggestions == nil || utf8.RuneCountInString(trimmed) < s.cfg.MinLength:
		st.Suggestions = nil
		st.ShowSuggestions = false
		st.ShowRecent = false
		st.Phase = domain.PhaseTyping
	default:
		st.ShowRecent = false
		st.Phase = domain.PhaseAwaitingSuggestions
		s.armSuggestTimerLocked(text, trimmed)
	}

	s.publishLocked()
	s.mu.Unlock()

	if loadRecent {
		s.refreshRecent()
	}
}

// OnSubmit submits query, or the current text when query is blank.
func (s *Surface) OnSubmit(query string) {
	s.submit(query, nil)
}

// OnSelectSuggestion submits a suggestion. Category and enterprise
// suggestions submit their text narrowed by a filter on their value;
// other suggestions submit their value.
func (s *Surface) OnSelectSuggestion(item domain.SuggestionItem) {
	if key := item.Type.FilterKey(); key != "" && item.Value != "" {
		s.submit(item.Text, domain.FilterSet{key: item.Value})
		return
	}
	query := item.Value
	if domain.NormalizeQuery(query) == "" {
		query = item.Text
	}
	s.submit(query, nil)
}

// OnSelectRecent re-issues a recent search.
func (s *Surface) OnSelectRecent(entry domain.RecentSearchEntry) {
	s.submit(entry.Query, nil)
}

// OnClearHistory empties the history and hides the recent panel.
func (s *Surface) OnClearHistory() {
	s.runHistoryJob(func(ctx context.Context) {
		s.history.Clear(ctx)
		s.applyRecent(s.nextRecentTicket(), nil)
	})
}

// OnRemoveRecent removes one entry and reloads the panel.
func (s *Surface) OnRemoveRecent(query string) {
	s.runHistoryJob(func(ctx context.Context) {
		s.history.Remove(ctx, query)
		ticket := s.nextRecentTicket()
		s.applyRecent(ticket, s.history.List(ctx))
	})
}

// OnFocus loads recent searches; they are shown while the query is empty.
func (s *Surface) OnFocus() {
	s.refreshRecent()
}

// SetFilters replaces the filter set used by later submissions.
func (s *Surface) SetFilters(filters domain.FilterSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = filters.Clone()
}

// State returns a snapshot of the current state.
func (s *Surface) State() domain.SurfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive every published state, in order.
// fn runs on a notifier goroutine and may call back into the surface.
func (s *Surface) Subscribe(fn func(domain.SurfaceState)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subscribers {
			if sub.id == id {
				s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
				return
			}
		}
	}
}

// Wait blocks until pending timers, fetches and notifications settle.
func (s *Surface) Wait() {
	s.wg.Wait()
}

// Close stops the pending timer and cancels in-flight requests. Events
// received after Close are ignored.
func (s *Surface) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.bumpLocked()
	s.mu.Unlock()

	s.cancel()
	s.log.Debug("%s closed", s.id)
}

// bumpLocked starts a new generation: the pending timer is stopped and
// the in-flight request is cancelled.
func (s *Surface) bumpLocked() {
	s.generation++
	if s.timer != nil {
		if s.timer.Stop() {
			s.wg.Done()
		}
		s.timer = nil
	}
	if s.cancelFetch != nil {
		s.cancelFetch()
		s.cancelFetch = nil
	}
}

func (s *Surface) clearResultsLocked() {
	s.state.Results = nil
	s.state.ResultMeta = nil
	s.state.ResultsQuery = ""
	s.state.Source = domain.ResultSourceNone
}

func (s *Surface) armSuggestTimerLocked(raw, query string) {
	gen := s.generation
	s.wg.Add(1)
	s.timer = s.clock.AfterFunc(s.cfg.Debounce, func() {
		s.fireSuggest(gen, raw, query)
	})
}

func (s *Surface) fireSuggest(gen uint64, raw, query string) {
	defer s.wg.Done()

	s.mu.Lock()
	if s.closed || gen != s.generation {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Debug("%s suggest %q gen=%d", s.id, query, gen)
	go s.fetchSuggestions(ctx, cancel, gen, raw, query)
}

func (s *Surface) fetchSuggestions(
	ctx context.Context, cancel context.CancelFunc, gen uint64, raw, query string,
) {
	defer s.wg.Done()
	defer cancel()

	items, err := s.suggestions.GetSuggestions(ctx, query, s.cfg.SuggestLimit)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state.QueryText != raw {
		s.log.Debug("%s drop stale suggestions for %q", s.id, query)
		return
	}
	s.cancelFetch = nil

	st := &s.state
	if err != nil {
		s.log.Warn("%s suggestions for %q: %v", s.id, query, err)
		items = nil
	}
	st.Suggestions = items
	st.ShowSuggestions = len(items) > 0
	if st.ShowSuggestions {
		st.Phase = domain.PhaseSuggestionsShown
	} else {
		st.Phase = domain.PhaseIdle
	}
	s.publishLocked()
}

func (s *Surface) submit(query string, extra domain.FilterSet) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	explicit := domain.NormalizeQuery(query) != ""
	if !explicit {
		query = s.state.QueryText
	}
	query = domain.NormalizeQuery(query)
	if query == "" {
		s.mu.Unlock()
		return
	}

	s.bumpLocked()
	gen := s.generation
	filters := s.filters.Clone()
	for k, v := range extra {
		filters = filters.With(k, v)
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelFetch = cancel

	st := &s.state
	if explicit {
		st.QueryText = query
	}
	st.ShowSuggestions = false
	st.ShowRecent = false
	st.Loading = true
	st.Err = nil
	st.Phase = domain.PhaseSubmitting
	s.publishLocked()

	s.wg.Add(1)
	s.mu.Unlock()

	s.log.Debug("%s submit %q gen=%d", s.id, query, gen)
	go s.runSearch(ctx, cancel, gen, query, filters)
}

func (s *Surface) runSearch(
	ctx context.Context, cancel context.CancelFunc, gen uint64, query string, filters domain.FilterSet,
) {
	defer s.wg.Done()
	defer cancel()

	// Storage writes outlive a superseded request.
	storeCtx := context.WithoutCancel(ctx)

	if entry := s.cache.Get(ctx, query, filters); entry != nil {
		resp := domain.SearchResponse{Results: entry.Results, Meta: entry.Meta}
		if !s.applyResults(gen, query, resp, domain.ResultSourceCache) {
			return
		}
		s.finishSubmission(storeCtx, gen, query, resp.ResultCount())
		return
	}

	resp, err := s.search.Search(ctx, query, filters)
	if err == nil && resp == nil {
		err = domain.ErrSearchUnavailable
	}
	if err != nil {
		s.applyFailure(gen, query, err)
		return
	}

	s.cache.Put(storeCtx, query, filters, resp.Results, resp.Meta)
	if !s.applyResults(gen, query, *resp, domain.ResultSourceNetwork) {
		return
	}
	s.finishSubmission(storeCtx, gen, query, resp.ResultCount())
}

func (s *Surface) applyResults(gen uint64, query string, resp domain.SearchResponse, source domain.ResultSource) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("%s drop stale results for %q", s.id, query)
		return false
	}
	s.cancelFetch = nil

	st := &s.state
	st.Results = resp.Results
	st.ResultMeta = resp.Meta
	st.ResultsQuery = query
	st.Source = source
	st.Loading = false
	st.Err = nil
	if source == domain.ResultSourceCache {
		st.Phase = domain.PhaseResultsFromCache
	} else {
		st.Phase = domain.PhaseResultsFromNetwork
	}
	s.publishLocked()
	return true
}

func (s *Surface) applyFailure(gen uint64, query string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		s.log.Debug("%s drop stale failure for %q: %v", s.id, query, err)
		return
	}
	s.cancelFetch = nil
	s.log.Warn("%s search %q: %v", s.id, query, err)

	s.clearResultsLocked()
	st := &s.state
	st.Loading = false
	st.Err = fmt.Errorf("search %q: %w", query, err)
	st.Phase = domain.PhaseFailed
	s.publishLocked()

	st.Phase = domain.PhaseIdle
	s.publishLocked()
}

// finishSubmission records the search in history and returns the
// surface to Idle with a fresh recent list.
func (s *Surface) finishSubmission(ctx context.Context, gen uint64, query string, count int) {
	s.history.Record(ctx, query, count)
	ticket := s.nextRecentTicket()
	recent := s.history.List(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return
	}
	if ticket > s.recentShown {
		s.recentShown = ticket
		s.state.RecentSearches = recent
	}
	s.state.Phase = domain.PhaseIdle
	s.publishLocked()
}

func (s *Surface) refreshRecent() {
	s.runHistoryJob(func(ctx context.Context) {
		ticket := s.nextRecentTicket()
		s.applyRecent(ticket, s.history.List(ctx))
	})
}

// nextRecentTicket numbers a history read. Take it before reading.
func (s *Surface) nextRecentTicket() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentIssued++
	return s.recentIssued
}

// applyRecent stores a freshly loaded recent list unless a list read
// later is already shown. The panel is shown only while the query is
// empty.
func (s *Surface) applyRecent(ticket uint64, recent []domain.RecentSearchEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if ticket < s.recentShown {
		s.log.Debug("%s drop stale recent list", s.id)
		return
	}
	s.recentShown = ticket
	st := &s.state
	st.RecentSearches = recent
	st.ShowRecent = len(recent) > 0 && domain.NormalizeQuery(st.QueryText) == "" && !st.Loading
	s.publishLocked()
}

func (s *Surface) runHistoryJob(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.historyMu.Lock()
		defer s.historyMu.Unlock()
		fn(context.WithoutCancel(s.ctx))
	}()
}

// publishLocked queues a snapshot for subscribers. A single notifier
// goroutine delivers the queue in order without holding mu.
func (s *Surface) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}
	s.queue = append(s.queue, s.state.Clone())
	if s.draining {
		return
	}
	s.draining = true
	s.wg.Add(1)
	go s.drain()
}

func (s *Surface) drain() {
	defer s.wg.Done()
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.draining = false
			s.mu.Unlock()
			return
		}
		next := s.queue[0]
		s.queue[0] = domain.SurfaceState{}
		s.queue = s.queue[1:]
		subs := make([]subscriber, len(s.subscribers))
		copy(subs, s.subscribers)
		s.mu.Unlock()

		for _, sub := range subs {
			sub.fn(next)
		}
	}
}
