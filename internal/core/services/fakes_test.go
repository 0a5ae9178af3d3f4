package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

var errStoreDown = errors.New("disk full")

// fakeClock is a manual clock. Timers fire synchronously inside Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	done    bool
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) driven.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and runs every timer that became due.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due, pending []*fakeTimer
	for _, t := range c.timers {
		switch {
		case t.stopped:
		case !t.at.After(c.now):
			t.done = true
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	c.timers = pending
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.fn()
	}
}

// Pending counts timers that have neither fired nor been stopped.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// failingStore fails every call.
type failingStore struct{}

func (failingStore) Get(context.Context, string) (string, error) {
	return "", errStoreDown
}

func (failingStore) Set(context.Context, string, string) error {
	return errStoreDown
}

func (failingStore) Delete(context.Context, string) error {
	return errStoreDown
}

func (failingStore) ListKeys(context.Context, string) ([]string, error) {
	return nil, errStoreDown
}

func (failingStore) Close() error {
	return nil
}

var _ driven.KeyValueStore = failingStore{}

type searchCall struct {
	query   string
	filters domain.FilterSet
}

// fakeSearchAPI answers with canned responses. A gated query blocks
// until its gate is released, ignoring cancellation, so its response
// arrives late.
type fakeSearchAPI struct {
	mu        sync.Mutex
	calls     []searchCall
	responses map[string]*domain.SearchResponse
	gates     map[string]chan struct{}
	err       error
}

func newFakeSearchAPI() *fakeSearchAPI {
	return &fakeSearchAPI{
		responses: make(map[string]*domain.SearchResponse),
		gates:     make(map[string]chan struct{}),
	}
}

func (f *fakeSearchAPI) Search(_ context.Context, query string, filters domain.FilterSet) (*domain.SearchResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, searchCall{query: query, filters: filters.Clone()})
	gate := f.gates[query]
	resp := f.responses[query]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		resp = resultsFor(query)
	}
	return resp, nil
}

func (f *fakeSearchAPI) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeSearchAPI) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeSearchAPI) Calls() []searchCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]searchCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func resultsFor(query string) *domain.SearchResponse {
	return &domain.SearchResponse{
		Results: []domain.ResultItem{
			{"title": query + " 1"},
			{"title": query + " 2"},
		},
		Meta: &domain.SearchMeta{TotalResults: 2, SearchTimeMs: 7},
	}
}

// fakeSuggestionAPI returns one product suggestion per query.
type fakeSuggestionAPI struct {
	mu    sync.Mutex
	calls []string
	gates map[string]chan struct{}
	err   error
}

func newFakeSuggestionAPI() *fakeSuggestionAPI {
	return &fakeSuggestionAPI{gates: make(map[string]chan struct{})}
}

func (f *fakeSuggestionAPI) GetSuggestions(_ context.Context, query string, _ int) ([]domain.SuggestionItem, error) {
	f.mu.Lock()
	f.calls = append(f.calls, query)
	gate := f.gates[query]
	err := f.err
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return []domain.SuggestionItem{
		{Type: domain.SuggestionProduct, Text: query + " suggestion", Value: query + "-value"},
	}, nil
}

func (f *fakeSuggestionAPI) gate(query string) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.gates[query] = ch
	return ch
}

func (f *fakeSuggestionAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// stalledHistory holds the first List after it has read the store until
// release is closed.
type stalledHistory struct {
	*HistoryService
	once    sync.Once
	read    chan struct{}
	release chan struct{}
}

func newStalledHistory(h *HistoryService) *stalledHistory {
	return &stalledHistory{
		HistoryService: h,
		read:           make(chan struct{}),
		release:        make(chan struct{}),
	}
}

func (h *stalledHistory) List(ctx context.Context) []domain.RecentSearchEntry {
	entries := h.HistoryService.List(ctx)
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.read)
		<-h.release
	}
	return entries
}
