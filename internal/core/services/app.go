package services

import (
	"sync"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// Verify interface compliance.
var _ driving.SurfaceFactory = (*App)(nil)

// App owns the shared result cache and history and hands out search
// surfaces wired to them. Tests build isolated Apps over an in-memory store.
type App struct {
	store   driven.KeyValueStore
	cache   *ResultCacheService
	history *HistoryService
	suggest driven.SuggestionAPI
	search  driven.SearchAPI
	clock   driven.Clock

	mu       sync.Mutex
	settings domain.AppSettings
	surfaces map[string]driving.SearchSurface
}

// AppOption configures an App.
type AppOption func(*App)

// WithClock injects the clock used for TTLs and debounce timers.
func WithClock(clock driven.Clock) AppOption {
	return func(a *App) {
		if clock != nil {
			a.clock = clock
		}
	}
}

// NewApp wires the cache and history over store. suggest may be nil.
func NewApp(
	store driven.KeyValueStore,
	search driven.SearchAPI,
	suggest driven.SuggestionAPI,
	settings domain.AppSettings,
	opts ...AppOption,
) *App {
	a := &App{
		store:    store,
		search:   search,
		suggest:  suggest,
		clock:    SystemClock{},
		settings: settings,
		surfaces: make(map[string]driving.SearchSurface),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cache = NewResultCacheService(store, a.clock, settings.Cache)
	a.history = NewHistoryService(store, a.clock, settings.History)
	return a
}

// Cache returns the shared result cache.
func (a *App) Cache() *ResultCacheService {
	return a.cache
}

// History returns the shared recent-search history.
func (a *App) History() *HistoryService {
	return a.history
}

// Settings returns the settings currently in effect.
func (a *App) Settings() domain.AppSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings
}

// NewSurface creates a search surface bound to the shared cache and history.
func (a *App) NewSurface() driving.SearchSurface {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := NewSurface(a.cache, a.history, a.suggest, a.search, a.clock, SurfaceConfigFrom(a.settings.Suggest))
	a.surfaces[s.ID()] = s
	return s
}

// ReleaseSurface closes a surface and forgets it.
func (a *App) ReleaseSurface(s driving.SearchSurface) {
	a.mu.Lock()
	delete(a.surfaces, s.ID())
	a.mu.Unlock()
	s.Close()
}

// ApplySettings pushes reloaded settings into the cache and history.
// Suggestion settings apply to surfaces created afterwards.
func (a *App) ApplySettings(settings domain.AppSettings) {
	a.mu.Lock()
	a.settings = settings
	a.mu.Unlock()

	a.cache.UpdateSettings(settings.Cache)
	a.history.UpdateSettings(settings.History)
}

// Close closes every open surface, waits for their work to settle and
// closes the store.
func (a *App) Close() error {
	a.mu.Lock()
	surfaces := make([]driving.SearchSurface, 0, len(a.surfaces))
	for _, s := range a.surfaces {
		surfaces = append(surfaces, s)
	}
	a.surfaces = make(map[string]driving.SearchSurface)
	a.mu.Unlock()

	for _, s := range surfaces {
		s.Close()
	}
	for _, s := range surfaces {
		s.Wait()
	}
	return a.store.Close()
}
