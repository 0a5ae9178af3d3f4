package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-client/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/services"
)

// fakeAPI serves canned search results and suggestions.
type fakeAPI struct {
	mu          sync.Mutex
	results     []domain.ResultItem
	suggestions []domain.SuggestionItem
	err         error
	searches    []string
	filters     []domain.FilterSet
}

func (f *fakeAPI) Search(_ context.Context, query string, filters domain.FilterSet) (*domain.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searches = append(f.searches, query)
	f.filters = append(f.filters, filters)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.SearchResponse{
		Results: f.results,
		Meta:    &domain.SearchMeta{TotalResults: len(f.results)},
	}, nil
}

func (f *fakeAPI) GetSuggestions(_ context.Context, _ string, _ int) ([]domain.SuggestionItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suggestions, f.err
}

func (f *fakeAPI) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.searches)
}

// testEnv is a real App over an in-memory store and a fake API.
type testEnv struct {
	app      *services.App
	api      *fakeAPI
	settings *services.SettingsService
}

// setupTestServices injects services for one test and restores the
// package state afterwards.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	api := &fakeAPI{
		results: []domain.ResultItem{
			{"title": "Hiking boots", "brand": "Acme", "price": 89.5},
			{"title": "Rain boots", "brand": "Drip"},
		},
		suggestions: []domain.SuggestionItem{
			{Type: domain.SuggestionProduct, Text: "Hiking boots", Value: "hiking boots"},
			{Type: domain.SuggestionCategory, Text: "Boots"},
		},
	}

	settings := domain.DefaultAppSettings()
	settings.Suggest.Debounce = 0

	app := services.NewApp(memory.NewKeyValueStore(), api, api, settings)
	settingsService := services.NewSettingsService(memory.NewConfigStore())

	SetServices(Services{
		Surfaces: app,
		Cache:    app.Cache(),
		History:  app.History(),
		Settings: settingsService,
	})
	t.Cleanup(func() {
		require.NoError(t, app.Close())
		SetServices(Services{})
	})

	return &testEnv{app: app, api: api, settings: settingsService}
}

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runWithInput(t, "", args...)
}

func runWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		resetFlags()
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

// resetFlags restores flag variables cobra does not reset between runs.
func resetFlags() {
	searchLimit = 0
	searchJSON = false
	searchFilters = nil
	suggestJSON = false
	historyJSON = false
	verbose = false
	logJSON = false
	mcpPort = 0
	mcpHost = "127.0.0.1"
}
