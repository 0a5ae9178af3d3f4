package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

var (
	searchLimit   int
	searchJSON    bool
	searchFilters []string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the catalogue",
	Long: `Runs a search through the same path as the interactive surface: a
fresh cached page is served without a network call, otherwise the remote
API is queried and the result is cached and added to recent searches.

Filters narrow the search and are part of the cache key:
  sercha search boots --filter category=footwear --filter in_stock=true

Output is JSON when --json is set or stdout is not a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results to print (0 = all)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringArrayVarP(&searchFilters, "filter", "f", nil, "filter as key=value (repeatable)")
	rootCmd.AddCommand(searchCmd)
}

// searchOutput is the JSON shape of a search command result.
type searchOutput struct {
	Query   string              `json:"query"`
	Source  domain.ResultSource `json:"source"`
	Meta    *domain.SearchMeta  `json:"meta,omitempty"`
	Results []domain.ResultItem `json:"results"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := domain.NormalizeQuery(args[0])
	if query == "" {
		return fmt.Errorf("%w: query must not be empty", domain.ErrInvalidInput)
	}
	if surfaces == nil {
		return errSurfacesNotConfigured
	}

	filters, err := parseFilters(searchFilters)
	if err != nil {
		return err
	}

	surface := surfaces.NewSurface()
	defer surfaces.ReleaseSurface(surface)

	surface.SetFilters(filters)
	surface.OnSubmit(query)
	surface.Wait()

	state := surface.State()
	if state.Err != nil {
		return fmt.Errorf("search failed: %w", state.Err)
	}

	results := state.Results
	if searchLimit > 0 && len(results) > searchLimit {
		results = results[:searchLimit]
	}

	if wantJSON(cmd, searchJSON) {
		return outputJSON(cmd, searchOutput{
			Query:   state.ResultsQuery,
			Source:  state.Source,
			Meta:    state.ResultMeta,
			Results: results,
		})
	}
	outputSearchTable(cmd, state, results)
	return nil
}

// parseFilters turns key=value pairs into a filter set. Values that
// parse as booleans or numbers keep that type so they match the API's
// JSON filters.
func parseFilters(pairs []string) (domain.FilterSet, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	filters := make(domain.FilterSet, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: filter %q must be key=value", domain.ErrInvalidInput, pair)
		}
		filters[key] = parseFilterValue(strings.TrimSpace(value))
	}
	return filters, nil
}

func parseFilterValue(v string) any {
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	return v
}

// wantJSON reports whether output should be JSON: when asked for, or
// when writing to a pipe or file.
func wantJSON(cmd *cobra.Command, flag bool) bool {
	if flag {
		return true
	}
	f, ok := cmd.OutOrStdout().(*os.File)
	return ok && !term.IsTerminal(int(f.Fd()))
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, state domain.SurfaceState, results []domain.ResultItem) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	origin := "live"
	if state.Source == domain.ResultSourceCache {
		origin = "cached"
	}
	cmd.Printf("Results for %q (%s):\n", state.ResultsQuery, origin)
	cmd.Println()

	for i, item := range results {
		title := item.Title()
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  [%d] %s\n", i+1, title)
		for _, line := range detailLines(item, title) {
			cmd.Printf("      %s\n", line)
		}
	}

	if state.ResultMeta != nil && state.ResultMeta.TotalResults > len(results) {
		cmd.Println()
		cmd.Printf("Showing %d of %d results.\n", len(results), state.ResultMeta.TotalResults)
	}
}

// detailLines lists the scalar fields of a result other than its title.
func detailLines(item domain.ResultItem, title string) []string {
	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if v != "" && v != title {
				lines = append(lines, k+": "+v)
			}
		case json.Number:
			lines = append(lines, k+": "+v.String())
		case float64:
			lines = append(lines, k+": "+strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			lines = append(lines, k+": "+strconv.FormatBool(v))
		}
	}
	return lines
}
