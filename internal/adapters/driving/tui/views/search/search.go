// Package search provides the search surface view for the TUI: a query
// input with typeahead suggestions, a recent-search panel and results.
package search

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// Focus identifies which part of the view receives keys.
type Focus int

const (
	FocusInput Focus = iota
	FocusSuggestions
	FocusRecent
	FocusResults
)

// maxDetailFields bounds how many extra result fields are previewed.
const maxDetailFields = 3

// View renders a search surface and forwards input events to it.
// It holds no search logic: everything it shows comes from published
// surface states.
type View struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	input       *input.SearchInput
	suggestions *list.List[domain.SuggestionItem]
	recent      *list.List[domain.RecentSearchEntry]
	results     *list.List[domain.ResultItem]
	statusbar   *status.Bar

	surface driving.SearchSurface
	state   domain.SurfaceState
	focus   Focus

	width  int
	height int
	ready  bool
}

// NewView creates a search view bound to surface.
func NewView(s *styles.Styles, km *keymap.KeyMap, surface driving.SearchSurface) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	v := &View{
		styles:      s,
		keymap:      km,
		input:       input.NewSearchInput(s),
		suggestions: list.New(s, "", "", renderSuggestion),
		recent:      list.New(s, "Recent searches", "", renderRecent),
		results:     list.New(s, "Results", "No results", renderResult),
		statusbar:   status.NewBar(s),
		surface:     surface,
		width:       80,
		height:      24,
	}
	v.statusbar.SetHints(km.InputHelp())
	return v
}

// Init loads recent searches for the empty state and starts the cursor.
func (v *View) Init() tea.Cmd {
	if v.surface != nil {
		v.surface.OnFocus()
	}
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.StateChanged:
		return v, v.applyState(msg.State)

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd, _ = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// applyState renders a published surface state.
func (v *View) applyState(st domain.SurfaceState) tea.Cmd {
	prevQuery := v.state.ResultsQuery
	v.state = st

	v.suggestions.SetItems(st.Suggestions)
	v.recent.SetItems(st.RecentSearches)
	v.results.SetItems(st.Results)
	if st.ResultsQuery != prevQuery {
		v.results.ResetSelection()
	}
	if st.ResultsQuery != "" {
		v.results.SetTitle(fmt.Sprintf("Results for %q", st.ResultsQuery))
	} else {
		v.results.SetTitle("Results")
	}

	// Keystrokes own the field while it has focus; otherwise follow the
	// surface, e.g. after a suggestion or recent search was picked.
	if !v.input.Focused() && st.QueryText != v.input.Value() {
		v.input.SetValue(st.QueryText)
	}

	return tea.Batch(v.statusbar.Sync(st), v.input.SetLoading(st.Loading), v.fixFocus())
}

// fixFocus moves focus off panels that are no longer shown.
func (v *View) fixFocus() tea.Cmd {
	switch v.focus {
	case FocusSuggestions:
		if !v.suggestionsVisible() {
			return v.setFocus(v.fallbackFocus())
		}
	case FocusRecent:
		if !v.recentVisible() {
			return v.setFocus(v.fallbackFocus())
		}
	case FocusResults:
		if v.results.IsEmpty() && !v.state.Loading {
			return v.setFocus(FocusInput)
		}
	case FocusInput:
	}
	return nil
}

func (v *View) fallbackFocus() Focus {
	if !v.results.IsEmpty() || v.state.Loading {
		return FocusResults
	}
	return FocusInput
}

func (v *View) suggestionsVisible() bool {
	return v.state.ShowSuggestions && !v.suggestions.IsEmpty()
}

func (v *View) recentVisible() bool {
	return v.state.ShowRecent && !v.recent.IsEmpty()
}

// setFocus moves keyboard focus and updates the key hints.
func (v *View) setFocus(f Focus) tea.Cmd {
	v.focus = f
	v.suggestions.SetFocused(f == FocusSuggestions)
	v.recent.SetFocused(f == FocusRecent)
	v.results.SetFocused(f == FocusResults)

	switch f {
	case FocusInput:
		v.statusbar.SetHints(v.keymap.InputHelp())
		return v.input.Focus()
	case FocusRecent:
		v.statusbar.SetHints(v.keymap.RecentHelp())
	case FocusSuggestions, FocusResults:
		v.statusbar.SetHints(v.keymap.ListHelp())
	}
	v.input.Blur()
	return nil
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	v.statusbar.SetMessage("")

	if v.surface == nil {
		v.statusbar.SetMessage(ErrNoSurface.Error())
		return v, nil
	}

	if keymap.Matches(k, v.keymap.ClearHistory) {
		v.surface.OnClearHistory()
		v.statusbar.SetMessage("History cleared")
		return v, nil
	}

	if v.focus == FocusInput {
		return v.handleInputKey(msg)
	}

	switch {
	case keymap.Matches(k, v.keymap.Help):
		return v, func() tea.Msg { return messages.ShowHelp{} }
	case keymap.Matches(k, v.keymap.Back), keymap.Matches(k, v.keymap.Focus):
		return v, v.setFocus(FocusInput)
	case keymap.Matches(k, v.keymap.Up):
		if !v.activeListMoveUp() {
			return v, v.setFocus(FocusInput)
		}
		return v, nil
	case keymap.Matches(k, v.keymap.Down):
		v.activeListMoveDown()
		return v, nil
	case keymap.Matches(k, v.keymap.Select):
		return v, v.selectCurrent()
	case keymap.Matches(k, v.keymap.Remove) && v.focus == FocusRecent:
		if entry, ok := v.recent.SelectedItem(); ok {
			v.surface.OnRemoveRecent(entry.Query)
			v.statusbar.SetMessage(fmt.Sprintf("Removed %q", entry.Query))
		}
		return v, nil
	}
	return v, nil
}

func (v *View) handleInputKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEnter:
		query := v.input.Value()
		v.surface.OnSubmit(query)
		if domain.NormalizeQuery(query) == "" {
			return v, nil
		}
		return v, v.setFocus(FocusResults)

	case tea.KeyDown:
		switch {
		case v.suggestionsVisible():
			return v, v.setFocus(FocusSuggestions)
		case v.recentVisible():
			return v, v.setFocus(FocusRecent)
		case !v.results.IsEmpty():
			return v, v.setFocus(FocusResults)
		}
		return v, nil

	case tea.KeyEsc:
		if v.input.Value() != "" {
			v.input.SetValue("")
			v.surface.OnQueryChange("")
		}
		return v, nil
	}

	var cmd tea.Cmd
	var changed bool
	v.input, cmd, changed = v.input.Update(msg)
	if changed {
		v.surface.OnQueryChange(v.input.Value())
	}
	return v, cmd
}

func (v *View) activeListMoveUp() bool {
	switch v.focus {
	case FocusSuggestions:
		return v.suggestions.MoveUp()
	case FocusRecent:
		return v.recent.MoveUp()
	case FocusResults:
		return v.results.MoveUp()
	case FocusInput:
	}
	return false
}

func (v *View) activeListMoveDown() {
	switch v.focus {
	case FocusSuggestions:
		v.suggestions.MoveDown()
	case FocusRecent:
		v.recent.MoveDown()
	case FocusResults:
		v.results.MoveDown()
	case FocusInput:
	}
}

// selectCurrent submits the highlighted suggestion or recent search.
func (v *View) selectCurrent() tea.Cmd {
	switch v.focus {
	case FocusSuggestions:
		if item, ok := v.suggestions.SelectedItem(); ok {
			v.surface.OnSelectSuggestion(item)
			return v.setFocus(FocusResults)
		}
	case FocusRecent:
		if entry, ok := v.recent.SelectedItem(); ok {
			v.surface.OnSelectRecent(entry)
			return v.setFocus(FocusResults)
		}
	case FocusInput, FocusResults:
	}
	return nil
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	header := v.styles.Title.Render("Sercha")
	if badge := v.styles.Badge(v.state.Source); badge != "" {
		header += "  " + badge
	}
	sections := []string{header, "", v.input.View()}

	if v.state.Err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+v.state.Err.Error()))
	}

	switch {
	case v.suggestionsVisible():
		sections = append(sections, v.styles.Panel.Render(v.suggestions.View()))
	case v.recentVisible():
		sections = append(sections, v.styles.Panel.Render(v.recent.View()))
	}

	if v.state.HasResults() || v.state.Loading {
		sections = append(sections, "", v.results.View())
	}

	sections = append(sections, "", v.statusbar.View())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.suggestions.SetDimensions(width-4, 12)
	v.recent.SetDimensions(width-4, 12)
	v.results.SetDimensions(width, height-10) // header, input, status
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Focus returns which part of the view has keyboard focus.
func (v *View) Focus() Focus {
	return v.focus
}

// Query returns the text in the input field.
func (v *View) Query() string {
	return v.input.Value()
}

// State returns the last surface state the view rendered.
func (v *View) State() domain.SurfaceState {
	return v.state
}

func renderSuggestion(item domain.SuggestionItem) (string, string) {
	return fmt.Sprintf("%s  · %s", item.Text, item.Type), ""
}

func renderRecent(entry domain.RecentSearchEntry) (string, string) {
	return entry.Query, fmt.Sprintf("%d results · %s", entry.ResultCount, ago(time.Since(entry.LastSearchedAt)))
}

func renderResult(item domain.ResultItem) (string, string) {
	title := item.Title()

	keys := make([]string, 0, len(item))
	for k := range item {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]string, 0, maxDetailFields)
	for _, k := range keys {
		if len(fields) == maxDetailFields {
			break
		}
		val, ok := item[k].(string)
		if !ok || val == "" || val == title {
			continue
		}
		fields = append(fields, k+": "+val)
	}
	return title, strings.Join(fields, " · ")
}

// ago formats an elapsed duration coarsely.
func ago(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
