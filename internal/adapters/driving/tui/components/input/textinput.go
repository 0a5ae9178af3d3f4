// Package input is the query field at the top of the search view.
package input

import (
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/styles"
)

const (
	maxQueryLength = 256
	labelWidth     = 14
	minFieldWidth  = 20
)

// SearchInput is the query field. Update reports whether a message edited
// the text so the view forwards only real edits to the surface, and a
// spinner next to the field runs while a search is loading.
type SearchInput struct {
	field   textinput.Model
	spin    spinner.Model
	styles  *styles.Styles
	loading bool
}

// NewSearchInput returns a focused, empty query field.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Prompt = ""
	field.Placeholder = "Search products, categories, companies..."
	field.CharLimit = maxQueryLength
	field.Width = 50
	field.Focus()

	return &SearchInput{
		field:  field,
		spin:   spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(s.Muted)),
		styles: s,
	}
}

// Init starts the cursor blinking.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update feeds msg to the field and, while loading, to the spinner.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd, bool) {
	if tick, ok := msg.(spinner.TickMsg); ok {
		if !s.loading {
			return s, nil, false
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(tick)
		return s, cmd, false
	}

	before := s.field.Value()
	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd, s.field.Value() != before
}

// SetLoading toggles the spinner. Turning it on returns the first tick.
func (s *SearchInput) SetLoading(loading bool) tea.Cmd {
	if loading == s.loading {
		return nil
	}
	s.loading = loading
	if loading {
		return s.spin.Tick
	}
	return nil
}

// Loading reports whether the spinner is running.
func (s *SearchInput) Loading() bool {
	return s.loading
}

// View renders the label, the field and the spinner when loading.
func (s *SearchInput) View() string {
	parts := []string{
		s.styles.Title.Render("Search: "),
		s.styles.InputField.Render(s.field.View()),
	}
	if s.loading {
		parts = append(parts, " "+s.spin.View())
	}
	//nolint:misspell // lipgloss constant
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

// Value is the current query text.
func (s *SearchInput) Value() string {
	return s.field.Value()
}

// SetValue replaces the text and puts the cursor at the end.
func (s *SearchInput) SetValue(value string) {
	s.field.SetValue(value)
	s.field.CursorEnd()
}

// Focus gives the field keyboard focus.
func (s *SearchInput) Focus() tea.Cmd {
	return s.field.Focus()
}

// Blur removes keyboard focus.
func (s *SearchInput) Blur() {
	s.field.Blur()
}

// Focused reports whether the field has keyboard focus.
func (s *SearchInput) Focused() bool {
	return s.field.Focused()
}

// SetWidth fits the field into width columns next to its label.
func (s *SearchInput) SetWidth(width int) {
	s.field.Width = max(width-labelWidth, minFieldWidth)
}
