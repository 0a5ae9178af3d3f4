// Package status provides the status bar component for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// Bar shows what the search surface is doing and the active key hints.
type Bar struct {
	styles  *styles.Styles
	spinner spinner.Model
	state   domain.SurfaceState
	hints   []key.Binding
	message string
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = s.Subtitle

	return &Bar{
		styles:  s,
		spinner: sp,
		width:   80,
	}
}

// Sync takes the latest surface state. It returns a command that starts
// the spinner when a search begins.
func (b *Bar) Sync(state domain.SurfaceState) tea.Cmd {
	wasLoading := b.state.Loading
	b.state = state
	if state.Loading && !wasLoading {
		return b.spinner.Tick
	}
	return nil
}

// Update advances the spinner while a search is loading.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	if _, ok := msg.(spinner.TickMsg); !ok || !b.state.Loading {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(msg)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := max(b.width-lipgloss.Width(left)-lipgloss.Width(right)-2, 1)
	return b.styles.StatusBar.Width(b.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (b *Bar) renderLeft() string {
	switch {
	case b.message != "":
		return b.styles.Normal.Render(b.message)
	case b.state.Loading:
		return b.spinner.View() + " " + b.styles.Muted.Render(fmt.Sprintf("Searching %q...", b.state.QueryText))
	case b.state.Err != nil:
		return b.styles.Error.Render("Search failed")
	case b.state.HasResults():
		count := len(b.state.Results)
		if b.state.ResultMeta != nil && b.state.ResultMeta.TotalResults > count {
			return b.styles.Normal.Render(fmt.Sprintf("%d of %d results", count, b.state.ResultMeta.TotalResults))
		}
		return b.styles.Normal.Render(fmt.Sprintf("%d results", count))
	default:
		return b.styles.Muted.Render("Ready")
	}
}

func (b *Bar) renderRight() string {
	hints := make([]string, 0, len(b.hints))
	for _, binding := range b.hints {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetHints replaces the key hints shown on the right.
func (b *Bar) SetHints(hints []key.Binding) {
	b.hints = hints
}

// SetMessage shows a transient message in place of the state summary.
// An empty message restores the summary.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the transient message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}
