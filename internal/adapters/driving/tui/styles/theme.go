// Package styles holds the palette and lipgloss styles of the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// Theme is the palette. Every colour carries a light and a dark variant;
// lipgloss picks one from the terminal background.
type Theme struct {
	Accent  lipgloss.AdaptiveColor
	Link    lipgloss.AdaptiveColor
	Text    lipgloss.AdaptiveColor
	Dim     lipgloss.AdaptiveColor
	Fresh   lipgloss.AdaptiveColor
	Stale   lipgloss.AdaptiveColor
	Failure lipgloss.AdaptiveColor
	Frame   lipgloss.AdaptiveColor
	Bar     lipgloss.AdaptiveColor
}

// DefaultTheme is a violet and teal palette.
func DefaultTheme() *Theme {
	return &Theme{
		Accent:  lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"},
		Link:    lipgloss.AdaptiveColor{Light: "#0E7490", Dark: "#22D3EE"},
		Text:    lipgloss.AdaptiveColor{Light: "#1F2937", Dark: "#E5E7EB"},
		Dim:     lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"},
		Fresh:   lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#86EFAC"},
		Stale:   lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FCD34D"},
		Failure: lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#FCA5A5"},
		Frame:   lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"},
		Bar:     lipgloss.AdaptiveColor{Light: "#F3F4F6", Dark: "#111827"},
	}
}

// Styles are the rendered styles built from one Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
	Tag      lipgloss.Style

	InputField lipgloss.Style
	Panel      lipgloss.Style
	StatusBar  lipgloss.Style

	CacheBadge   lipgloss.Style
	NetworkBadge lipgloss.Style
}

// NewStyles builds styles for theme, or for DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	fg := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	framed := func(b lipgloss.Border, c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().BorderStyle(b).BorderForeground(c).Padding(0, 1)
	}
	badge := func(bg lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(theme.Bar).Background(bg)
	}

	return &Styles{
		theme: theme,

		Title:    fg(theme.Accent).Bold(true),
		Subtitle: fg(theme.Link).Bold(true),
		Normal:   fg(theme.Text),
		Muted:    fg(theme.Dim),
		Selected: fg(theme.Bar).Background(theme.Accent).Bold(true),
		Error:    fg(theme.Failure),
		Help:     fg(theme.Dim),
		Tag:      fg(theme.Link).Italic(true),

		InputField: framed(lipgloss.RoundedBorder(), theme.Frame),
		Panel:      framed(lipgloss.NormalBorder(), theme.Link),
		StatusBar:  fg(theme.Dim).Background(theme.Bar).Padding(0, 1),

		CacheBadge:   badge(theme.Stale),
		NetworkBadge: badge(theme.Fresh),
	}
}

// DefaultStyles is NewStyles(DefaultTheme()).
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Badge marks where the shown results came from. It is empty when no
// results are shown.
func (s *Styles) Badge(source domain.ResultSource) string {
	switch source {
	case domain.ResultSourceCache:
		return s.CacheBadge.Render("cached")
	case domain.ResultSourceNetwork:
		return s.NetworkBadge.Render("live")
	default:
		return ""
	}
}
