package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/sercha-client/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
)

// App is the root tea.Model. It owns one surface for its whole lifetime
// and switches between the search view and the key reference.
type App struct {
	ports   *Ports
	surface driving.SearchSurface
	detach  func()

	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
	search *search.View

	helpOpen bool
	ready    bool
}

var _ tea.Model = (*App)(nil)

// NewApp takes a surface from the factory. Close gives it back.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	st := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()
	surface := ports.Surfaces.NewSurface()

	h := help.New()
	h.ShowAll = true

	return &App{
		ports:   ports,
		surface: surface,
		styles:  st,
		keys:    keys,
		help:    h,
		search:  search.NewView(st, keys, surface),
	}, nil
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("sercha"), a.search.Init())
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil
	case messages.Quit:
		return a, tea.Quit
	case messages.ShowHelp:
		a.helpOpen = true
		return a, nil
	case tea.KeyMsg:
		k := msg.String()
		if keymap.Matches(k, a.keys.Quit) {
			return a, tea.Quit
		}
		if a.helpOpen {
			// The reference swallows keys; states below still reach the view.
			if keymap.Matches(k, a.keys.Back) || keymap.Matches(k, a.keys.Help) {
				a.helpOpen = false
			}
			return a, nil
		}
	}

	var cmd tea.Cmd
	a.search, cmd = a.search.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	switch {
	case !a.ready:
		return "Initialising..."
	case a.helpOpen:
		return lipgloss.JoinVertical(lipgloss.Left,
			a.styles.Title.Render("Help"),
			"",
			a.help.FullHelpView(a.keys.FullHelp()),
			"",
			a.styles.Help.Render("[esc] back to search"),
		)
	default:
		return a.search.View()
	}
}

// Run shows the full-screen UI until the user quits or ctx is done, then
// releases the surface.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(ctx))
	a.detach = a.surface.Subscribe(func(st domain.SurfaceState) {
		p.Send(messages.StateChanged{State: st})
	})

	_, err := p.Run()
	return err
}

// Close unsubscribes and releases the surface. Safe to call twice.
func (a *App) Close() {
	if a.detach != nil {
		a.detach()
		a.detach = nil
	}
	if a.surface != nil {
		a.ports.Surfaces.ReleaseSurface(a.surface)
		a.surface = nil
	}
}

// HelpOpen reports whether the key reference is shown.
func (a *App) HelpOpen() bool { return a.helpOpen }

// SearchView is the view rendering the surface.
func (a *App) SearchView() *search.View { return a.search }

// Ready is true once the terminal size is known.
func (a *App) Ready() bool { return a.ready }

// SetDimensions resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.ready = true
	a.help.Width = width
	a.search.SetDimensions(width, height)
}
