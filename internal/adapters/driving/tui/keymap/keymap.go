// Package keymap holds the key bindings of the search surface and the
// hint sets shown for each focus.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap lists every binding the TUI reacts to.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding

	// Back leaves a panel; in the input it clears the query.
	Back   key.Binding
	Submit key.Binding
	Up     key.Binding
	// Down also moves from the input into the panel below it.
	Down   key.Binding
	Select key.Binding
	Focus  key.Binding

	// Remove and ClearHistory edit the recent-search list.
	Remove       key.Binding
	ClearHistory key.Binding
}

func bind(label, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(label, desc))
}

// DefaultKeyMap is vi-style navigation plus arrow keys.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit:         bind("ctrl+c", "quit", "ctrl+c"),
		Help:         bind("?", "help", "?"),
		Back:         bind("esc", "back", "esc"),
		Submit:       bind("enter", "search", "enter"),
		Up:           bind("↑/k", "up", "up", "k"),
		Down:         bind("↓/j", "down", "down", "j"),
		Select:       bind("enter", "select", "enter"),
		Focus:        bind("/", "edit query", "/"),
		Remove:       bind("d", "remove", "d", "delete"),
		ClearHistory: bind("ctrl+x", "clear history", "ctrl+x"),
	}
}

// InputHelp is shown while typing.
func (k *KeyMap) InputHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Down, k.Quit}
}

// ListHelp is shown on the suggestion and result lists.
func (k *KeyMap) ListHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Focus, k.Back}
}

// RecentHelp is shown on the recent-search list.
func (k *KeyMap) RecentHelp() []key.Binding {
	return []key.Binding{k.Select, k.Remove, k.ClearHistory, k.Back}
}

// FullHelp groups every binding for the help screen.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Up, k.Down, k.Select},
		{k.Focus, k.Back, k.Remove, k.ClearHistory},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr (tea.KeyMsg.String()) triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
