// Package messages holds the tea.Msg types shared by the TUI views.
package messages

import "github.com/custodia-labs/sercha-client/internal/core/domain"

// StateChanged delivers a surface state. The surface notifier sends it
// through tea.Program.Send, so it arrives outside of any key handling.
type StateChanged struct {
	State domain.SurfaceState
}

// ShowHelp asks the app to replace the search view with the key reference
// until the user goes back.
type ShowHelp struct{}

// Quit ends the program.
type Quit struct{}
