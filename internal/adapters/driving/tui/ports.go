// Package tui is the interactive terminal front end. It renders one search
// surface and turns key presses into surface events.
package tui

import "github.com/custodia-labs/sercha-client/internal/core/ports/driving"

// Ports is what the TUI needs from the core.
type Ports struct {
	Surfaces driving.SurfaceFactory
}

// NewPorts wraps a surface factory.
func NewPorts(surfaces driving.SurfaceFactory) *Ports {
	return &Ports{Surfaces: surfaces}
}

// Validate reports a missing dependency.
func (p *Ports) Validate() error {
	switch {
	case p == nil:
		return ErrInvalidPorts
	case p.Surfaces == nil:
		return ErrMissingSurfaces
	}
	return nil
}
