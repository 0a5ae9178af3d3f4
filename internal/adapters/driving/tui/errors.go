package tui

import "errors"

var (
	// ErrInvalidPorts is returned for a nil Ports.
	ErrInvalidPorts = errors.New("tui: no ports given")

	// ErrMissingSurfaces is returned when Ports has no surface factory.
	ErrMissingSurfaces = errors.New("tui: surface factory is required")
)
