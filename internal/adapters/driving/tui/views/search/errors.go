package search

import "errors"

// ErrNoSurface is shown in the status bar when the view was built without
// a surface to drive.
var ErrNoSurface = errors.New("search unavailable: no surface configured")
