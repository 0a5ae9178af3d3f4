package services

import (
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// SystemClock is the wall-clock implementation of driven.Clock.
type SystemClock struct{}

var _ driven.Clock = SystemClock{}

// Now returns the current time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// AfterFunc schedules f on a runtime timer.
func (SystemClock) AfterFunc(d time.Duration, f func()) driven.Timer {
	return time.AfterFunc(d, f)
}
