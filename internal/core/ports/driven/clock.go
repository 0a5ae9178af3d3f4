package driven

import "time"

// Clock abstracts time so TTL checks and debounce timers can run on
// virtual time in tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc calls f in its own goroutine once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a scheduled call.
type Timer interface {
	// Stop cancels the call. It returns false if the call already fired
	// or was already stopped.
	Stop() bool
}
