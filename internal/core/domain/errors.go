package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested key or entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrStoreClosed indicates the key-value store has been closed.
	ErrStoreClosed = errors.New("store closed")

	// ErrUnsupportedBackend indicates an unknown storage backend.
	ErrUnsupportedBackend = errors.New("unsupported storage backend")

	// ErrSearchUnavailable indicates no remote search API is configured.
	ErrSearchUnavailable = errors.New("search API unavailable")

	// Remote API Errors.

	// ErrRemote indicates the remote API answered with a failure status.
	ErrRemote = errors.New("remote API error")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)

// RemoteError describes a non-2xx response from the remote API.
type RemoteError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote API error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("remote API error: status %d: %s", e.StatusCode, e.Body)
}

// Is matches ErrRemote, and ErrRateLimited for 429 responses.
func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrRemote:
		return true
	case ErrRateLimited:
		return e.StatusCode == 429
	default:
		return false
	}
}
