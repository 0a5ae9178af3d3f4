package driving

import (
	"context"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// Scheduler runs the cache sweep and history prune in the background of
// long-running commands (tui, mcp serve).
type Scheduler interface {
	// Start blocks, running due tasks, until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for in-flight runs.
	Stop() error

	// LastRun returns the newest recorded run of a task, or nil if it never ran.
	LastRun(ctx context.Context, taskID string) (*domain.SweepRun, error)
}
