package driven

import (
	"context"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

// SchedulerStore keeps maintenance task schedules and their recent runs,
// so sweep intervals survive restarts of short-lived CLI invocations.
type SchedulerStore interface {
	// Task returns the task with id, or nil and no error if it is unknown.
	Task(ctx context.Context, id string) (*domain.MaintenanceTask, error)

	// Tasks returns every stored task ordered by ID.
	Tasks(ctx context.Context) ([]domain.MaintenanceTask, error)

	// PutTask creates or replaces the task with the same ID.
	PutTask(ctx context.Context, task *domain.MaintenanceTask) error

	// DeleteTask removes a task together with its runs.
	DeleteTask(ctx context.Context, id string) error

	// AppendRun records a finished run.
	AppendRun(ctx context.Context, run *domain.SweepRun) error

	// RecentRuns returns at most n runs of a task, newest first.
	RecentRuns(ctx context.Context, taskID string, n int) ([]domain.SweepRun, error)

	// TrimRuns keeps only the newest keep runs of each task.
	TrimRuns(ctx context.Context, keep int) error
}
