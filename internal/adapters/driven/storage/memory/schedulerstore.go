package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// Ensure SchedulerStore implements the interface.
var _ driven.SchedulerStore = (*SchedulerStore)(nil)

// SchedulerStore keeps maintenance schedules for the memory and redis
// backends. Runs are stored oldest first per task.
type SchedulerStore struct {
	mu    sync.RWMutex
	tasks map[string]domain.MaintenanceTask
	runs  map[string][]domain.SweepRun
}

// NewSchedulerStore creates an empty scheduler store.
func NewSchedulerStore() *SchedulerStore {
	return &SchedulerStore{
		tasks: make(map[string]domain.MaintenanceTask),
		runs:  make(map[string][]domain.SweepRun),
	}
}

// Task returns a copy of the task, or nil if it is unknown.
func (s *SchedulerStore) Task(_ context.Context, id string) (*domain.MaintenanceTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if task, ok := s.tasks[id]; ok {
		return &task, nil
	}
	return nil, nil
}

// Tasks returns every task ordered by ID.
func (s *SchedulerStore) Tasks(_ context.Context) ([]domain.MaintenanceTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.MaintenanceTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	slices.SortFunc(out, func(a, b domain.MaintenanceTask) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *SchedulerStore) PutTask(_ context.Context, task *domain.MaintenanceTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	s.tasks[task.ID] = *task
	s.mu.Unlock()
	return nil
}

func (s *SchedulerStore) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.tasks, id)
	delete(s.runs, id)
	s.mu.Unlock()
	return nil
}

func (s *SchedulerStore) AppendRun(_ context.Context, run *domain.SweepRun) error {
	if run == nil || run.TaskID == "" {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	s.runs[run.TaskID] = append(s.runs[run.TaskID], *run)
	s.mu.Unlock()
	return nil
}

// RecentRuns returns at most n runs, newest first. n <= 0 means all.
func (s *SchedulerStore) RecentRuns(_ context.Context, taskID string, n int) ([]domain.SweepRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.runs[taskID]
	if n <= 0 || n > len(stored) {
		n = len(stored)
	}
	out := slices.Clone(stored[len(stored)-n:])
	slices.Reverse(out)
	return out, nil
}

func (s *SchedulerStore) TrimRuns(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, runs := range s.runs {
		if extra := len(runs) - keep; extra > 0 {
			s.runs[id] = slices.Clone(runs[extra:])
		}
	}
	return nil
}
