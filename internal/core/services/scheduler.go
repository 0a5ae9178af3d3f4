package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const (
	// defaultTick is how often due tasks are looked for.
	defaultTick = time.Minute

	// runRetention is the number of runs kept per task.
	runRetention = 50
)

// maintenanceJob is the work behind a task ID. It reports how many items
// it removed.
type maintenanceJob struct {
	name string
	run  func(ctx context.Context) (int, error)
}

// Scheduler runs storage-hygiene tasks in the background: the result
// cache sweep and the history prune. Task schedules and runs are kept in
// a SchedulerStore so a sweep that ran in one process is not repeated by
// the next one.
type Scheduler struct {
	config domain.SchedulerConfig
	store  driven.SchedulerStore
	jobs   map[string]maintenanceJob
	clock  driven.Clock
	tick   time.Duration
	log    *logger.Logger

	mu       sync.Mutex
	stop     chan struct{}
	busy     map[string]bool
	inflight sync.WaitGroup
}

// NewScheduler creates a scheduler. cache and history are optional; a nil
// service has no task.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	cache driving.ResultCache,
	history driving.SearchHistory,
) *Scheduler {
	s := &Scheduler{
		config: config,
		store:  store,
		jobs:   make(map[string]maintenanceJob, 2),
		busy:   make(map[string]bool, 2),
		clock:  SystemClock{},
		tick:   defaultTick,
		log:    logger.Scoped("scheduler"),
	}
	if cache != nil {
		s.jobs[domain.TaskIDCacheSweep] = maintenanceJob{
			name: "Cache Sweep",
			run: func(ctx context.Context) (int, error) {
				return cache.Prune(ctx).Total(), ctx.Err()
			},
		}
	}
	if history != nil {
		s.jobs[domain.TaskIDHistoryPrune] = maintenanceJob{
			name: "History Prune",
			run: func(ctx context.Context) (int, error) {
				return history.Prune(ctx), ctx.Err()
			},
		}
	}
	return s
}

// SetTick changes how often due tasks are looked for.
func (s *Scheduler) SetTick(d time.Duration) {
	if d > 0 {
		s.tick = d
	}
}

// SetClock replaces the clock used to decide which tasks are due.
func (s *Scheduler) SetClock(clock driven.Clock) {
	if clock != nil {
		s.clock = clock
	}
}

// Start runs due tasks until ctx is cancelled or Stop is called.
// A second Start while running returns nil immediately.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	if s.config.Enabled {
		if err := s.syncTasks(ctx); err != nil {
			s.log.Error("syncing tasks: %v", err)
		}
	} else {
		s.log.Debug("disabled")
	}
	s.runDue(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stop:
			return nil
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// Stop ends the loop and waits for in-flight runs to finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if s.stop != nil {
		close(s.stop)
		s.stop = nil
	}
	s.mu.Unlock()

	s.inflight.Wait()
	return nil
}

// LastRun returns the newest run of a task, or nil if it never ran.
func (s *Scheduler) LastRun(ctx context.Context, taskID string) (*domain.SweepRun, error) {
	runs, err := s.store.RecentRuns(ctx, taskID, 1)
	if err != nil {
		return nil, fmt.Errorf("loading runs of %s: %w", taskID, err)
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

func (s *Scheduler) running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stop != nil
}

// syncTasks reconciles stored tasks with the configuration. New tasks
// first run one interval from now, a changed interval reschedules and a
// disabled task is deleted.
func (s *Scheduler) syncTasks(ctx context.Context) error {
	ids := make([]string, 0, len(s.jobs))
	for id := range s.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := s.clock.Now()
	for _, id := range ids {
		cfg := s.config.Task(id)
		task, err := s.store.Task(ctx, id)
		if err != nil {
			return fmt.Errorf("loading task %s: %w", id, err)
		}

		switch {
		case !cfg.Enabled || cfg.Every <= 0:
			if task != nil {
				if err := s.store.DeleteTask(ctx, id); err != nil {
					return fmt.Errorf("deleting task %s: %w", id, err)
				}
			}
			continue
		case task == nil:
			task = &domain.MaintenanceTask{
				ID:      id,
				Name:    s.jobs[id].name,
				Every:   cfg.Every,
				NextRun: now.Add(cfg.Every),
			}
		case task.Every != cfg.Every:
			task.Every = cfg.Every
			task.NextRun = now.Add(cfg.Every)
		}
		task.Enabled = true

		if err := s.store.PutTask(ctx, task); err != nil {
			return fmt.Errorf("saving task %s: %w", id, err)
		}
	}
	return nil
}

// runDue starts every due task that has a job. A task still running from
// an earlier tick is skipped.
func (s *Scheduler) runDue(ctx context.Context) {
	if !s.config.Enabled {
		return
	}

	tasks, err := s.store.Tasks(ctx)
	if err != nil {
		s.log.Warn("listing tasks: %v", err)
		return
	}

	now := s.clock.Now()
	for _, task := range tasks {
		job, ok := s.jobs[task.ID]
		if !ok || !task.IsDue(now) || !s.claim(task.ID) {
			continue
		}
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			defer s.release(task.ID)
			s.execute(ctx, task, job)
		}()
	}
}

func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy[id] {
		s.log.Debug("%s still running, skipped", id)
		return false
	}
	s.busy[id] = true
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.busy, id)
}

// execute runs one task and records the run.
func (s *Scheduler) execute(ctx context.Context, task domain.MaintenanceTask, job maintenanceJob) {
	run := domain.SweepRun{TaskID: task.ID, StartedAt: s.clock.Now()}
	removed, err := job.run(ctx)
	run.EndedAt = s.clock.Now()
	run.Removed = removed

	task.LastRun = run.StartedAt
	task.NextRun = run.EndedAt.Add(task.Every)
	if err != nil {
		run.Error = err.Error()
		task.LastError = run.Error
		s.log.Warn("%s failed: %v", task.ID, err)
	} else {
		task.LastError = ""
		task.LastSuccess = run.EndedAt
		s.log.Debug("%s removed %d items in %s", task.ID, removed, run.Took())
	}

	if err := s.store.PutTask(ctx, &task); err != nil {
		s.log.Warn("saving task %s: %v", task.ID, err)
	}
	if err := s.store.AppendRun(ctx, &run); err != nil {
		s.log.Warn("recording run of %s: %v", task.ID, err)
	}
	if err := s.store.TrimRuns(ctx, runRetention); err != nil {
		s.log.Warn("trimming runs: %v", err)
	}
}
