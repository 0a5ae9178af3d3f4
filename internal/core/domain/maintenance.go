package domain

import "time"

// Maintenance task IDs.
const (
	TaskIDCacheSweep   = "cache-sweep"
	TaskIDHistoryPrune = "history-prune"
)

// DefaultHistoryPruneInterval is how often expired history entries are
// written back out of storage.
const DefaultHistoryPruneInterval = 6 * time.Hour

// MaintenanceTask is a recurring storage-hygiene job and its schedule.
// Lazy expiry keeps reads correct without it; tasks only bound how much
// dead data stays on disk.
type MaintenanceTask struct {
	ID      string
	Name    string
	Every   time.Duration
	Enabled bool

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time
	LastError   string
}

// IsDue reports whether the task should run at now.
func (t MaintenanceTask) IsDue(now time.Time) bool {
	return t.Enabled && !t.NextRun.After(now)
}

// SweepRun is the outcome of one maintenance task execution.
type SweepRun struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time

	// Removed counts the cache pages or history entries deleted.
	Removed int

	// Error is empty when the run succeeded.
	Error string
}

// OK reports whether the run finished without error.
func (r SweepRun) OK() bool {
	return r.Error == ""
}

// Took returns how long the run lasted.
func (r SweepRun) Took() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// TaskConfig is the schedule of a single maintenance task.
type TaskConfig struct {
	Enabled bool
	Every   time.Duration
}

// SchedulerConfig switches maintenance on or off and schedules each task.
type SchedulerConfig struct {
	Enabled bool
	Tasks   map[string]TaskConfig
}

// Task returns the schedule for id, or a disabled zero value.
func (c SchedulerConfig) Task(id string) TaskConfig {
	return c.Tasks[id]
}

// DefaultSchedulerConfig schedules the cache sweep at the configured
// sweep interval and the history prune every six hours.
func DefaultSchedulerConfig(cache CacheSettings) SchedulerConfig {
	every := cache.SweepInterval
	if every <= 0 {
		every = DefaultCacheSweepInterval
	}
	return SchedulerConfig{
		Enabled: true,
		Tasks: map[string]TaskConfig{
			TaskIDCacheSweep:   {Enabled: true, Every: every},
			TaskIDHistoryPrune: {Enabled: true, Every: DefaultHistoryPruneInterval},
		},
	}
}
