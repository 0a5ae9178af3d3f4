package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
)

// schedulerStore implements driven.SchedulerStore on the
// maintenance_tasks and sweep_runs tables.
type schedulerStore struct {
	store *Store
}

var _ driven.SchedulerStore = (*schedulerStore)(nil)

const (
	selectTask = `SELECT id, name, every_ns, enabled, last_run_ns, next_run_ns,
		last_success_ns, last_error FROM maintenance_tasks`

	upsertTask = `INSERT INTO maintenance_tasks
		(id, name, every_ns, enabled, last_run_ns, next_run_ns, last_success_ns, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			every_ns = excluded.every_ns,
			enabled = excluded.enabled,
			last_run_ns = excluded.last_run_ns,
			next_run_ns = excluded.next_run_ns,
			last_success_ns = excluded.last_success_ns,
			last_error = excluded.last_error`

	insertRun = `INSERT INTO sweep_runs (task_id, started_ns, ended_ns, removed, error)
		VALUES (?, ?, ?, ?, ?)`

	selectRecentRuns = `SELECT task_id, started_ns, ended_ns, removed, error
		FROM sweep_runs WHERE task_id = ? ORDER BY seq DESC LIMIT ?`

	trimRuns = `DELETE FROM sweep_runs WHERE seq IN (
		SELECT seq FROM (
			SELECT seq, ROW_NUMBER() OVER (PARTITION BY task_id ORDER BY seq DESC) AS n
			FROM sweep_runs
		) WHERE n > ?
	)`
)

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *schedulerStore) Task(ctx context.Context, id string) (*domain.MaintenanceTask, error) {
	if err := s.store.checkOpen(); err != nil {
		return nil, err
	}

	task, err := scanMaintenanceTask(s.store.db.QueryRowContext(ctx, selectTask+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	return &task, nil
}

func (s *schedulerStore) Tasks(ctx context.Context) ([]domain.MaintenanceTask, error) {
	if err := s.store.checkOpen(); err != nil {
		return nil, err
	}

	rows, err := s.store.db.QueryContext(ctx, selectTask+" ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.MaintenanceTask, 0)
	for rows.Next() {
		task, err := scanMaintenanceTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (s *schedulerStore) PutTask(ctx context.Context, task *domain.MaintenanceTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	_, err := s.store.db.ExecContext(ctx, upsertTask,
		task.ID, task.Name, int64(task.Every), task.Enabled,
		nanos(task.LastRun), nanos(task.NextRun), nanos(task.LastSuccess), task.LastError)
	if err != nil {
		return fmt.Errorf("saving task %s: %w", task.ID, err)
	}
	return nil
}

// DeleteTask removes the task and its runs in one transaction.
func (s *schedulerStore) DeleteTask(ctx context.Context, id string) error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	for _, q := range []string{
		"DELETE FROM sweep_runs WHERE task_id = ?",
		"DELETE FROM maintenance_tasks WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, id); err != nil {
			return fmt.Errorf("deleting task %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *schedulerStore) AppendRun(ctx context.Context, run *domain.SweepRun) error {
	if run == nil || run.TaskID == "" {
		return domain.ErrInvalidInput
	}
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	_, err := s.store.db.ExecContext(ctx, insertRun,
		run.TaskID, run.StartedAt.UnixNano(), run.EndedAt.UnixNano(), run.Removed, run.Error)
	if err != nil {
		return fmt.Errorf("recording run of %s: %w", run.TaskID, err)
	}
	return nil
}

// RecentRuns returns at most n runs, newest first. n <= 0 means all.
func (s *schedulerStore) RecentRuns(ctx context.Context, taskID string, n int) ([]domain.SweepRun, error) {
	if err := s.store.checkOpen(); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, selectRecentRuns, taskID, n)
	if err != nil {
		return nil, fmt.Errorf("listing runs of %s: %w", taskID, err)
	}
	defer rows.Close()

	runs := make([]domain.SweepRun, 0)
	for rows.Next() {
		var (
			run            domain.SweepRun
			started, ended int64
		)
		if err := rows.Scan(&run.TaskID, &started, &ended, &run.Removed, &run.Error); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.StartedAt = fromNanos(started)
		run.EndedAt = fromNanos(ended)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func (s *schedulerStore) TrimRuns(ctx context.Context, keep int) error {
	if err := s.store.checkOpen(); err != nil {
		return err
	}

	if _, err := s.store.db.ExecContext(ctx, trimRuns, keep); err != nil {
		return fmt.Errorf("trimming runs: %w", err)
	}
	return nil
}

func scanMaintenanceTask(row scanner) (domain.MaintenanceTask, error) {
	var (
		task                       domain.MaintenanceTask
		every                      int64
		lastRun, nextRun, lastGood sql.NullInt64
	)
	err := row.Scan(&task.ID, &task.Name, &every, &task.Enabled,
		&lastRun, &nextRun, &lastGood, &task.LastError)
	if err != nil {
		return domain.MaintenanceTask{}, err
	}

	task.Every = time.Duration(every)
	task.LastRun = fromNullNanos(lastRun)
	task.NextRun = fromNullNanos(nextRun)
	task.LastSuccess = fromNullNanos(lastGood)
	return task, nil
}

// nanos stores the zero time as NULL.
func nanos(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func fromNullNanos(n sql.NullInt64) time.Time {
	if !n.Valid {
		return time.Time{}
	}
	return fromNanos(n.Int64)
}
