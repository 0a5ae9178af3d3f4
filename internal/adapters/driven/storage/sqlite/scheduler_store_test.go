package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
)

func putTask(t *testing.T, store *Store, id string) {
	t.Helper()
	require.NoError(t, store.SchedulerStore().PutTask(context.Background(), &domain.MaintenanceTask{
		ID:      id,
		Name:    id,
		Every:   time.Hour,
		Enabled: true,
	}))
}

func appendRun(t *testing.T, store *Store, taskID string, at time.Time, removed int, errMsg string) {
	t.Helper()
	require.NoError(t, store.SchedulerStore().AppendRun(context.Background(), &domain.SweepRun{
		TaskID:    taskID,
		StartedAt: at,
		EndedAt:   at.Add(time.Millisecond),
		Removed:   removed,
		Error:     errMsg,
	}))
}

func TestSchedulerStore_PutAndTask(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tasks := store.SchedulerStore()

	now := time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC)
	want := &domain.MaintenanceTask{
		ID:          domain.TaskIDCacheSweep,
		Name:        "Cache Sweep",
		Every:       10 * time.Minute,
		Enabled:     true,
		LastRun:     now.Add(-5 * time.Minute),
		NextRun:     now.Add(5 * time.Minute),
		LastSuccess: now.Add(-15 * time.Minute),
		LastError:   "store down",
	}
	require.NoError(t, tasks.PutTask(ctx, want))

	got, err := tasks.Task(ctx, domain.TaskIDCacheSweep)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.Every, got.Every)
	assert.True(t, got.Enabled)
	assert.Equal(t, want.LastError, got.LastError)
	assert.True(t, want.LastRun.Equal(got.LastRun))
	assert.True(t, want.NextRun.Equal(got.NextRun))
	assert.True(t, want.LastSuccess.Equal(got.LastSuccess))
}

func TestSchedulerStore_TaskUnknown(t *testing.T) {
	store := setupTestStore(t)

	task, err := store.SchedulerStore().Task(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestSchedulerStore_ZeroTimesRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	putTask(t, store, "fresh")

	task, err := store.SchedulerStore().Task(context.Background(), "fresh")
	require.NoError(t, err)
	assert.True(t, task.LastRun.IsZero())
	assert.True(t, task.NextRun.IsZero())
	assert.True(t, task.LastSuccess.IsZero())
}

func TestSchedulerStore_PutTask_Replaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	putTask(t, store, domain.TaskIDHistoryPrune)

	require.NoError(t, store.SchedulerStore().PutTask(ctx, &domain.MaintenanceTask{
		ID:    domain.TaskIDHistoryPrune,
		Every: 2 * time.Hour,
	}))

	task, err := store.SchedulerStore().Task(ctx, domain.TaskIDHistoryPrune)
	require.NoError(t, err)
	assert.False(t, task.Enabled)
	assert.Equal(t, 2*time.Hour, task.Every)
}

func TestSchedulerStore_InvalidInput(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	tasks := store.SchedulerStore()

	assert.ErrorIs(t, tasks.PutTask(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, tasks.PutTask(ctx, &domain.MaintenanceTask{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, tasks.AppendRun(ctx, nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, tasks.AppendRun(ctx, &domain.SweepRun{}), domain.ErrInvalidInput)
}

func TestSchedulerStore_TasksOrderedByID(t *testing.T) {
	store := setupTestStore(t)
	putTask(t, store, domain.TaskIDHistoryPrune)
	putTask(t, store, domain.TaskIDCacheSweep)

	tasks, err := store.SchedulerStore().Tasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, domain.TaskIDCacheSweep, tasks[0].ID)
	assert.Equal(t, domain.TaskIDHistoryPrune, tasks[1].ID)
}

func TestSchedulerStore_TasksEmpty(t *testing.T) {
	store := setupTestStore(t)

	tasks, err := store.SchedulerStore().Tasks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, tasks)
	assert.Empty(t, tasks)
}

func TestSchedulerStore_DeleteTaskDropsRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	putTask(t, store, domain.TaskIDCacheSweep)
	appendRun(t, store, domain.TaskIDCacheSweep, time.Now(), 1, "")

	require.NoError(t, store.SchedulerStore().DeleteTask(ctx, domain.TaskIDCacheSweep))

	task, err := store.SchedulerStore().Task(ctx, domain.TaskIDCacheSweep)
	require.NoError(t, err)
	assert.Nil(t, task)

	runs, err := store.SchedulerStore().RecentRuns(ctx, domain.TaskIDCacheSweep, 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestSchedulerStore_RecentRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	appendRun(t, store, domain.TaskIDCacheSweep, base, 12, "")
	appendRun(t, store, domain.TaskIDCacheSweep, base.Add(time.Minute), 0, "store down")
	appendRun(t, store, domain.TaskIDHistoryPrune, base, 2, "")

	runs, err := store.SchedulerStore().RecentRuns(ctx, domain.TaskIDCacheSweep, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.False(t, runs[0].OK())
	assert.Equal(t, "store down", runs[0].Error)
	assert.True(t, runs[1].OK())
	assert.Equal(t, 12, runs[1].Removed)
	assert.True(t, base.Equal(runs[1].StartedAt))
	assert.Equal(t, time.Millisecond, runs[1].Took())

	latest, err := store.SchedulerStore().RecentRuns(ctx, domain.TaskIDCacheSweep, 1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "store down", latest[0].Error)
}

func TestSchedulerStore_TrimRuns(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		appendRun(t, store, domain.TaskIDCacheSweep, base.Add(time.Duration(i)*time.Minute), i+1, "")
	}
	appendRun(t, store, domain.TaskIDHistoryPrune, base, 1, "")

	require.NoError(t, store.SchedulerStore().TrimRuns(ctx, 3))

	runs, err := store.SchedulerStore().RecentRuns(ctx, domain.TaskIDCacheSweep, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 10, runs[0].Removed)
	assert.Equal(t, 8, runs[2].Removed)

	other, err := store.SchedulerStore().RecentRuns(ctx, domain.TaskIDHistoryPrune, 0)
	require.NoError(t, err)
	assert.Len(t, other, 1, "trim is per task")
}

func TestSchedulerStore_Closed(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = store.SchedulerStore().Tasks(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestNanos(t *testing.T) {
	assert.Nil(t, nanos(time.Time{}))

	ts := time.Date(2026, 3, 1, 9, 30, 0, 500, time.FixedZone("CET", 3600))
	n, ok := nanos(ts).(int64)
	require.True(t, ok)
	assert.True(t, ts.Equal(fromNanos(n)))
	assert.Equal(t, time.UTC, fromNanos(n).Location())

	assert.True(t, fromNullNanos(sql.NullInt64{}).IsZero())
	assert.True(t, ts.Equal(fromNullNanos(sql.NullInt64{Int64: n, Valid: true})))
}
