package repository

import (
	"context"
	"crypto-signal-backtest/internal/model"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHistory(job string, started time.Time) *model.TaskExecutionHistory {
	return &model.TaskExecutionHistory{
		JobName:   job,
		JobType:   "backtest",
		Trigger:   "cron",
		StartedAt: started,
		Status:    model.StatusRunning,
		CreatedAt: started,
	}
}

func TestJobRepository_Histories(t *testing.T) {
	ctx := context.Background()
	repo := NewJobRepository(newTestDB(t))

	first := newHistory("daily_backtest", day0)
	second := newHistory("daily_backtest", day0.Add(time.Hour))
	cleanup := newHistory("weekly_cleanup", day0.Add(2*time.Hour))
	for _, h := range []*model.TaskExecutionHistory{first, second, cleanup} {
		require.NoError(t, repo.CreateTaskExecutionHistory(ctx, h))
		require.NotZero(t, h.ID)
	}

	done := day0.Add(5 * time.Minute)
	first.Status = model.StatusCompleted
	first.CompletedAt = sql.NullTime{Time: done, Valid: true}
	first.ExitCode = sql.NullInt32{Int32: 0, Valid: true}
	first.Output = sql.NullString{String: `{"runs":2}`, Valid: true}
	require.NoError(t, repo.UpdateTaskExecutionHistory(ctx, first))

	got, err := repo.GetTaskExecutionHistories(ctx, model.GetTaskExecutionHistoryParam{JobName: "daily_backtest", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID, "latest run first")
	assert.Equal(t, model.StatusRunning, got[0].Status)
	assert.Equal(t, model.StatusCompleted, got[1].Status)
	require.True(t, got[1].CompletedAt.Valid)
	assert.True(t, done.Equal(got[1].CompletedAt.Time))
	assert.Equal(t, `{"runs":2}`, got[1].Output.String)

	got, err = repo.GetTaskExecutionHistories(ctx, model.GetTaskExecutionHistoryParam{Limit: 2})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, cleanup.ID, got[0].ID)
	assert.Equal(t, second.ID, got[1].ID)

	n, err := repo.DeleteTaskHistoryOlderThan(ctx, day0.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err = repo.GetTaskExecutionHistories(ctx, model.GetTaskExecutionHistoryParam{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "weekly_cleanup", got[0].JobName)
}
