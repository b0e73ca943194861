package service

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/internal/strategy"
	"crypto-signal-backtest/pkg/logger"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const (
	TriggerCron   = "cron"
	TriggerManual = "manual"

	defaultJobTimeout = 10 * time.Minute
)

// JobRecorder receives one call per finished job execution.
type JobRecorder interface {
	RecordJobRun(job, status string)
}

type TaskExecutor interface {
	Execute(ctx context.Context, job strategy.Job, trigger string) (*model.TaskExecutionHistory, error)
	Histories(ctx context.Context, param model.GetTaskExecutionHistoryParam) ([]model.TaskExecutionHistory, error)
}

type taskExecutor struct {
	cfg                *config.Config
	log                *logger.Logger
	jobRepo            repository.JobRepository
	recorder           JobRecorder
	executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy
}

func NewTaskExecutor(cfg *config.Config, log *logger.Logger, jobRepo repository.JobRepository, recorder JobRecorder, executorStrategies map[strategy.JobType]strategy.JobExecutionStrategy) TaskExecutor {
	return &taskExecutor{
		jobRepo:            jobRepo,
		cfg:                cfg,
		log:                log,
		recorder:           recorder,
		executorStrategies: executorStrategies,
	}
}

// Execute records a running history row, runs the job's strategy under the job timeout
// and stores the final status.
func (t *taskExecutor) Execute(ctx context.Context, job strategy.Job, trigger string) (*model.TaskExecutionHistory, error) {
	t.log.InfoContext(ctx, "Processing job",
		logger.StringField("job_name", job.Name),
		logger.StringField("job_type", string(job.Type)),
		logger.StringField("trigger", trigger))

	history := &model.TaskExecutionHistory{
		JobName:   job.Name,
		JobType:   string(job.Type),
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
		Status:    model.StatusRunning,
	}
	if err := t.jobRepo.CreateTaskExecutionHistory(ctx, history); err != nil {
		t.log.ErrorContext(ctx, "Failed to create task history", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return nil, fmt.Errorf("failed to create task history: %w", err)
	}

	timeout := job.Timeout
	if timeout <= 0 {
		timeout = defaultJobTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var runErr error
	executor := t.executorStrategies[job.Type]
	if executor == nil {
		t.log.ErrorContext(ctx, "Job type not found", logger.StringField("job_name", job.Name), logger.StringField("job_type", string(job.Type)))
		runErr = fmt.Errorf("job type %q not found", job.Type)
		history.Status = model.StatusFailed
		history.ErrorMessage = sql.NullString{String: runErr.Error(), Valid: true}
	} else {
		result, err := executor.Execute(runCtx, job)
		switch {
		case err != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded):
			history.Status = model.StatusTimeout
			history.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
			runErr = err
		case err != nil:
			history.Status = model.StatusFailed
			history.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
			runErr = err
		default:
			history.Status = model.StatusCompleted
		}
		history.ExitCode = sql.NullInt32{Int32: result.ExitCode, Valid: true}
		history.Output = sql.NullString{String: result.Output, Valid: true}
	}

	history.CompletedAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	t.recorder.RecordJobRun(job.Name, string(history.Status))

	// the run context may already be done, the history row must still be closed
	if err := t.jobRepo.UpdateTaskExecutionHistory(context.WithoutCancel(ctx), history); err != nil {
		t.log.ErrorContext(ctx, "Failed to update task execution history", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return history, fmt.Errorf("failed to update task execution history: %w", err)
	}

	if runErr != nil {
		return history, fmt.Errorf("job %s: %w", job.Name, runErr)
	}
	return history, nil
}

// Histories returns the latest executions, newest first. Limit defaults to 20.
func (t *taskExecutor) Histories(ctx context.Context, param model.GetTaskExecutionHistoryParam) ([]model.TaskExecutionHistory, error) {
	if param.Limit <= 0 || param.Limit > 100 {
		param.Limit = 20
	}
	histories, err := t.jobRepo.GetTaskExecutionHistories(ctx, param)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to get task execution histories", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to get task execution histories: %w", err)
	}
	return histories, nil
}
