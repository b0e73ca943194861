package strategy

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/utils"
	"encoding/json"
	"fmt"
	"time"
)

const defaultRetentionDays = 30

type DataCleanUpPayload struct {
	RetentionDays int `json:"retention_days"`
}

type DataCleanUpResult struct {
	Table string `json:"table"`
	Total int64  `json:"total"`
	Error string `json:"error,omitempty"`
}

type DataCleanUpStrategy struct {
	cfg                *config.Config
	log                *logger.Logger
	backtestResultRepo repository.BacktestResultRepository
	jobRepo            repository.JobRepository
}

func NewDataCleanUpStrategy(cfg *config.Config, log *logger.Logger, backtestResultRepo repository.BacktestResultRepository, jobRepo repository.JobRepository) *DataCleanUpStrategy {
	return &DataCleanUpStrategy{
		cfg:                cfg,
		log:                log,
		backtestResultRepo: backtestResultRepo,
		jobRepo:            jobRepo,
	}
}

// Execute deletes stored backtests and job histories older than the retention window.
// A failure on one table does not stop the other.
func (s *DataCleanUpStrategy) Execute(ctx context.Context, job Job) (JobResult, error) {
	s.log.InfoContext(ctx, "Starting data clean up", logger.StringField("job_name", job.Name))

	var payload DataCleanUpPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		s.log.ErrorContext(ctx, "Failed to unmarshal job payload", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to unmarshal job payload: %v", err)}, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if payload.RetentionDays <= 0 {
		payload.RetentionDays = defaultRetentionDays
	}

	date := time.Now().UTC().AddDate(0, 0, -payload.RetentionDays)
	cleaners := []struct {
		table string
		run   func(context.Context, time.Time) (int64, error)
	}{
		{"backtest_results", func(ctx context.Context, d time.Time) (int64, error) { return s.backtestResultRepo.DeleteOlderThan(ctx, d) }},
		{"task_execution_histories", func(ctx context.Context, d time.Time) (int64, error) { return s.jobRepo.DeleteTaskHistoryOlderThan(ctx, d) }},
	}

	outputMsg := make([]DataCleanUpResult, 0, len(cleaners))
	failed := 0
	for _, c := range cleaners {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		total, err := c.run(ctx, date)
		entry := DataCleanUpResult{Table: c.table, Total: total}
		if err != nil {
			failed++
			s.log.ErrorContext(ctx, "Failed to delete old rows", logger.ErrorField(err), logger.StringField("table", c.table))
			entry.Error = fmt.Sprintf("failed to delete %s older than %v: %v", c.table, date, err)
		}
		outputMsg = append(outputMsg, entry)
	}

	res, err := json.Marshal(outputMsg)
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to marshal output message", logger.ErrorField(err), logger.StringField("job_name", job.Name))
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: fmt.Sprintf("failed to marshal output message: %v", err)}, fmt.Errorf("failed to marshal output message: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(res)}, fmt.Errorf("data clean up interrupted: %w", err)
	}

	switch failed {
	case 0:
		return JobResult{ExitCode: JOB_EXIT_CODE_SUCCESS, Output: string(res)}, nil
	case len(cleaners):
		return JobResult{ExitCode: JOB_EXIT_CODE_FAILED, Output: string(res)}, fmt.Errorf("data clean up failed for every table")
	default:
		return JobResult{ExitCode: JOB_EXIT_CODE_PARTIAL_SUCCESS, Output: string(res)}, nil
	}
}

func (s *DataCleanUpStrategy) GetType() JobType {
	return JobTypeDataCleanUp
}
