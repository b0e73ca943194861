package strategy

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/pkg/common"
	"encoding/json"
	"fmt"
	"time"
)

const (
	JOB_EXIT_CODE_SUCCESS         = 200
	JOB_EXIT_CODE_FAILED          = 500
	JOB_EXIT_CODE_SKIPPED         = 204
	JOB_EXIT_CODE_PARTIAL_SUCCESS = 206
)

type JobType string

const (
	JobTypeBacktest    JobType = common.JOB_TYPE_BACKTEST
	JobTypeDataCleanUp JobType = common.JOB_TYPE_DATA_CLEANUP
)

// Job is one configured unit of scheduled work.
type Job struct {
	Name    string
	Type    JobType
	Cron    string
	Timeout time.Duration
	Payload json.RawMessage
}

// JobFromConfig converts a scheduler entry, re-encoding its free-form payload as JSON.
func JobFromConfig(j config.ScheduledJob) (Job, error) {
	payload := json.RawMessage("{}")
	if len(j.Payload) > 0 {
		raw, err := json.Marshal(j.Payload)
		if err != nil {
			return Job{}, fmt.Errorf("marshal payload of job %s: %w", j.Name, err)
		}
		payload = raw
	}

	return Job{
		Name:    j.Name,
		Type:    JobType(j.Type),
		Cron:    j.CronExpression,
		Timeout: j.Timeout,
		Payload: payload,
	}, nil
}

type JobResult struct {
	ExitCode int32  `json:"exit_code"`
	Output   string `json:"output"`
}

// JobExecutionStrategy defines the interface for different job execution strategies.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job Job) (JobResult, error)
	GetType() JobType
}
