package dto

import (
	"encoding/json"
	"time"
)

// JobInfo describes a configured job as exposed over HTTP.
type JobInfo struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Cron    string          `json:"cron,omitempty"`
	Timeout string          `json:"timeout,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type GetJobHistoriesParam struct {
	JobName string `query:"job_name"`
	Limit   int    `query:"limit" default:"20"`
}

type JobHistory struct {
	ID           uint       `json:"id"`
	JobName      string     `json:"job_name"`
	JobType      string     `json:"job_type"`
	Trigger      string     `json:"trigger"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	ExitCode     *int32     `json:"exit_code,omitempty"`
	Output       string     `json:"output,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
}
