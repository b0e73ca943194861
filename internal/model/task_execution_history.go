package model

import (
	"database/sql"
	"time"
)

type TaskExecutionStatus string

const (
	StatusRunning   TaskExecutionStatus = "running"
	StatusCompleted TaskExecutionStatus = "completed"
	StatusFailed    TaskExecutionStatus = "failed"
	StatusTimeout   TaskExecutionStatus = "timeout"
)

// TaskExecutionHistory is one run of a configured job.
type TaskExecutionHistory struct {
	ID           uint                `gorm:"primaryKey" json:"id"`
	JobName      string              `gorm:"type:varchar(255);not null" json:"job_name"`
	JobType      string              `gorm:"type:varchar(50);not null" json:"job_type"`
	Trigger      string              `gorm:"type:varchar(20);not null;default:'cron'" json:"trigger"`
	StartedAt    time.Time           `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime        `json:"completed_at"`
	Status       TaskExecutionStatus `gorm:"type:varchar(50);not null" json:"status"`
	ExitCode     sql.NullInt32       `json:"exit_code"`
	Output       sql.NullString      `gorm:"type:text" json:"output"`
	ErrorMessage sql.NullString      `gorm:"type:text" json:"error_message"`
	CreatedAt    time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

func (TaskExecutionHistory) TableName() string {
	return "task_execution_histories"
}

type GetTaskExecutionHistoryParam struct {
	JobName string
	Limit   int
}
