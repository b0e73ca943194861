package repository

import (
	"context"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/pkg/utils"
	"time"

	"gorm.io/gorm"
)

type JobRepository interface {
	CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error
	GetTaskExecutionHistories(ctx context.Context, param model.GetTaskExecutionHistoryParam, opts ...utils.DBOption) ([]model.TaskExecutionHistory, error)
	DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type jobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) JobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Create(history).Error
}

func (r *jobRepository) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Save(history).Error
}

func (r *jobRepository) GetTaskExecutionHistories(ctx context.Context, param model.GetTaskExecutionHistoryParam, opts ...utils.DBOption) ([]model.TaskExecutionHistory, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if param.JobName != "" {
		db = db.Where("job_name = ?", param.JobName)
	}

	var histories []model.TaskExecutionHistory
	err := utils.ApplyOptions(db, utils.WithOrder("started_at DESC"), utils.WithLimit(param.Limit)).
		Find(&histories).Error
	if err != nil {
		return nil, err
	}
	return histories, nil
}

func (r *jobRepository) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	res := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
		Where("created_at < ?", date).
		Delete(&model.TaskExecutionHistory{})
	return res.RowsAffected, res.Error
}
