package repository

import (
	"context"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/pkg/cache"
	"crypto-signal-backtest/pkg/common"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

var ErrBacktestResultNotFound = errors.New("backtest result not found")

type BacktestResultRepository interface {
	Create(ctx context.Context, result *model.BacktestResult, opts ...utils.DBOption) error
	CreateSignals(ctx context.Context, signals []model.BacktestSignal, opts ...utils.DBOption) error
	List(ctx context.Context, param model.GetBacktestResultParam, opts ...utils.DBOption) ([]model.BacktestResult, error)
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.BacktestResult, error)
	DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error)
}

type backtestResultRepository struct {
	db    *gorm.DB
	cache cache.Cache
}

// NewBacktestResultRepository caches GetByID lookups in c. Saved results never change,
// so entries only go away on expiry or DeleteOlderThan.
func NewBacktestResultRepository(db *gorm.DB, c cache.Cache) BacktestResultRepository {
	return &backtestResultRepository{db: db, cache: c}
}

// Create inserts the summary row only. Signals go through CreateSignals so both can
// share one transaction.
func (r *backtestResultRepository) Create(ctx context.Context, result *model.BacktestResult, opts ...utils.DBOption) error {
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).Omit("Signals").Create(result).Error
}

func (r *backtestResultRepository) CreateSignals(ctx context.Context, signals []model.BacktestSignal, opts ...utils.DBOption) error {
	if len(signals) == 0 {
		return nil
	}
	return utils.ApplyOptions(r.db.WithContext(ctx), opts...).CreateInBatches(signals, 200).Error
}

// List returns the newest results first, without their signals unless asked for.
func (r *backtestResultRepository) List(ctx context.Context, param model.GetBacktestResultParam, opts ...utils.DBOption) ([]model.BacktestResult, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...)
	if param.Symbol != "" {
		db = db.Where("symbol = ?", param.Symbol)
	}
	if param.WithSignals {
		db = db.Preload("Signals", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp ASC")
		})
	}

	var results []model.BacktestResult
	err := utils.ApplyOptions(db, utils.WithOrder("created_at DESC"), utils.WithLimit(param.Limit)).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *backtestResultRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*model.BacktestResult, error) {
	return cache.Load(r.cache, fmt.Sprintf(common.KEY_BACKTEST_RESULT, id), func() (*model.BacktestResult, error) {
		var result model.BacktestResult
		err := utils.ApplyOptions(r.db.WithContext(ctx), opts...).
			Preload("Signals", func(db *gorm.DB) *gorm.DB {
				return db.Order("timestamp ASC")
			}).
			First(&result, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBacktestResultNotFound
		}
		if err != nil {
			return nil, err
		}
		return &result, nil
	})
}

// DeleteOlderThan removes results created before date. Signals follow through the
// ON DELETE CASCADE foreign key.
func (r *backtestResultRepository) DeleteOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	db := utils.ApplyOptions(r.db.WithContext(ctx), opts...).Session(&gorm.Session{})

	var ids []uint
	if err := db.Model(&model.BacktestResult{}).Where("created_at < ?", date).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	res := db.Where("id IN ?", ids).Delete(&model.BacktestResult{})
	if res.Error != nil {
		return 0, res.Error
	}
	for _, id := range ids {
		r.cache.Delete(fmt.Sprintf(common.KEY_BACKTEST_RESULT, id))
	}
	return res.RowsAffected, nil
}
