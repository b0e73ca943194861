package repository

import (
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/pkg/cache"
	"crypto-signal-backtest/pkg/common"
	"crypto-signal-backtest/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	BinanceRepo        BinanceRepository
	YahooFinanceRepo   YahooFinanceRepository
	CandleRepo         CandleRepository
	BacktestResultRepo BacktestResultRepository
	JobRepo            JobRepository
	UnitOfWork         UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger, c cache.Cache, recorder FetchErrorRecorder) *Repository {
	binanceRepo := NewBinanceRepository(cfg, log)
	yahooRepo := NewYahooFinanceRepository(cfg, log)
	candleRepo := NewCandleRepository(cfg, log, c, recorder, map[string]CandleSource{
		common.EXCHANGE_BINANCE: binanceRepo,
		common.EXCHANGE_YAHOO:   yahooRepo,
	})

	return &Repository{
		BinanceRepo:        binanceRepo,
		YahooFinanceRepo:   yahooRepo,
		CandleRepo:         candleRepo,
		BacktestResultRepo: NewBacktestResultRepository(db, c),
		JobRepo:            NewJobRepository(db),
		UnitOfWork:         NewUnitOfWork(db),
	}
}
