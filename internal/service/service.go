package service

import (
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/contract"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/internal/strategy"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/metrics"
)

type Service struct {
	BacktestService  BacktestService
	SchedulerService SchedulerService
	TaskExecutor     TaskExecutor
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	engine BacktestRunner,
	notifier contract.Notifier,
	recorder *metrics.Recorder,
) *Service {
	backtestService := NewBacktestService(cfg, log, repo.CandleRepo, engine, repo.BacktestResultRepo, repo.UnitOfWork, notifier, recorder)

	executorStrategies := make(map[strategy.JobType]strategy.JobExecutionStrategy)
	executorStrategies[strategy.JobTypeBacktest] = strategy.NewBacktestJobStrategy(cfg, log, backtestService)
	executorStrategies[strategy.JobTypeDataCleanUp] = strategy.NewDataCleanUpStrategy(cfg, log, repo.BacktestResultRepo, repo.JobRepo)

	taskExecutor := NewTaskExecutor(cfg, log, repo.JobRepo, recorder, executorStrategies)
	schedulerService := NewSchedulerService(cfg, log, taskExecutor)

	return &Service{
		BacktestService:  backtestService,
		SchedulerService: schedulerService,
		TaskExecutor:     taskExecutor,
	}
}
