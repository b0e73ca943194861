package service

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/contract"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/pkg/common"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"
)

const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var ErrInvalidRequest = errors.New("invalid backtest request")

// NewValidator returns a validator that also knows the "exchange" tag.
func NewValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("exchange", func(fl validator.FieldLevel) bool {
		return slices.Contains(common.GetExchangeList(), strings.ToUpper(fl.Field().String()))
	})
	return v
}

// BacktestRunner is the engine entry point. A nil result means nothing could be evaluated.
type BacktestRunner interface {
	Run(ctx context.Context, bars []dto.Bar, cfg dto.SignalConfig) *dto.BacktestResult
}

// BacktestRecorder receives run level metrics.
type BacktestRecorder interface {
	RecordRun(symbol, outcome string, elapsed time.Duration)
	RecordSignals(byStrategy map[string]int)
	RecordWinRate(symbol string, winRate float64)
}

// BacktestService mendefinisikan interface untuk layanan backtesting.
type BacktestService interface {
	RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error)
	RunBatch(ctx context.Context, reqs []dto.BacktestRequest) ([]*dto.BacktestResult, error)
	ListResults(ctx context.Context, param dto.GetBacktestResultsParam) ([]dto.BacktestResult, error)
	GetResult(ctx context.Context, id uint) (*dto.BacktestResult, error)
}

type backtestService struct {
	cfg        *config.Config
	log        *logger.Logger
	validate   *validator.Validate
	candles    contract.CandleProvider
	engine     BacktestRunner
	resultRepo repository.BacktestResultRepository
	uow        repository.UnitOfWork
	notifier   contract.Notifier
	recorder   BacktestRecorder
}

// NewBacktestService membuat instance baru dari backtestService. notifier may be nil
// when no notification channel is configured.
func NewBacktestService(
	cfg *config.Config,
	log *logger.Logger,
	candles contract.CandleProvider,
	engine BacktestRunner,
	resultRepo repository.BacktestResultRepository,
	uow repository.UnitOfWork,
	notifier contract.Notifier,
	recorder BacktestRecorder,
) BacktestService {
	return &backtestService{
		cfg:        cfg,
		log:        log,
		validate:   NewValidator(),
		candles:    candles,
		engine:     engine,
		resultRepo: resultRepo,
		uow:        uow,
		notifier:   notifier,
		recorder:   recorder,
	}
}

// RunBacktest mengambil data candle, menjalankan engine, lalu menyimpan dan mengirim hasilnya.
// It returns (nil, nil) when no data could be fetched or the engine produced nothing.
func (s *backtestService) RunBacktest(ctx context.Context, req dto.BacktestRequest) (*dto.BacktestResult, error) {
	start := time.Now()

	if err := s.prepare(&req); err != nil {
		return nil, err
	}

	if s.cfg.Backtest.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Backtest.Timeout)
		defer cancel()
	}

	log := s.log.With(
		logger.StringField("symbol", req.Symbol),
		logger.StringField("exchange", req.Exchange),
		logger.StringField("timeframe", req.Timeframe),
		logger.IntField("days", req.Days),
	)
	ctx = logger.NewContext(ctx, log)

	bars, err := s.candles.GetHistorical(ctx, dto.GetCandleParam{
		Exchange:  req.Exchange,
		Symbol:    req.Symbol,
		Timeframe: req.Timeframe,
		Days:      req.Days,
		EndTime:   req.EndTime,
	})
	if err != nil {
		log.WarnContext(ctx, "Backtest unavailable, failed to fetch candles", logger.ErrorField(err))
		s.recorder.RecordRun(req.Symbol, OutcomeUnavailable, time.Since(start))
		return nil, nil
	}

	result := s.engine.Run(ctx, bars, req.Config)
	if result == nil {
		log.WarnContext(ctx, "Backtest unavailable, engine returned no result", logger.IntField("bars", len(bars)))
		s.recorder.RecordRun(req.Symbol, OutcomeUnavailable, time.Since(start))
		return nil, nil
	}
	result.Exchange = req.Exchange
	result.Timeframe = req.Timeframe
	result.Days = req.Days

	if req.Save {
		if err := s.save(ctx, result); err != nil {
			log.ErrorContextWithAlert(ctx, "Failed to save backtest result", logger.ErrorField(err))
		}
	}

	if req.Notify && s.notifier != nil {
		if err := s.notifier.NotifyBacktest(ctx, result); err != nil {
			log.WarnContext(ctx, "Failed to send backtest notification", logger.ErrorField(err))
		}
	}

	s.recorder.RecordRun(req.Symbol, OutcomeOK, time.Since(start))
	s.recorder.RecordWinRate(req.Symbol, result.WinRate)
	byStrategy := make(map[string]int, len(result.StrategyPerformance))
	for name, perf := range result.StrategyPerformance {
		byStrategy[name] = perf.Count
	}
	s.recorder.RecordSignals(byStrategy)

	log.InfoContext(ctx, "Backtest finished",
		logger.IntField("bars", result.TotalBars),
		logger.IntField("signals", result.TotalSignals),
		logger.FloatField("win_rate", result.WinRate),
		logger.FloatField("profit_factor", result.ProfitFactor),
		logger.DurationField("elapsed", time.Since(start)),
	)
	return result, nil
}

// prepare fills empty fields from config and tag defaults, then validates.
func (s *backtestService) prepare(req *dto.BacktestRequest) error {
	req.Symbol = strings.ToUpper(strings.TrimSpace(req.Symbol))
	req.Exchange = strings.ToUpper(req.Exchange)
	if req.Exchange == "" {
		req.Exchange = strings.ToUpper(s.cfg.Backtest.Exchange)
	}
	if req.Timeframe == "" {
		req.Timeframe = s.cfg.Backtest.Timeframe
	}
	if req.Days == 0 {
		req.Days = s.cfg.Backtest.Days
	}

	if err := defaults.Set(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if err := defaults.Set(&req.Config); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if req.Config.Symbol == "" {
		req.Config.Symbol = req.Symbol
	}

	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}

func (s *backtestService) save(ctx context.Context, result *dto.BacktestResult) error {
	row, err := toBacktestResultModel(result)
	if err != nil {
		return err
	}

	err = s.uow.Run(ctx, func(opts ...utils.DBOption) error {
		if err := s.resultRepo.Create(ctx, row, opts...); err != nil {
			return fmt.Errorf("create backtest result: %w", err)
		}
		signals := toBacktestSignalModels(row.ID, result.Signals)
		if err := s.resultRepo.CreateSignals(ctx, signals, opts...); err != nil {
			return fmt.Errorf("create backtest signals: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	result.ID = row.ID
	result.CreatedAt = row.CreatedAt
	return nil
}

// RunBatch runs reqs concurrently, at most Backtest.MaxConcurrency at a time. The
// result slice is aligned with reqs; unavailable backtests are nil entries.
func (s *backtestService) RunBatch(ctx context.Context, reqs []dto.BacktestRequest) ([]*dto.BacktestResult, error) {
	results := make([]*dto.BacktestResult, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.Backtest.MaxConcurrency > 0 {
		g.SetLimit(s.cfg.Backtest.MaxConcurrency)
	}

	for i := range reqs {
		i := i
		g.Go(func() error {
			result, err := s.RunBacktest(gctx, reqs[i])
			if err != nil {
				return fmt.Errorf("backtest %s: %w", reqs[i].Symbol, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (s *backtestService) ListResults(ctx context.Context, param dto.GetBacktestResultsParam) ([]dto.BacktestResult, error) {
	if err := defaults.Set(&param); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(param); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	rows, err := s.resultRepo.List(ctx, model.GetBacktestResultParam{
		Symbol:      strings.ToUpper(param.Symbol),
		Limit:       param.Limit,
		WithSignals: param.WithSignals,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to list backtest results", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to list backtest results: %w", err)
	}

	results := make([]dto.BacktestResult, 0, len(rows))
	for i := range rows {
		result, err := toBacktestResultDTO(&rows[i])
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (s *backtestService) GetResult(ctx context.Context, id uint) (*dto.BacktestResult, error) {
	row, err := s.resultRepo.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrBacktestResultNotFound) {
			s.log.ErrorContext(ctx, "Failed to get backtest result", logger.ErrorField(err), logger.IntField("id", int(id)))
		}
		return nil, err
	}
	return toBacktestResultDTO(row)
}
