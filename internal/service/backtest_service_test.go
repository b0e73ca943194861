package service

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/repository"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeCandles struct {
	mu     sync.Mutex
	bars   []dto.Bar
	err    error
	params []dto.GetCandleParam
}

func (f *fakeCandles) GetHistorical(_ context.Context, param dto.GetCandleParam) ([]dto.Bar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.params = append(f.params, param)
	return f.bars, f.err
}

type fakeEngine struct {
	mu      sync.Mutex
	configs []dto.SignalConfig
	empty   bool
}

func (f *fakeEngine) Run(_ context.Context, bars []dto.Bar, cfg dto.SignalConfig) *dto.BacktestResult {
	f.mu.Lock()
	f.configs = append(f.configs, cfg)
	f.mu.Unlock()
	if f.empty || len(bars) == 0 {
		return nil
	}
	exit := &dto.TradeExit{Price: 110, Time: t0.Add(2 * time.Hour), ProfitLoss: 10, Reason: dto.ExitReasonTarget1}
	return &dto.BacktestResult{
		Symbol:         cfg.Symbol,
		StartDate:      bars[0].Timestamp,
		EndDate:        bars[len(bars)-1].Timestamp,
		TotalBars:      len(bars),
		TotalSignals:   1,
		WinningSignals: 1,
		WinRate:        100,
		AvgProfit:      10,
		ProfitFactor:   10,
		StrategyPerformance: map[string]dto.StrategyPerformance{
			dto.StrategyMACDBullish: {Count: 1, WinCount: 1, ProfitSum: 10, WinRate: 100, ProfitFactor: 10},
		},
		Signals: []dto.Signal{{
			ID: "sig-1", Timestamp: t0.Add(time.Hour), Symbol: cfg.Symbol, Direction: dto.DirectionLong,
			Strategy: dto.StrategyMACDBullish, EntryPrice: 100, StopLoss: 95, Target1: 110, Target2: 120,
			RiskReward1: 2, RiskReward2: 4, Leverage: 5, RiskPercent: 1, Exit: exit,
		}},
		Config: cfg,
	}
}

type fakeResultRepo struct {
	repository.BacktestResultRepository
	created []*model.BacktestResult
	signals []model.BacktestSignal
	stored  *model.BacktestResult
	listed  model.GetBacktestResultParam
	err     error
}

func (f *fakeResultRepo) Create(_ context.Context, result *model.BacktestResult, _ ...utils.DBOption) error {
	if f.err != nil {
		return f.err
	}
	result.ID = uint(len(f.created) + 1)
	result.CreatedAt = t0
	f.created = append(f.created, result)
	return nil
}

func (f *fakeResultRepo) CreateSignals(_ context.Context, signals []model.BacktestSignal, _ ...utils.DBOption) error {
	f.signals = append(f.signals, signals...)
	return nil
}

func (f *fakeResultRepo) GetByID(_ context.Context, id uint, _ ...utils.DBOption) (*model.BacktestResult, error) {
	if f.stored == nil || f.stored.ID != id {
		return nil, repository.ErrBacktestResultNotFound
	}
	return f.stored, nil
}

func (f *fakeResultRepo) List(_ context.Context, param model.GetBacktestResultParam, _ ...utils.DBOption) ([]model.BacktestResult, error) {
	f.listed = param
	if f.stored == nil {
		return nil, nil
	}
	return []model.BacktestResult{*f.stored}, nil
}

type fakeUnitOfWork struct {
	runs int
}

func (f *fakeUnitOfWork) Run(_ context.Context, fn func(opts ...utils.DBOption) error) error {
	f.runs++
	return fn()
}

type fakeNotifier struct {
	sent []*dto.BacktestResult
}

func (f *fakeNotifier) NotifyBacktest(_ context.Context, result *dto.BacktestResult) error {
	f.sent = append(f.sent, result)
	return nil
}

type fakeRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
	signals  map[string]int
	jobs     map[string]string
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{outcomes: map[string]int{}, signals: map[string]int{}, jobs: map[string]string{}}
}

func (f *fakeRecorder) RecordRun(_ string, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[outcome]++
}

func (f *fakeRecorder) RecordSignals(byStrategy map[string]int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for k, v := range byStrategy {
		f.signals[k] += v
	}
}

func (f *fakeRecorder) RecordWinRate(string, float64) {}

func (f *fakeRecorder) RecordJobRun(job, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs[job] = status
}

func testConfig() *config.Config {
	return &config.Config{Backtest: config.Backtest{
		Exchange:       "binance",
		Timeframe:      "4h",
		Days:           14,
		MaxConcurrency: 2,
	}}
}

func hourlyBars(n int) []dto.Bar {
	bars := make([]dto.Bar, n)
	for i := range bars {
		bars[i] = dto.Bar{Timestamp: t0.Add(time.Duration(i) * time.Hour), Open: 100, High: 101, Low: 99, Close: 100}
	}
	return bars
}

type harness struct {
	candles  *fakeCandles
	engine   *fakeEngine
	repo     *fakeResultRepo
	uow      *fakeUnitOfWork
	notifier *fakeNotifier
	recorder *fakeRecorder
	svc      BacktestService
}

func newHarness(cfg *config.Config) *harness {
	h := &harness{
		candles:  &fakeCandles{bars: hourlyBars(5)},
		engine:   &fakeEngine{},
		repo:     &fakeResultRepo{},
		uow:      &fakeUnitOfWork{},
		notifier: &fakeNotifier{},
		recorder: newFakeRecorder(),
	}
	h.svc = NewBacktestService(cfg, logger.NewNop(), h.candles, h.engine, h.repo, h.uow, h.notifier, h.recorder)
	return h
}

func TestRunBacktest_AppliesDefaults(t *testing.T) {
	h := newHarness(testConfig())

	result, err := h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: " btc/usdt "})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "BINANCE", result.Exchange)
	assert.Equal(t, "4h", result.Timeframe)
	assert.Equal(t, 14, result.Days)
	assert.Equal(t, "BTC/USDT", result.Symbol)

	require.Len(t, h.candles.params, 1)
	assert.Equal(t, dto.GetCandleParam{Exchange: "BINANCE", Symbol: "BTC/USDT", Timeframe: "4h", Days: 14}, h.candles.params[0])

	cfg := h.engine.configs[0]
	assert.Equal(t, "BTC/USDT", cfg.Symbol)
	assert.Equal(t, 12, cfg.MACDFast)
	assert.Equal(t, 2.0, cfg.ATRMultiplier)
	assert.True(t, cfg.MACDEnabled())
	assert.False(t, cfg.CombinedEnabled())

	assert.Equal(t, 0, h.uow.runs, "not saved unless requested")
	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, 1, h.recorder.outcomes[OutcomeOK])
	assert.Equal(t, 1, h.recorder.signals[dto.StrategyMACDBullish])
}

func TestRunBacktest_Unavailable(t *testing.T) {
	h := newHarness(testConfig())
	h.candles.err = repository.ErrNoCandles

	result, err := h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: "BTC/USDT"})
	assert.NoError(t, err)
	assert.Nil(t, result)

	h = newHarness(testConfig())
	h.engine.empty = true
	result, err = h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: "BTC/USDT", Save: true, Notify: true})
	assert.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, 0, h.uow.runs)
	assert.Empty(t, h.notifier.sent)
	assert.Equal(t, 1, h.recorder.outcomes[OutcomeUnavailable])
}

func TestRunBacktest_SaveAndNotify(t *testing.T) {
	h := newHarness(testConfig())

	result, err := h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: "ETH/USDT", Timeframe: "1h", Days: 3, Save: true, Notify: true})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, uint(1), result.ID)
	assert.Equal(t, t0, result.CreatedAt)
	assert.Equal(t, 1, h.uow.runs)
	require.Len(t, h.repo.signals, 1)
	assert.Equal(t, uint(1), h.repo.signals[0].BacktestResultID)
	assert.Equal(t, "Target 1", h.repo.signals[0].ExitReason.String)
	require.Len(t, h.notifier.sent, 1)
	assert.Same(t, result, h.notifier.sent[0])
}

func TestRunBacktest_SaveFailureKeepsResult(t *testing.T) {
	h := newHarness(testConfig())
	h.repo.err = errors.New("db down")

	result, err := h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: "ETH/USDT", Save: true})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Zero(t, result.ID)
}

func TestRunBacktest_InvalidRequest(t *testing.T) {
	h := newHarness(testConfig())

	cases := []dto.BacktestRequest{
		{},
		{Symbol: "BTC/USDT", Timeframe: "7m"},
		{Symbol: "BTC/USDT", Days: 1000},
		{Symbol: "BTC/USDT", Exchange: "kraken"},
		{Symbol: "BTC/USDT", Config: dto.SignalConfig{MACDFast: 30, MACDSlow: 20}},
	}
	for _, req := range cases {
		result, err := h.svc.RunBacktest(context.Background(), req)
		assert.Nil(t, result)
		require.ErrorIs(t, err, ErrInvalidRequest)
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	}
	assert.Empty(t, h.candles.params)
}

func TestRunBatch_KeepsOrder(t *testing.T) {
	h := newHarness(testConfig())

	results, err := h.svc.RunBatch(context.Background(), []dto.BacktestRequest{
		{Symbol: "BTC/USDT"}, {Symbol: "ETH/USDT"}, {Symbol: "SOL/USDT"},
	})

	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "BTC/USDT", results[0].Symbol)
	assert.Equal(t, "ETH/USDT", results[1].Symbol)
	assert.Equal(t, "SOL/USDT", results[2].Symbol)

	_, err = h.svc.RunBatch(context.Background(), []dto.BacktestRequest{{Symbol: "BTC/USDT"}, {}})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestGetResult_RoundTrip(t *testing.T) {
	h := newHarness(testConfig())
	run, err := h.svc.RunBacktest(context.Background(), dto.BacktestRequest{Symbol: "BTC/USDT", Save: true})
	require.NoError(t, err)

	stored := h.repo.created[0]
	stored.Signals = h.repo.signals
	h.repo.stored = stored

	got, err := h.svc.GetResult(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.StrategyPerformance, got.StrategyPerformance)
	assert.Equal(t, run.Config.MACDSlow, got.Config.MACDSlow)
	require.Len(t, got.Signals, 1)
	assert.Equal(t, run.Signals[0].Exit, got.Signals[0].Exit)
	assert.Equal(t, dto.DirectionLong, got.Signals[0].Direction)

	_, err = h.svc.GetResult(context.Background(), 99)
	assert.ErrorIs(t, err, repository.ErrBacktestResultNotFound)

	list, err := h.svc.ListResults(context.Background(), dto.GetBacktestResultsParam{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 10, h.repo.listed.Limit)
	assert.False(t, h.repo.listed.WithSignals)

	list, err = h.svc.ListResults(context.Background(), dto.GetBacktestResultsParam{Symbol: "btc/usdt", WithSignals: true})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "BTC/USDT", h.repo.listed.Symbol)
	assert.True(t, h.repo.listed.WithSignals)
	assert.Len(t, list[0].Signals, 1)

	_, err = h.svc.ListResults(context.Background(), dto.GetBacktestResultsParam{Limit: 500})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}
