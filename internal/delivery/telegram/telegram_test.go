package telegram

import (
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/model"
	"crypto-signal-backtest/internal/strategy"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBacktestArgs(t *testing.T) {
	req, err := parseBacktestArgs([]string{"btc/usdt"})
	require.NoError(t, err)
	assert.Equal(t, dto.BacktestRequest{Symbol: "BTC/USDT"}, req)

	req, err = parseBacktestArgs([]string{"ETHUSDT", "4h", "60"})
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", req.Symbol)
	assert.Equal(t, "4h", req.Timeframe)
	assert.Equal(t, 60, req.Days)

	req, err = parseBacktestArgs([]string{"SOL/USDT", "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, req.Days)
	assert.Empty(t, req.Timeframe)

	_, err = parseBacktestArgs(nil)
	assert.Error(t, err)

	_, err = parseBacktestArgs([]string{"BTC/USDT", "fortnight"})
	assert.ErrorContains(t, err, "unknown timeframe")
}

func TestFormatResultList(t *testing.T) {
	assert.Contains(t, formatResultList(nil), "No saved backtests")

	out := formatResultList([]dto.BacktestResult{{ID: 3, Symbol: "BTC/USDT", Timeframe: "1h", Days: 30, TotalSignals: 12, WinRate: 58.33, ProfitFactor: 1.8}})
	assert.Contains(t, out, "#3 BTC/USDT 1h 30d | 12 signals | win 58.33% | PF 1.80")
}

func TestFormatJobList(t *testing.T) {
	started := time.Date(2024, 5, 1, 1, 0, 0, 0, time.UTC)
	jobs := []strategy.Job{
		{Name: "daily_backtest", Type: strategy.JobTypeBacktest, Cron: "0 1 * * *"},
		{Name: "cleanup", Type: strategy.JobTypeDataCleanUp},
	}
	histories := []model.TaskExecutionHistory{
		{JobName: "daily_backtest", Status: model.StatusFailed, StartedAt: started.Add(24 * time.Hour)},
		{JobName: "daily_backtest", Status: model.StatusCompleted, StartedAt: started},
	}

	out := formatJobList(jobs, histories)
	assert.Contains(t, out, "• daily_backtest (backtest) 0 1 * * *")
	assert.Contains(t, out, "last: 🔴 FAILED 05/02 01:00")
	assert.NotContains(t, out, "COMPLETED")
	assert.Contains(t, out, "• cleanup (data_clean_up) manual only")
}
