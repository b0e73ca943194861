package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 1000, cfg.Binance.PageLimit)
	assert.Equal(t, 15*time.Second, cfg.Binance.Timeout)
	assert.Equal(t, "BINANCE", cfg.Market.DefaultExchange)
	assert.Equal(t, []string{"YAHOO"}, cfg.Market.FallbackExchanges)
	assert.Equal(t, "1h", cfg.Backtest.Timeframe)
	assert.Equal(t, 30, cfg.Backtest.Days)
	assert.Equal(t, 2*time.Minute, cfg.Backtest.Timeout)
	assert.False(t, cfg.Telegram.Enabled)
}

func TestLoad_ReadsYAMLAndJobs(t *testing.T) {
	dir := t.TempDir()
	yaml := `
backtest:
  timeframe: 4h
  symbols: [ETH/USDT]
scheduler:
  enabled: true
  jobs:
    - name: daily_backtest
      type: backtest
      cron: "0 1 * * *"
      timeout: 30m
      payload:
        days: 90
        save: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "4h", cfg.Backtest.Timeframe)
	assert.Equal(t, []string{"ETH/USDT"}, cfg.Backtest.Symbols)
	assert.Equal(t, 30, cfg.Backtest.Days)
	require.Len(t, cfg.Scheduler.Jobs, 1)

	job := cfg.Scheduler.Jobs[0]
	assert.Equal(t, "daily_backtest", job.Name)
	assert.Equal(t, "0 1 * * *", job.CronExpression)
	assert.Equal(t, 30*time.Minute, job.Timeout)
	assert.EqualValues(t, 90, job.Payload["days"])
	assert.Equal(t, true, job.Payload["save"])
}
