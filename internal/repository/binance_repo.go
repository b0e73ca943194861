package repository

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/httpclient"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/ratelimit"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

const binanceMaxPageLimit = 1000

type BinanceRepository interface {
	GetKlines(ctx context.Context, symbol string, interval string, limit int, startTime, endTime int64) ([]dto.Kline, error)
	GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error)
}

type binanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewBinanceRepository(cfg *config.Config, log *logger.Logger) BinanceRepository {
	return &binanceRepository{
		httpClient:     httpclient.New(cfg.Binance.BaseURL, cfg.Binance.Timeout, httpclient.WithRetry(2, time.Second)),
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.PerMinute(cfg.Binance.MaxRequestPerMinute),
	}
}

// GetKlines fetches one page of /api/v3/klines. Times are unix milliseconds.
func (r *binanceRepository) GetKlines(ctx context.Context, symbol string, interval string, limit int, startTime, endTime int64) ([]dto.Kline, error) {
	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	queryParams := map[string]string{
		"symbol":    symbol,
		"interval":  interval,
		"limit":     strconv.Itoa(limit),
		"startTime": strconv.FormatInt(startTime, 10),
		"endTime":   strconv.FormatInt(endTime, 10),
	}

	var raw [][]json.RawMessage
	resp, err := r.httpClient.Get(ctx, "/api/v3/klines", queryParams, &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch klines from binance: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.ErrorContext(ctx, "Binance API returned Non-OK status for klines",
			logger.StringField("symbol", symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("binance api returned status: %d", resp.StatusCode)
	}

	klines := make([]dto.Kline, 0, len(raw))
	for i, row := range raw {
		k, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("failed to parse kline %d for %s: %w", i, symbol, err)
		}
		klines = append(klines, k)
	}
	return klines, nil
}

// GetHistorical pages through closed klines from param.StartTime up to, but not
// including, param.EndTime.
func (r *binanceRepository) GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error) {
	symbol := dto.BinanceSymbol(param.Symbol)
	pageLimit := r.cfg.Binance.PageLimit
	if pageLimit <= 0 || pageLimit > binanceMaxPageLimit {
		pageLimit = binanceMaxPageLimit
	}

	// endTime is inclusive on Binance. EndTime is the open of the candle that is
	// still forming, so stop one millisecond short of it.
	cursor := param.StartTime().UnixMilli()
	end := param.EndTime.UnixMilli() - 1

	var bars []dto.Bar
	for cursor < end {
		klines, err := r.GetKlines(ctx, symbol, param.Timeframe, pageLimit, cursor, end)
		if err != nil {
			return nil, err
		}
		for _, k := range klines {
			bars = append(bars, k.Bar())
		}

		if len(klines) < pageLimit {
			break
		}
		cursor = klines[len(klines)-1].OpenTime + 1
	}

	r.logger.DebugContext(ctx, "Fetched klines from binance",
		logger.StringField("symbol", symbol),
		logger.StringField("interval", param.Timeframe),
		logger.IntField("bars", len(bars)))

	return bars, nil
}

// parseKline decodes one kline row: numbers for times and counts, strings for prices.
func parseKline(row []json.RawMessage) (dto.Kline, error) {
	if len(row) < 11 {
		return dto.Kline{}, fmt.Errorf("expected 11 fields, got %d", len(row))
	}

	var k dto.Kline
	ints := []struct {
		idx int
		dst *int64
	}{{0, &k.OpenTime}, {6, &k.CloseTime}, {8, &k.Trades}}
	for _, f := range ints {
		if err := json.Unmarshal(row[f.idx], f.dst); err != nil {
			return k, fmt.Errorf("field %d: %w", f.idx, err)
		}
	}

	floats := []struct {
		idx int
		dst *float64
	}{
		{1, &k.Open}, {2, &k.High}, {3, &k.Low}, {4, &k.Close}, {5, &k.Volume},
		{7, &k.QuoteVolume}, {9, &k.TakerBase}, {10, &k.TakerQuote},
	}
	for _, f := range floats {
		var s string
		if err := json.Unmarshal(row[f.idx], &s); err != nil {
			return k, fmt.Errorf("field %d: %w", f.idx, err)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return k, fmt.Errorf("field %d: %w", f.idx, err)
		}
		*f.dst = v
	}
	return k, nil
}
