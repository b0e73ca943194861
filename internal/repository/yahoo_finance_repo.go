package repository

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/httpclient"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/ratelimit"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

type YahooFinanceRepository interface {
	GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error)
}

type yahooFinanceRepository struct {
	httpClient     httpclient.HTTPClient
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

func NewYahooFinanceRepository(cfg *config.Config, log *logger.Logger) YahooFinanceRepository {
	return &yahooFinanceRepository{
		httpClient: httpclient.New(cfg.YahooFinance.BaseURL, cfg.YahooFinance.Timeout,
			httpclient.WithRetry(2, time.Second),
			httpclient.WithHeader("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0 Safari/537.36"),
			httpclient.WithHeader("Referer", "https://finance.yahoo.com/"),
		),
		cfg:            cfg,
		logger:         log,
		requestLimiter: ratelimit.PerMinute(cfg.YahooFinance.MaxRequestPerMinute),
	}
}

// yahooInterval maps an exchange timeframe onto the chart API's interval names.
func yahooInterval(timeframe string) (string, error) {
	switch timeframe {
	case dto.Interval1Min, dto.Interval5Min, dto.Interval15Min, dto.Interval30Min, dto.Interval1Hour, dto.Interval1Day:
		return timeframe, nil
	case dto.Interval1Week:
		return "1wk", nil
	case dto.Interval1Month:
		return "1mo", nil
	default:
		return "", fmt.Errorf("timeframe %s is not supported by yahoo finance", timeframe)
	}
}

func (r *yahooFinanceRepository) GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error) {
	interval, err := yahooInterval(param.Timeframe)
	if err != nil {
		return nil, err
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	symbol := dto.YahooSymbol(param.Symbol)
	queryParams := map[string]string{
		"period1":        strconv.FormatInt(param.StartTime().Unix(), 10),
		"period2":        strconv.FormatInt(param.EndTime.Unix(), 10),
		"interval":       interval,
		"includePrePost": "false",
	}

	var yahooResp dto.YahooFinanceResponse
	resp, err := r.httpClient.Get(ctx, "/"+symbol, queryParams, &yahooResp)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch data from yahoo finance: %w", err)
	}

	if !resp.IsSuccess() {
		r.logger.ErrorContext(ctx, "Yahoo Finance API returned Non-OK status",
			logger.StringField("symbol", symbol),
			logger.IntField("status_code", resp.StatusCode),
			logger.StringField("body", string(resp.Body)))
		return nil, fmt.Errorf("yahoo finance api returned status: %d", resp.StatusCode)
	}

	if yahooResp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo finance api error: %v", yahooResp.Chart.Error)
	}
	if len(yahooResp.Chart.Result) == 0 || len(yahooResp.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data returned for symbol: %s", symbol)
	}

	result := yahooResp.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]dto.Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			continue
		}
		// null rows decode as 0
		if quote.Open[i] == 0 || quote.High[i] == 0 || quote.Low[i] == 0 || quote.Close[i] == 0 {
			continue
		}

		bars = append(bars, dto.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      quote.Open[i],
			High:      quote.High[i],
			Low:       quote.Low[i],
			Close:     quote.Close[i],
			Volume:    quote.Volume[i],
		})
	}

	r.logger.DebugContext(ctx, "Fetched chart from yahoo finance",
		logger.StringField("symbol", symbol),
		logger.StringField("interval", interval),
		logger.IntField("bars", len(bars)))

	return bars, nil
}
