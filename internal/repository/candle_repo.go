package repository

import (
	"context"
	"crypto-signal-backtest/config"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/cache"
	"crypto-signal-backtest/pkg/common"
	"crypto-signal-backtest/pkg/logger"
	"crypto-signal-backtest/pkg/utils"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

var ErrNoCandles = errors.New("no candles available from any exchange")

// CandleSource is a single exchange able to serve historical bars.
type CandleSource interface {
	GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error)
}

// FetchErrorRecorder is told about every exchange that failed to serve candles.
type FetchErrorRecorder interface {
	RecordFetchError(exchange string)
}

type CandleRepository interface {
	GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error)
}

type candleRepository struct {
	cfg      *config.Config
	log      *logger.Logger
	cache    cache.Cache
	sources  map[string]CandleSource
	recorder FetchErrorRecorder
}

func NewCandleRepository(cfg *config.Config, log *logger.Logger, c cache.Cache, recorder FetchErrorRecorder, sources map[string]CandleSource) CandleRepository {
	return &candleRepository{
		cfg:      cfg,
		log:      log,
		cache:    c,
		sources:  sources,
		recorder: recorder,
	}
}

// GetHistorical tries the requested exchange, then the default one, then the configured
// fallbacks.
// The first non-empty series wins. An empty EndTime means now.
func (r *candleRepository) GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error) {
	if param.EndTime.IsZero() {
		param.EndTime = time.Now()
	}
	param.EndTime = utils.TruncateToTimeframe(param.EndTime, param.Timeframe)

	var errs []error
	for _, exchange := range r.exchangeOrder(param.Exchange) {
		source, ok := r.sources[exchange]
		if !ok {
			continue
		}

		key := fmt.Sprintf(common.KEY_CANDLES, exchange, param.Symbol, param.Timeframe, param.Days, param.EndTime.Unix())
		if bars, found := cache.Get[[]dto.Bar](r.cache, key); found {
			r.log.DebugContext(ctx, "Candles served from cache", logger.StringField("key", key))
			return bars, nil
		}

		param.Exchange = exchange
		bars, err := source.GetHistorical(ctx, param)
		if err != nil {
			r.recorder.RecordFetchError(exchange)
			r.log.WarnContext(ctx, "Failed to fetch candles, trying next exchange",
				logger.StringField("exchange", exchange),
				logger.StringField("symbol", param.Symbol),
				logger.ErrorField(err))
			errs = append(errs, fmt.Errorf("%s: %w", exchange, err))
			if ctx.Err() != nil {
				break
			}
			continue
		}
		bars = closedBars(bars, param.EndTime)
		if len(bars) == 0 {
			r.log.WarnContext(ctx, "Exchange returned no candles",
				logger.StringField("exchange", exchange),
				logger.StringField("symbol", param.Symbol))
			continue
		}

		r.cache.Set(key, bars)
		return bars, nil
	}

	return nil, errors.Join(append([]error{ErrNoCandles}, errs...)...)
}

func (r *candleRepository) exchangeOrder(requested string) []string {
	primary := strings.ToUpper(requested)
	if primary == "" {
		primary = strings.ToUpper(r.cfg.Market.DefaultExchange)
	}

	order := []string{primary}
	candidates := append([]string{r.cfg.Market.DefaultExchange}, r.cfg.Market.FallbackExchanges...)
	for _, fallback := range candidates {
		fallback = strings.ToUpper(fallback)
		if fallback != "" && !slices.Contains(order, fallback) {
			order = append(order, fallback)
		}
	}
	return order
}

// closedBars drops trailing bars that open at or after end. Those belong to the
// candle still forming and would feed a live price into EndOfData exits.
func closedBars(bars []dto.Bar, end time.Time) []dto.Bar {
	n := len(bars)
	for n > 0 && !bars[n-1].Timestamp.Before(end) {
		n--
	}
	return bars[:n]
}
