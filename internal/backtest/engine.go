package backtest

import (
	"context"
	"crypto-signal-backtest/internal/contract"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/logger"
	"fmt"
	"sort"
	"time"
)

// Engine replays a bar series one bar at a time, asks the proposer for signals on
// every prefix and then settles each signal against the bars after its anchor.
type Engine struct {
	log       *logger.Logger
	annotator contract.BarAnnotator
	proposer  contract.SignalProposer
	resolver  contract.ConflictResolver
}

// NewEngine wires an engine. resolver may be nil, in which case proposals pass through.
func NewEngine(
	log *logger.Logger,
	annotator contract.BarAnnotator,
	proposer contract.SignalProposer,
	resolver contract.ConflictResolver,
) *Engine {
	return &Engine{
		log:       log,
		annotator: annotator,
		proposer:  proposer,
		resolver:  resolver,
	}
}

// Run backtests cfg over bars. It returns nil when there is nothing to evaluate or when
// any step panics; it never returns a partial result.
func (e *Engine) Run(ctx context.Context, bars []dto.Bar, cfg dto.SignalConfig) (result *dto.BacktestResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.ErrorContext(ctx, "Backtest run panicked",
				logger.StringField("symbol", cfg.Symbol),
				logger.StringField("panic", fmt.Sprint(r)),
			)
			result = nil
		}
	}()

	if len(bars) == 0 {
		e.log.InfoContext(ctx, "No data to backtest", logger.StringField("symbol", cfg.Symbol))
		return nil
	}

	annotated := e.annotator.Annotate(bars, cfg)
	if len(annotated) != len(bars) {
		e.log.WarnContext(ctx, "Annotated series length mismatch",
			logger.IntField("bars", len(bars)),
			logger.IntField("annotated", len(annotated)),
		)
		return nil
	}

	collected := e.collect(ctx, annotated, cfg)

	index := newAnchorIndex(bars)
	evaluated := make([]dto.Signal, 0, len(collected))
	for _, signal := range collected {
		pos, ok := index.locate(signal.Timestamp)
		if !ok {
			e.log.WarnContext(ctx, "Signal anchor not found in series, skipping",
				logger.StringField("signal_id", signal.ID),
				logger.TimeField("anchor", signal.Timestamp),
			)
			continue
		}
		evaluated = append(evaluated, Simulate(signal, bars[pos+1:]))
	}

	stats := Summarize(evaluated)
	e.log.DebugContext(ctx, "Backtest run finished",
		logger.StringField("symbol", cfg.Symbol),
		logger.IntField("bars", len(bars)),
		logger.IntField("signals", stats.TotalSignals),
	)

	return &dto.BacktestResult{
		Symbol:              cfg.Symbol,
		StartDate:           bars[0].Timestamp,
		EndDate:             bars[len(bars)-1].Timestamp,
		TotalBars:           len(bars),
		TotalSignals:        stats.TotalSignals,
		WinningSignals:      stats.WinningSignals,
		LosingSignals:       stats.LosingSignals,
		WinRate:             stats.WinRate,
		AvgProfit:           stats.AvgProfit,
		MaxDrawdown:         stats.MaxDrawdown,
		ProfitFactor:        stats.ProfitFactor,
		StrategyPerformance: stats.ByStrategy,
		Signals:             evaluated,
		Config:              cfg,
	}
}

// collect walks every prefix bars[0..i] for i >= 1 and tags surviving proposals with
// the timestamp of bars[i].
func (e *Engine) collect(ctx context.Context, annotated []dto.AnnotatedBar, cfg dto.SignalConfig) []dto.Signal {
	var collected []dto.Signal
	for i := 1; i < len(annotated); i++ {
		proposed := e.proposer.Propose(ctx, annotated[:i+1], cfg)
		if e.resolver != nil {
			proposed = e.resolver.Resolve(proposed)
		}

		anchor := annotated[i].Timestamp
		for _, signal := range proposed {
			signal.Timestamp = anchor
			if signal.Symbol == "" {
				signal.Symbol = cfg.Symbol
			}
			collected = append(collected, signal)
		}
	}
	return collected
}

type anchorIndex struct {
	times  []time.Time
	exact  map[int64]int
	maxGap time.Duration
}

func newAnchorIndex(bars []dto.Bar) anchorIndex {
	idx := anchorIndex{
		times: make([]time.Time, len(bars)),
		exact: make(map[int64]int, len(bars)),
	}
	for i, bar := range bars {
		idx.times[i] = bar.Timestamp
		idx.exact[bar.Timestamp.UnixNano()] = i
		if i > 0 {
			if gap := bar.Timestamp.Sub(bars[i-1].Timestamp); gap > idx.maxGap {
				idx.maxGap = gap
			}
		}
	}
	return idx
}

// locate finds ts by exact match, then by nearest bar. A nearest match further away
// than the widest gap in the series is treated as not found.
func (a anchorIndex) locate(ts time.Time) (int, bool) {
	if pos, ok := a.exact[ts.UnixNano()]; ok {
		return pos, true
	}
	if len(a.times) == 0 {
		return 0, false
	}

	i := sort.Search(len(a.times), func(i int) bool { return !a.times[i].Before(ts) })
	best := -1
	var bestDist time.Duration
	for _, c := range []int{i - 1, i} {
		if c < 0 || c >= len(a.times) {
			continue
		}
		dist := absDuration(a.times[c].Sub(ts))
		if best == -1 || dist < bestDist {
			best, bestDist = c, dist
		}
	}
	if best == -1 || bestDist > a.maxGap {
		return 0, false
	}
	return best, true
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
