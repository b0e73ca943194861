package contract

import (
	"context"
	"crypto-signal-backtest/internal/dto"
)

// BarAnnotator enriches a bar series with indicator values and pattern flags.
// Bar i must only depend on bars 0..i.
type BarAnnotator interface {
	Annotate(bars []dto.Bar, cfg dto.SignalConfig) []dto.AnnotatedBar
}

// SignalProposer returns the candidate signals for the last bar of prefix.
type SignalProposer interface {
	Propose(ctx context.Context, prefix []dto.AnnotatedBar, cfg dto.SignalConfig) []dto.Signal
}

type ConflictResolver interface {
	Resolve(signals []dto.Signal) []dto.Signal
}

type CandleProvider interface {
	GetHistorical(ctx context.Context, param dto.GetCandleParam) ([]dto.Bar, error)
}

// Notifier pushes a finished backtest somewhere a human will read it.
type Notifier interface {
	NotifyBacktest(ctx context.Context, result *dto.BacktestResult) error
}

// PatternDetector sets pattern flags on an already annotated series in place.
// Flags on bar i must only depend on bars 0..i.
type PatternDetector interface {
	Name() string
	Detect(annotated []dto.AnnotatedBar, cfg dto.SignalConfig)
}
