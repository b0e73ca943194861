package signal

import (
	"crypto-signal-backtest/internal/dto"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const fallbackStopPercent = 0.03

// signalNamespace scopes the name-based signal IDs.
var signalNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("crypto-signal-backtest/signal"))

// Builder turns a direction and an anchor bar into a fully levelled signal.
type Builder struct{}

func NewBuilder() *Builder {
	return &Builder{}
}

// Build prices a signal at the anchor close. The stop sits ATR × multiplier away when
// ATR is enabled and warm, otherwise 3% away. Targets are the stop distance times the
// tp factors. ok is false when the levels would not be strictly ordered.
func (b *Builder) Build(symbol string, direction dto.Direction, strategy string, anchor dto.AnnotatedBar, cfg dto.SignalConfig) (dto.Signal, bool) {
	entry := anchor.Close
	if entry <= 0 || math.IsNaN(entry) || math.IsInf(entry, 0) {
		return dto.Signal{}, false
	}

	var stop float64
	atr := anchor.Indicators.ATR
	useATR := cfg.ATREnabled() && atr > 0 && cfg.ATRMultiplier > 0
	switch {
	case direction == dto.DirectionLong && useATR:
		stop = entry - atr*cfg.ATRMultiplier
	case direction == dto.DirectionLong:
		stop = entry * (1 - fallbackStopPercent)
	case direction == dto.DirectionShort && useATR:
		stop = entry + atr*cfg.ATRMultiplier
	case direction == dto.DirectionShort:
		stop = entry * (1 + fallbackStopPercent)
	default:
		return dto.Signal{}, false
	}

	risk := math.Abs(entry - stop)
	sign := 1.0
	if direction == dto.DirectionShort {
		sign = -1
	}

	s := dto.Signal{
		ID:          SignalID(symbol, strategy, anchor.Timestamp),
		Timestamp:   anchor.Timestamp,
		Symbol:      symbol,
		Direction:   direction,
		Strategy:    strategy,
		EntryPrice:  entry,
		StopLoss:    stop,
		Target1:     entry + sign*risk*cfg.TP1Factor,
		Target2:     entry + sign*risk*cfg.TP2Factor,
		RiskReward1: cfg.TP1Factor,
		RiskReward2: cfg.TP2Factor,
		Leverage:    cfg.DefaultLeverage,
		RiskPercent: cfg.RiskPercent,
	}
	if s.Leverage < 1 {
		s.Leverage = 1
	}
	if risk == 0 || s.RiskPercent <= 0 || !s.HasValidLevels() {
		return dto.Signal{}, false
	}
	return s, true
}

// SignalID is stable for a given symbol, strategy and anchor so reruns produce the
// same IDs.
func SignalID(symbol, strategy string, anchor time.Time) string {
	name := fmt.Sprintf("%s|%s|%d", symbol, strategy, anchor.UnixMilli())
	return uuid.NewSHA1(signalNamespace, []byte(name)).String()
}
