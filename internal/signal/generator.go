package signal

import (
	"context"
	"crypto-signal-backtest/internal/dto"
)

// rule is one signal source. It inspects the anchor bar and returns the direction
// it votes for, if any.
type rule struct {
	enabled func(cfg dto.SignalConfig) bool
	long    func(bar dto.AnnotatedBar) bool
	short   func(bar dto.AnnotatedBar) bool
	longID  string
	shortID string
}

var singleRules = []rule{
	{
		enabled: dto.SignalConfig.MACDEnabled,
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.MACDCrossUp },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.MACDCrossDown },
		longID:  dto.StrategyMACDBullish,
		shortID: dto.StrategyMACDBearish,
	},
	{
		enabled: dto.SignalConfig.RSIEnabled,
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.RSIOversold && b.Flags.BullishDivergence },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.RSIOverbought && b.Flags.BearishDivergence },
		longID:  dto.StrategyRSIOversold,
		shortID: dto.StrategyRSIOverbought,
	},
	{
		enabled: dto.SignalConfig.CandlestickEnabled,
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.BullishCandlestick && b.Flags.Uptrend },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.BearishCandlestick && b.Flags.Downtrend },
		longID:  dto.StrategyCandlestickBullish,
		shortID: dto.StrategyCandlestickBearish,
	},
	{
		enabled: dto.SignalConfig.HarmonicEnabled,
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.BullishHarmonic },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.BearishHarmonic },
		longID:  dto.StrategyHarmonicBullish,
		shortID: dto.StrategyHarmonicBearish,
	},
	{
		enabled: dto.SignalConfig.PriceActionEnabled,
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.BullishPriceAction },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.BearishPriceAction },
		longID:  dto.StrategyPriceActionBullish,
		shortID: dto.StrategyPriceActionBearish,
	},
}

// Moving average crosses form one chain: at most one of them fires per bar.
var trendChain = []struct {
	direction dto.Direction
	strategy  string
	hit       func(bar dto.AnnotatedBar) bool
}{
	{dto.DirectionLong, dto.StrategyGoldenCross, func(b dto.AnnotatedBar) bool { return b.Flags.GoldenCross }},
	{dto.DirectionShort, dto.StrategyDeathCross, func(b dto.AnnotatedBar) bool { return b.Flags.DeathCross }},
	{dto.DirectionLong, dto.StrategyShortTermBullish, func(b dto.AnnotatedBar) bool { return b.Flags.ShortTermBull }},
	{dto.DirectionShort, dto.StrategyShortTermBearish, func(b dto.AnnotatedBar) bool { return b.Flags.ShortTermBear }},
}

var combinedRules = []rule{
	{
		enabled: func(cfg dto.SignalConfig) bool { return cfg.MACDEnabled() && cfg.RSIEnabled() },
		long: func(b dto.AnnotatedBar) bool {
			return b.Flags.MACDCrossUp && b.Indicators.RSI > 0 && b.Indicators.RSI < 50 && b.Flags.Uptrend
		},
		short: func(b dto.AnnotatedBar) bool {
			return b.Flags.MACDCrossDown && b.Indicators.RSI > 50 && b.Flags.Downtrend
		},
		longID:  dto.StrategyCombinedMACDBullish,
		shortID: dto.StrategyCombinedMACDBearish,
	},
	{
		enabled: func(cfg dto.SignalConfig) bool { return cfg.PriceActionEnabled() && cfg.RSIEnabled() },
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.BullishPriceAction && b.Flags.RSIOversold },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.BearishPriceAction && b.Flags.RSIOverbought },
		longID:  dto.StrategyCombinedPABullish,
		shortID: dto.StrategyCombinedPABearish,
	},
	{
		enabled: func(cfg dto.SignalConfig) bool { return cfg.CandlestickEnabled() && cfg.HarmonicEnabled() },
		long:    func(b dto.AnnotatedBar) bool { return b.Flags.BullishCandlestick && b.Flags.BullishHarmonic },
		short:   func(b dto.AnnotatedBar) bool { return b.Flags.BearishCandlestick && b.Flags.BearishHarmonic },
		longID:  dto.StrategyCombinedPatternBull,
		shortID: dto.StrategyCombinedPatternBear,
	},
}

// Generator proposes signals for the last bar of an annotated prefix.
type Generator struct {
	builder *Builder
}

func NewGenerator(builder *Builder) *Generator {
	return &Generator{builder: builder}
}

// Propose only reads the last bar of prefix; every flag on it was computed from
// bars up to and including that bar. Each source emits at most one signal, with the
// long side checked first.
func (g *Generator) Propose(ctx context.Context, prefix []dto.AnnotatedBar, cfg dto.SignalConfig) []dto.Signal {
	if len(prefix) == 0 {
		return nil
	}
	anchor := prefix[len(prefix)-1]

	var signals []dto.Signal
	emit := func(direction dto.Direction, strategy string) {
		if s, ok := g.builder.Build(cfg.Symbol, direction, strategy, anchor, cfg); ok {
			signals = append(signals, s)
		}
	}

	apply := func(rules []rule) {
		for _, r := range rules {
			if !r.enabled(cfg) {
				continue
			}
			switch {
			case r.long(anchor):
				emit(dto.DirectionLong, r.longID)
			case r.short(anchor):
				emit(dto.DirectionShort, r.shortID)
			}
		}
	}

	apply(singleRules)
	for _, t := range trendChain {
		if t.hit(anchor) {
			emit(t.direction, t.strategy)
			break
		}
	}
	if cfg.CombinedEnabled() {
		apply(combinedRules)
	}

	return signals
}
