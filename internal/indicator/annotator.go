package indicator

import (
	"crypto-signal-backtest/internal/contract"
	"crypto-signal-backtest/internal/dto"
)

const (
	bollingerPeriod    = 20
	bollingerDeviation = 2.0

	divergenceUpperRSI = 60.0
	divergenceLowerRSI = 40.0
)

type Annotator struct {
	detectors []contract.PatternDetector
}

// NewAnnotator returns an annotator that computes indicators and then runs each
// detector over the annotated series, in order.
func NewAnnotator(detectors ...contract.PatternDetector) *Annotator {
	return &Annotator{detectors: detectors}
}

// Annotate never modifies bars. Every value for bar i is derived from bars[0..i].
func (a *Annotator) Annotate(bars []dto.Bar, cfg dto.SignalConfig) []dto.AnnotatedBar {
	out := make([]dto.AnnotatedBar, len(bars))
	for i, b := range bars {
		out[i].Bar = b
	}
	if len(bars) == 0 {
		return out
	}

	highs, lows, closes := columns(bars)

	if cfg.MACDEnabled() {
		applyMACD(out, closes, cfg)
	}
	if cfg.RSIEnabled() {
		applyRSI(out, closes, cfg)
	}
	if cfg.ATREnabled() {
		applyATR(out, highs, lows, closes, cfg)
	}
	applyMovingAverages(out, closes)
	applyBollinger(out, closes)

	for _, d := range a.detectors {
		d.Detect(out, cfg)
	}
	return out
}

func columns(bars []dto.Bar) (highs, lows, closes []float64) {
	highs = make([]float64, len(bars))
	lows = make([]float64, len(bars))
	closes = make([]float64, len(bars))
	for i, b := range bars {
		highs[i] = b.High
		lows[i] = b.Low
		closes[i] = b.Close
	}
	return highs, lows, closes
}

func applyMACD(out []dto.AnnotatedBar, closes []float64, cfg dto.SignalConfig) {
	macd, signal, hist := macdLines(closes, cfg.MACDFast, cfg.MACDSlow, cfg.MACDSignal)
	for i := range out {
		out[i].Indicators.MACD = macd.at(i)
		out[i].Indicators.MACDSignal = signal.at(i)
		out[i].Indicators.MACDHist = hist.at(i)
		out[i].Flags.MACDCrossUp = crossAbove(macd, signal, i)
		out[i].Flags.MACDCrossDown = crossBelow(macd, signal, i)
	}
}

func applyRSI(out []dto.AnnotatedBar, closes []float64, cfg dto.SignalConfig) {
	rsi := rsiLine(closes, cfg.RSIPeriod)
	for i := range out {
		if !rsi.ready(i) {
			continue
		}
		v := rsi.values[i]
		out[i].Indicators.RSI = v
		out[i].Flags.RSIOverbought = v > cfg.RSIOverbought
		out[i].Flags.RSIOversold = v < cfg.RSIOversold

		if i < 2 || !rsi.ready(i-2) {
			continue
		}
		priceHigherHigh := closes[i] > closes[i-1] && closes[i-1] > closes[i-2]
		priceLowerLow := closes[i] < closes[i-1] && closes[i-1] < closes[i-2]
		rsiHigherHigh := v > rsi.values[i-1] && rsi.values[i-1] > rsi.values[i-2]
		rsiLowerLow := v < rsi.values[i-1] && rsi.values[i-1] < rsi.values[i-2]

		out[i].Flags.BearishDivergence = priceHigherHigh && !rsiHigherHigh && v > divergenceUpperRSI
		out[i].Flags.BullishDivergence = priceLowerLow && !rsiLowerLow && v < divergenceLowerRSI
	}
}

func applyATR(out []dto.AnnotatedBar, highs, lows, closes []float64, cfg dto.SignalConfig) {
	atr := atrLine(highs, lows, closes, cfg.ATRPeriod)
	for i := range out {
		v := atr.at(i)
		if v <= 0 {
			continue
		}
		out[i].Indicators.ATR = v
		out[i].Indicators.ATRStopLong = closes[i] - v*cfg.ATRMultiplier
		out[i].Indicators.ATRStopShort = closes[i] + v*cfg.ATRMultiplier
	}
}

func applyMovingAverages(out []dto.AnnotatedBar, closes []float64) {
	ema20, ema50, ema200 := emaLine(closes, 20), emaLine(closes, 50), emaLine(closes, 200)
	sma20, sma50, sma200 := smaLine(closes, 20), smaLine(closes, 50), smaLine(closes, 200)

	for i := range out {
		ind := &out[i].Indicators
		ind.EMA20, ind.EMA50, ind.EMA200 = ema20.at(i), ema50.at(i), ema200.at(i)
		ind.SMA20, ind.SMA50, ind.SMA200 = sma20.at(i), sma50.at(i), sma200.at(i)

		flags := &out[i].Flags
		flags.GoldenCross = crossAbove(ema50, ema200, i)
		flags.DeathCross = crossBelow(ema50, ema200, i)
		flags.ShortTermBull = crossAbove(ema20, ema50, i)
		flags.ShortTermBear = crossBelow(ema20, ema50, i)

		if ema50.ready(i) && ema200.ready(i) {
			flags.Uptrend = closes[i] > ind.EMA200 && ind.EMA50 > ind.EMA200
			flags.Downtrend = closes[i] < ind.EMA200 && ind.EMA50 < ind.EMA200
		}
	}
}

func applyBollinger(out []dto.AnnotatedBar, closes []float64) {
	upper, middle, lower := bbandLines(closes, bollingerPeriod, bollingerDeviation)
	for i := range out {
		out[i].Indicators.BBUpper = upper.at(i)
		out[i].Indicators.BBMiddle = middle.at(i)
		out[i].Indicators.BBLower = lower.at(i)
	}
}
