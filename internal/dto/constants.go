package dto

// Strategy labels attached to generated signals. Each source has one label per
// direction so the per-strategy breakdown keeps longs and shorts apart.
const (
	StrategyMACDBullish         = "MACD Bullish Crossover"
	StrategyMACDBearish         = "MACD Bearish Crossover"
	StrategyRSIOversold         = "RSI Oversold with Bullish Divergence"
	StrategyRSIOverbought       = "RSI Overbought with Bearish Divergence"
	StrategyCandlestickBullish  = "Bullish Candlestick Pattern in Uptrend"
	StrategyCandlestickBearish  = "Bearish Candlestick Pattern in Downtrend"
	StrategyHarmonicBullish     = "Bullish Harmonic Pattern"
	StrategyHarmonicBearish     = "Bearish Harmonic Pattern"
	StrategyPriceActionBullish  = "Bullish Price Action Pattern"
	StrategyPriceActionBearish  = "Bearish Price Action Pattern"
	StrategyGoldenCross         = "Golden Cross (50 MA > 200 MA)"
	StrategyDeathCross          = "Death Cross (50 MA < 200 MA)"
	StrategyShortTermBullish    = "Short-term Bullish Momentum (20 MA > 50 MA)"
	StrategyShortTermBearish    = "Short-term Bearish Momentum (20 MA < 50 MA)"
	StrategyCombinedMACDBullish = "Combined: MACD Bullish Crossover + RSI < 50 + Uptrend"
	StrategyCombinedMACDBearish = "Combined: MACD Bearish Crossover + RSI > 50 + Downtrend"
	StrategyCombinedPABullish   = "Combined: Bullish Price Action + RSI Oversold"
	StrategyCombinedPABearish   = "Combined: Bearish Price Action + RSI Overbought"
	StrategyCombinedPatternBull = "Combined: Bullish Candlestick + Bullish Harmonic Pattern"
	StrategyCombinedPatternBear = "Combined: Bearish Candlestick + Bearish Harmonic Pattern"
)

const (
	Interval1Min   = "1m"
	Interval3Min   = "3m"
	Interval5Min   = "5m"
	Interval15Min  = "15m"
	Interval30Min  = "30m"
	Interval1Hour  = "1h"
	Interval2Hour  = "2h"
	Interval4Hour  = "4h"
	Interval6Hour  = "6h"
	Interval8Hour  = "8h"
	Interval12Hour = "12h"
	Interval1Day   = "1d"
	Interval3Day   = "3d"
	Interval1Week  = "1w"
	Interval1Month = "1M"
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "🟢 LONG"
	case DirectionShort:
		return "🔴 SHORT"
	default:
		return "Unknown"
	}
}

func (r ExitReason) Emoji() string {
	switch r {
	case ExitReasonTarget1, ExitReasonTarget2:
		return "🎯"
	case ExitReasonStopLoss:
		return "🛑"
	case ExitReasonEndOfData:
		return "⏹"
	default:
		return "❔"
	}
}
