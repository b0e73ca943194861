package dto

// Indicators holds the numeric columns computed for one bar. A zero value means
// the indicator has not warmed up yet (or is disabled).
type Indicators struct {
	MACD         float64 `json:"macd"`
	MACDSignal   float64 `json:"macd_signal"`
	MACDHist     float64 `json:"macd_hist"`
	RSI          float64 `json:"rsi"`
	ATR          float64 `json:"atr"`
	ATRStopLong  float64 `json:"atr_stop_long"`
	ATRStopShort float64 `json:"atr_stop_short"`
	EMA20        float64 `json:"ema20"`
	EMA50        float64 `json:"ema50"`
	EMA200       float64 `json:"ema200"`
	SMA20        float64 `json:"sma20"`
	SMA50        float64 `json:"sma50"`
	SMA200       float64 `json:"sma200"`
	BBUpper      float64 `json:"bb_upper"`
	BBMiddle     float64 `json:"bb_middle"`
	BBLower      float64 `json:"bb_lower"`
}

// PatternFlags are the boolean columns the signal generator reads.
type PatternFlags struct {
	MACDCrossUp        bool `json:"macd_cross_up"`
	MACDCrossDown      bool `json:"macd_cross_down"`
	RSIOverbought      bool `json:"rsi_overbought"`
	RSIOversold        bool `json:"rsi_oversold"`
	BullishDivergence  bool `json:"bullish_divergence"`
	BearishDivergence  bool `json:"bearish_divergence"`
	GoldenCross        bool `json:"golden_cross"`
	DeathCross         bool `json:"death_cross"`
	ShortTermBull      bool `json:"short_term_bull"`
	ShortTermBear      bool `json:"short_term_bear"`
	Uptrend            bool `json:"uptrend"`
	Downtrend          bool `json:"downtrend"`
	BullishCandlestick bool `json:"bullish_candlestick"`
	BearishCandlestick bool `json:"bearish_candlestick"`
	BullishHarmonic    bool `json:"bullish_harmonic"`
	BearishHarmonic    bool `json:"bearish_harmonic"`
	BullishPriceAction bool `json:"bullish_price_action"`
	BearishPriceAction bool `json:"bearish_price_action"`
}

// AnnotatedBar is a bar together with everything derived from the bars up to it.
type AnnotatedBar struct {
	Bar
	Indicators Indicators   `json:"indicators"`
	Flags      PatternFlags `json:"flags"`
	Patterns   []string     `json:"patterns,omitempty"`
}

// Bars strips annotations, returning the plain series.
func Bars(annotated []AnnotatedBar) []Bar {
	bars := make([]Bar, len(annotated))
	for i := range annotated {
		bars[i] = annotated[i].Bar
	}
	return bars
}
