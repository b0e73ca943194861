package pattern

import (
	"crypto-signal-backtest/internal/dto"
	"math"
)

const (
	PatternDoji               = "doji"
	PatternHammer             = "hammer"
	PatternInvertedHammer     = "inverted_hammer"
	PatternHangingMan         = "hanging_man"
	PatternShootingStar       = "shooting_star"
	PatternBullishEngulfing   = "engulfing_bullish"
	PatternBearishEngulfing   = "engulfing_bearish"
	PatternMorningStar        = "morning_star"
	PatternEveningStar        = "evening_star"
	PatternThreeWhiteSoldiers = "three_white_soldiers"
	PatternThreeBlackCrows    = "three_black_crows"
	PatternPiercing           = "piercing_pattern"
	PatternDarkCloudCover     = "dark_cloud_cover"
	PatternSpinningTop        = "spinning_top"
)

type candle struct {
	dto.Bar
	body, upper, lower, rng float64
}

func newCandle(b dto.Bar) candle {
	return candle{
		Bar:   b,
		body:  math.Abs(b.Close - b.Open),
		upper: b.High - math.Max(b.Open, b.Close),
		lower: math.Min(b.Open, b.Close) - b.Low,
		rng:   b.High - b.Low,
	}
}

func (c candle) bullish() bool { return c.Close > c.Open }
func (c candle) bearish() bool { return c.Close < c.Open }

func (c candle) share(part float64) float64 {
	if c.rng <= 0 {
		return 0
	}
	return part / c.rng
}

func (c candle) longLowerShadow() bool {
	return c.lower > 2*c.body && c.upper < 0.1*c.body && c.share(c.body) < 0.3 && c.share(c.lower) > 0.6
}

func (c candle) longUpperShadow() bool {
	return c.upper > 2*c.body && c.lower < 0.1*c.body && c.share(c.body) < 0.3 && c.share(c.upper) > 0.6
}

// Candlestick flags single, two and three bar candlestick formations.
type Candlestick struct{}

func NewCandlestick() *Candlestick {
	return &Candlestick{}
}

func (d *Candlestick) Name() string { return "candlestick" }

func (d *Candlestick) Detect(annotated []dto.AnnotatedBar, cfg dto.SignalConfig) {
	if !cfg.CandlestickEnabled() {
		return
	}
	for i := range annotated {
		neutral, bullish, bearish := d.match(annotated, i)
		annotated[i].Patterns = append(annotated[i].Patterns, neutral...)
		annotated[i].Patterns = append(annotated[i].Patterns, bullish...)
		annotated[i].Patterns = append(annotated[i].Patterns, bearish...)
		annotated[i].Flags.BullishCandlestick = len(bullish) > 0
		annotated[i].Flags.BearishCandlestick = len(bearish) > 0
	}
}

// match returns the formations ending at bar i, split by bias.
func (d *Candlestick) match(annotated []dto.AnnotatedBar, i int) (neutral, bullish, bearish []string) {
	cur := newCandle(annotated[i].Bar)

	if cur.rng > 0 && cur.share(cur.body) < 0.1 {
		neutral = append(neutral, PatternDoji)
	}
	if cur.share(cur.body) < 0.3 && cur.share(cur.upper) > 0.3 && cur.share(cur.lower) > 0.3 {
		neutral = append(neutral, PatternSpinningTop)
	}

	if cur.bullish() && cur.longLowerShadow() {
		bullish = append(bullish, PatternHammer)
	}
	if cur.bullish() && cur.longUpperShadow() {
		bullish = append(bullish, PatternInvertedHammer)
	}
	if cur.bearish() && cur.longLowerShadow() {
		bearish = append(bearish, PatternHangingMan)
	}
	if cur.bearish() && cur.longUpperShadow() {
		bearish = append(bearish, PatternShootingStar)
	}

	if i < 1 {
		return neutral, bullish, bearish
	}
	prev := newCandle(annotated[i-1].Bar)
	prevMid := (prev.Open + prev.Close) / 2

	if cur.bullish() && prev.bearish() && cur.Open < prev.Close && cur.Close > prev.Open {
		bullish = append(bullish, PatternBullishEngulfing)
	}
	if cur.bearish() && prev.bullish() && cur.Open > prev.Close && cur.Close < prev.Open {
		bearish = append(bearish, PatternBearishEngulfing)
	}
	if cur.bullish() && prev.bearish() && cur.Open < prev.Close && cur.Close > prevMid && cur.Close < prev.Open {
		bullish = append(bullish, PatternPiercing)
	}
	if cur.bearish() && prev.bullish() && cur.Open > prev.Close && cur.Close < prevMid && cur.Close > prev.Open {
		bearish = append(bearish, PatternDarkCloudCover)
	}

	if i < 2 {
		return neutral, bullish, bearish
	}
	first := newCandle(annotated[i-2].Bar)
	firstMid := (first.Open + first.Close) / 2
	smallMiddle := prev.body < 0.3*first.body && cur.body > 0.6*first.body

	if cur.bullish() && first.bearish() && smallMiddle && cur.Close > firstMid {
		bullish = append(bullish, PatternMorningStar)
	}
	if cur.bearish() && first.bullish() && smallMiddle && cur.Close < firstMid {
		bearish = append(bearish, PatternEveningStar)
	}
	if cur.bullish() && prev.bullish() && first.bullish() &&
		cur.Close > prev.Close && prev.Close > first.Close &&
		cur.Open > prev.Open && prev.Open > first.Open &&
		cur.Open < prev.Close && prev.Open < first.Close {
		bullish = append(bullish, PatternThreeWhiteSoldiers)
	}
	if cur.bearish() && prev.bearish() && first.bearish() &&
		cur.Close < prev.Close && prev.Close < first.Close &&
		cur.Open < prev.Open && prev.Open < first.Open &&
		cur.Open > prev.Close && prev.Open > first.Close {
		bearish = append(bearish, PatternThreeBlackCrows)
	}

	return neutral, bullish, bearish
}
