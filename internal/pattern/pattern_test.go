package pattern

import (
	"crypto-signal-backtest/internal/dto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var start = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func ohlc(i int, open, high, low, close float64) dto.AnnotatedBar {
	return dto.AnnotatedBar{Bar: dto.Bar{
		Timestamp: start.Add(time.Duration(i) * time.Hour),
		Open:      open,
		High:      high,
		Low:       low,
		Close:     close,
	}}
}

type knot struct {
	index int
	price float64
}

// path interpolates closes linearly between knots. spread is added above and below
// the close to form high and low.
func path(knots []knot, spread float64) []dto.AnnotatedBar {
	last := knots[len(knots)-1].index
	out := make([]dto.AnnotatedBar, last+1)
	for k := 0; k < len(knots)-1; k++ {
		a, b := knots[k], knots[k+1]
		for i := a.index; i <= b.index; i++ {
			c := a.price + (b.price-a.price)*float64(i-a.index)/float64(b.index-a.index)
			out[i] = ohlc(i, c, c+spread, c-spread, c)
		}
	}
	return out
}

func TestCandlestick_Detect(t *testing.T) {
	tests := []struct {
		name    string
		bars    []dto.AnnotatedBar
		pattern string
		bullish bool
		bearish bool
	}{
		{
			name:    "hammer",
			bars:    []dto.AnnotatedBar{ohlc(0, 100, 101.05, 95, 101)},
			pattern: PatternHammer,
			bullish: true,
		},
		{
			name:    "shooting star",
			bars:    []dto.AnnotatedBar{ohlc(0, 101, 106, 99.95, 100)},
			pattern: PatternShootingStar,
			bearish: true,
		},
		{
			name: "bullish engulfing",
			bars: []dto.AnnotatedBar{
				ohlc(0, 102, 102.2, 99.8, 100),
				ohlc(1, 99.5, 103.2, 99.3, 103),
			},
			pattern: PatternBullishEngulfing,
			bullish: true,
		},
		{
			name: "bearish engulfing",
			bars: []dto.AnnotatedBar{
				ohlc(0, 100, 102.2, 99.8, 102),
				ohlc(1, 102.5, 102.7, 98.8, 99),
			},
			pattern: PatternBearishEngulfing,
			bearish: true,
		},
		{
			name: "three white soldiers",
			bars: []dto.AnnotatedBar{
				ohlc(0, 100, 102.3, 99.8, 102),
				ohlc(1, 101, 104.3, 100.8, 104),
				ohlc(2, 103, 106.3, 102.8, 106),
			},
			pattern: PatternThreeWhiteSoldiers,
			bullish: true,
		},
		{
			name:    "doji is neutral",
			bars:    []dto.AnnotatedBar{ohlc(0, 100, 101, 99, 100.05)},
			pattern: PatternDoji,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewCandlestick().Detect(tt.bars, dto.SignalConfig{})
			last := tt.bars[len(tt.bars)-1]

			assert.Contains(t, last.Patterns, tt.pattern)
			assert.Equal(t, tt.bullish, last.Flags.BullishCandlestick)
			assert.Equal(t, tt.bearish, last.Flags.BearishCandlestick)
		})
	}
}

func TestCandlestick_Disabled(t *testing.T) {
	off := false
	bars := []dto.AnnotatedBar{ohlc(0, 100, 101.05, 95, 101)}

	NewCandlestick().Detect(bars, dto.SignalConfig{UseCandlestickPatterns: &off})

	assert.Empty(t, bars[0].Patterns)
	assert.False(t, bars[0].Flags.BullishCandlestick)
}

func TestPriceAction_DoubleTopConfirmedAfterWindow(t *testing.T) {
	knots := []knot{{0, 100}, {30, 120}, {45, 105}, {60, 120.5}, {100, 95}}

	bars := path(knots, 0.5)
	NewPriceAction().Detect(bars, dto.SignalConfig{})

	for i, b := range bars {
		if i == 80 {
			continue
		}
		assert.False(t, b.Flags.BearishPriceAction, "bar %d", i)
		assert.False(t, b.Flags.BullishPriceAction, "bar %d", i)
	}
	assert.True(t, bars[80].Flags.BearishPriceAction)
	assert.Contains(t, bars[80].Patterns, PatternDoubleTop)

	prefix := path(knots, 0.5)[:80]
	NewPriceAction().Detect(prefix, dto.SignalConfig{})
	for i, b := range prefix {
		assert.False(t, b.Flags.BearishPriceAction, "prefix bar %d", i)
	}
}

func TestHarmonic_BullishGartley(t *testing.T) {
	x, a := 100.0, 130.0
	b := a - 0.618*(a-x)
	c := b + 0.382*(a-b)
	d := c - 1.272*(c-b)

	bars := path([]knot{{0, 110}, {12, x}, {27, a}, {42, b}, {57, c}, {72, d}, {90, 120}}, 0)
	NewHarmonic().Detect(bars, dto.SignalConfig{})

	require.True(t, bars[82].Flags.BullishHarmonic)
	assert.Contains(t, bars[82].Patterns, PatternGartley)
	for i, bar := range bars {
		if i == 82 {
			continue
		}
		assert.False(t, bar.Flags.BullishHarmonic, "bar %d", i)
		assert.False(t, bar.Flags.BearishHarmonic, "bar %d", i)
	}
}

func TestHarmonic_Disabled(t *testing.T) {
	off := false
	bars := path([]knot{{0, 110}, {12, 100}, {27, 130}, {42, 111.46}, {57, 118.54}, {72, 109.53}, {90, 120}}, 0)

	NewHarmonic().Detect(bars, dto.SignalConfig{UseHarmonicPatterns: &off})

	for _, bar := range bars {
		assert.False(t, bar.Flags.BullishHarmonic)
	}
}

func TestIsPivot(t *testing.T) {
	values := []float64{1, 2, 3, 2, 1, 1, 1}

	assert.True(t, isPivot(values, 2, 2, true, true))
	assert.False(t, isPivot(values, 1, 2, true, true), "needs order bars on the left")
	assert.False(t, isPivot(values, 4, 2, false, true), "ties fail the strict check")
	assert.False(t, isPivot(values, 5, 2, false, false), "needs order bars on the right")
	assert.True(t, isPivot(values, 4, 2, false, false))
}

func TestPriceAction_FormationsConfirmedOnce(t *testing.T) {
	tests := []struct {
		name    string
		knots   []knot
		pattern string
		confirm int
		bullish bool
	}{
		{
			name:    "triple top",
			knots:   []knot{{0, 100}, {20, 120}, {32, 105}, {45, 120.3}, {57, 100}, {70, 120.6}, {110, 95}},
			pattern: PatternTripleTop,
			confirm: 90,
		},
		{
			name:    "triple bottom",
			knots:   []knot{{0, 120}, {20, 100}, {32, 115}, {45, 100.3}, {57, 120}, {70, 100.6}, {110, 125}},
			pattern: PatternTripleBottom,
			confirm: 90,
			bullish: true,
		},
		{
			name:    "head and shoulders",
			knots:   []knot{{0, 100}, {30, 110}, {45, 100}, {60, 120}, {75, 103}, {90, 110.5}, {130, 90}},
			pattern: PatternHeadAndShoulders,
			confirm: 110,
		},
		{
			name:    "inverse head and shoulders",
			knots:   []knot{{0, 120}, {30, 110}, {45, 120}, {60, 100}, {75, 117}, {90, 109.5}, {130, 130}},
			pattern: PatternInverseHeadShoulder,
			confirm: 110,
			bullish: true,
		},
		{
			name:    "double top just inside level tolerance",
			knots:   []knot{{0, 100}, {30, 120}, {45, 105}, {60, 120.9}, {100, 95}},
			pattern: PatternDoubleTop,
			confirm: 80,
		},
		{
			name:    "shoulders just inside shoulder tolerance",
			knots:   []knot{{0, 100}, {30, 110}, {45, 100}, {60, 120}, {75, 103}, {90, 114.5}, {130, 90}},
			pattern: PatternHeadAndShoulders,
			confirm: 110,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := path(tt.knots, 0.5)
			NewPriceAction().Detect(bars, dto.SignalConfig{})

			for i, b := range bars {
				if i == tt.confirm {
					continue
				}
				assert.NotContains(t, b.Patterns, tt.pattern, "bar %d", i)
			}
			assert.Contains(t, bars[tt.confirm].Patterns, tt.pattern)
			if tt.bullish {
				assert.True(t, bars[tt.confirm].Flags.BullishPriceAction)
			} else {
				assert.True(t, bars[tt.confirm].Flags.BearishPriceAction)
			}

			prefix := path(tt.knots, 0.5)[:tt.confirm]
			NewPriceAction().Detect(prefix, dto.SignalConfig{})
			for i, b := range prefix {
				assert.NotContains(t, b.Patterns, tt.pattern, "prefix bar %d", i)
			}
		})
	}
}

func TestPriceAction_OutsideTolerance(t *testing.T) {
	tests := []struct {
		name  string
		knots []knot
		quiet bool
	}{
		{
			name:  "second top more than 1% higher",
			knots: []knot{{0, 100}, {30, 120}, {45, 105}, {60, 121.5}, {100, 95}},
			quiet: true,
		},
		{
			name:  "shoulders more than 5% apart",
			knots: []knot{{0, 100}, {30, 110}, {45, 100}, {60, 120}, {75, 103}, {90, 116}, {130, 90}},
			quiet: true,
		},
		{
			// the pairs still form double tops
			name:  "tops spread wider than three windows",
			knots: []knot{{0, 100}, {20, 120}, {35, 105}, {50, 120.3}, {65, 100}, {85, 120.6}, {125, 95}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := path(tt.knots, 0.5)
			NewPriceAction().Detect(bars, dto.SignalConfig{})

			for i, b := range bars {
				assert.NotContains(t, b.Patterns, PatternTripleTop, "bar %d", i)
				assert.NotContains(t, b.Patterns, PatternHeadAndShoulders, "bar %d", i)
				if tt.quiet {
					assert.False(t, b.Flags.BearishPriceAction, "bar %d", i)
				}
			}
		})
	}
}

// harmonicPath lays out X, A, B, C and D 15 bars apart, each leg sized by the
// given ratio of the previous one. D sits on bar 72 and is confirmed on bar 82.
func harmonicPath(x, a, abXA, bcAB, cdBC, lead, tail float64) []dto.AnnotatedBar {
	b := a - abXA*(a-x)
	c := b + bcAB*(a-b)
	d := c - cdBC*(c-b)
	return path([]knot{{0, lead}, {12, x}, {27, a}, {42, b}, {57, c}, {72, d}, {90, tail}}, 0)
}

func TestHarmonic_Rules(t *testing.T) {
	tests := []struct {
		name             string
		x, a             float64
		abXA, bcAB, cdBC float64
		lead, tail       float64
		pattern          string
		bullish          bool
	}{
		{"bearish gartley", 130, 100, 0.618, 0.382, 1.272, 120, 110, PatternGartley, false},
		{"butterfly", 100, 130, 0.786, 0.382, 1.618, 110, 125, PatternButterfly, true},
		{"bat", 100, 130, 0.5, 0.886, 2.618, 110, 125, PatternBat, true},
		{"bearish bat", 130, 100, 0.5, 0.886, 2.618, 120, 105, PatternBat, false},
		{"crab", 100, 130, 0.382, 0.382, 3.618, 110, 125, PatternCrab, true},
		{"shark", 100, 130, 1.13, 1.13, 1.13, 110, 125, PatternShark, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bars := harmonicPath(tt.x, tt.a, tt.abXA, tt.bcAB, tt.cdBC, tt.lead, tt.tail)
			NewHarmonic().Detect(bars, dto.SignalConfig{})

			require.Equal(t, []string{tt.pattern}, bars[82].Patterns)
			assert.Equal(t, tt.bullish, bars[82].Flags.BullishHarmonic)
			assert.Equal(t, !tt.bullish, bars[82].Flags.BearishHarmonic)
			for i, bar := range bars {
				if i == 82 {
					continue
				}
				assert.Empty(t, bar.Patterns, "bar %d", i)
			}
		})
	}
}

func TestHarmonic_RatioOutsideTolerance(t *testing.T) {
	// AB/XA of 0.7 is too far from both 0.618 and 0.786.
	bars := harmonicPath(100, 130, 0.7, 0.382, 1.618, 110, 125)
	NewHarmonic().Detect(bars, dto.SignalConfig{})

	for i, bar := range bars {
		assert.Empty(t, bar.Patterns, "bar %d", i)
		assert.False(t, bar.Flags.BullishHarmonic, "bar %d", i)
	}
}
