package indicator

import (
	"crypto-signal-backtest/internal/dto"
	"math"
	"testing"
	"time"

	"github.com/creasty/defaults"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultConfig(t *testing.T) dto.SignalConfig {
	t.Helper()
	var cfg dto.SignalConfig
	require.NoError(t, defaults.Set(&cfg))
	return cfg
}

func waveSeries(n int) []dto.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]dto.Bar, n)
	for i := range bars {
		c := 100 + 10*math.Sin(float64(i)/7) + float64(i)*0.05
		bars[i] = dto.Bar{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		}
	}
	return bars
}

func risingSeries(n int) []dto.Bar {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	bars := make([]dto.Bar, n)
	for i := range bars {
		c := 100 + float64(i)
		bars[i] = dto.Bar{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: c - 0.5, High: c + 1, Low: c - 1, Close: c}
	}
	return bars
}

type recordingDetector struct{ seen int }

func (d *recordingDetector) Name() string { return "recording" }

func (d *recordingDetector) Detect(annotated []dto.AnnotatedBar, _ dto.SignalConfig) {
	d.seen = len(annotated)
}

func TestAnnotate_IsCausal(t *testing.T) {
	cfg := defaultConfig(t)
	bars := waveSeries(260)
	a := NewAnnotator()

	full := a.Annotate(bars, cfg)
	for _, i := range []int{40, 120, 230, 259} {
		prefix := a.Annotate(bars[:i+1], cfg)
		assert.Equal(t, full[i].Indicators, prefix[i].Indicators, "bar %d", i)
		assert.Equal(t, full[i].Flags, prefix[i].Flags, "bar %d", i)
	}
}

func TestAnnotate_WarmupIsZero(t *testing.T) {
	cfg := defaultConfig(t)
	out := NewAnnotator().Annotate(waveSeries(60), cfg)

	assert.Zero(t, out[10].Indicators.RSI)
	assert.NotZero(t, out[14].Indicators.RSI)
	assert.Zero(t, out[20].Indicators.MACD)
	assert.NotZero(t, out[40].Indicators.MACD)
	assert.Zero(t, out[59].Indicators.EMA200, "not enough bars for the 200 period average")
	assert.False(t, out[59].Flags.Uptrend)
	assert.NotZero(t, out[30].Indicators.BBUpper)
	assert.Greater(t, out[30].Indicators.BBUpper, out[30].Indicators.BBLower)
}

func TestAnnotate_ShortSeriesDoesNotPanic(t *testing.T) {
	cfg := defaultConfig(t)
	for n := 0; n < 40; n++ {
		assert.NotPanics(t, func() {
			out := NewAnnotator().Annotate(waveSeries(n), cfg)
			assert.Len(t, out, n)
		})
	}
}

func TestAnnotate_RisingSeries(t *testing.T) {
	cfg := defaultConfig(t)
	out := NewAnnotator().Annotate(risingSeries(220), cfg)
	last := out[len(out)-1]

	assert.True(t, last.Flags.RSIOverbought)
	assert.False(t, last.Flags.RSIOversold)
	assert.True(t, last.Flags.Uptrend)
	assert.False(t, last.Flags.Downtrend)
	assert.Greater(t, last.Indicators.ATR, 0.0)
	assert.InDelta(t, last.Close-2*last.Indicators.ATR, last.Indicators.ATRStopLong, 1e-9)
	assert.InDelta(t, last.Close+2*last.Indicators.ATR, last.Indicators.ATRStopShort, 1e-9)
}

func TestAnnotate_MACDCrossesAlternate(t *testing.T) {
	cfg := defaultConfig(t)
	out := NewAnnotator().Annotate(waveSeries(200), cfg)

	var ups, downs int
	for i, b := range out {
		assert.False(t, b.Flags.MACDCrossUp && b.Flags.MACDCrossDown, "bar %d", i)
		if b.Flags.MACDCrossUp {
			ups++
		}
		if b.Flags.MACDCrossDown {
			downs++
		}
	}
	assert.Greater(t, ups, 0)
	assert.Greater(t, downs, 0)
	assert.LessOrEqual(t, math.Abs(float64(ups-downs)), 1.0)
}

func TestAnnotate_Toggles(t *testing.T) {
	cfg := defaultConfig(t)
	off := false
	cfg.UseMACD, cfg.UseRSI, cfg.UseATR = &off, &off, &off

	out := NewAnnotator().Annotate(waveSeries(100), cfg)
	for _, b := range out {
		assert.Zero(t, b.Indicators.MACD)
		assert.Zero(t, b.Indicators.RSI)
		assert.Zero(t, b.Indicators.ATR)
		assert.False(t, b.Flags.MACDCrossUp)
		assert.False(t, b.Flags.RSIOversold)
	}
	assert.NotZero(t, out[99].Indicators.EMA50)
}

func TestAnnotate_RunsDetectors(t *testing.T) {
	d := &recordingDetector{}
	bars := waveSeries(30)
	snapshot := append([]dto.Bar(nil), bars...)

	NewAnnotator(d).Annotate(bars, defaultConfig(t))

	assert.Equal(t, 30, d.seen)
	assert.Equal(t, snapshot, bars)
}
