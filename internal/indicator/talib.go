package indicator

import "github.com/markcheno/go-talib"

// The go-talib functions index past the end of short inputs, so every call is
// guarded by the minimum length the function needs. Output slices always have the
// same length as the input and are zero until warm.

type line struct {
	values []float64
	warm   int
}

func (l line) ready(i int) bool {
	return l.values != nil && i >= l.warm && i < len(l.values)
}

func (l line) at(i int) float64 {
	if !l.ready(i) {
		return 0
	}
	return l.values[i]
}

func emaLine(closes []float64, period int) line {
	if period < 2 || len(closes) < period+1 {
		return line{}
	}
	return line{values: talib.Ema(closes, period), warm: period - 1}
}

func smaLine(closes []float64, period int) line {
	if period < 2 || len(closes) < period+1 {
		return line{}
	}
	return line{values: talib.Sma(closes, period), warm: period - 1}
}

func rsiLine(closes []float64, period int) line {
	if period < 2 || len(closes) < period+1 {
		return line{}
	}
	return line{values: talib.Rsi(closes, period), warm: period}
}

func atrLine(highs, lows, closes []float64, period int) line {
	if period < 1 || len(closes) < period+1 {
		return line{}
	}
	return line{values: talib.Atr(highs, lows, closes, period), warm: period}
}

func macdLines(closes []float64, fast, slow, signal int) (macd, sig, hist line) {
	if fast < 2 || slow <= fast || signal < 1 || len(closes) < slow+signal {
		return
	}
	m, s, h := talib.Macd(closes, fast, slow, signal)
	warm := slow + signal - 2
	return line{values: m, warm: warm}, line{values: s, warm: warm}, line{values: h, warm: warm}
}

func bbandLines(closes []float64, period int, dev float64) (upper, middle, lower line) {
	if period < 2 || len(closes) < period+1 {
		return
	}
	u, m, l := talib.BBands(closes, period, dev, dev, talib.SMA)
	warm := period - 1
	return line{values: u, warm: warm}, line{values: m, warm: warm}, line{values: l, warm: warm}
}

// crossAbove reports whether a moved from at-or-below b to above b at bar i.
func crossAbove(a, b line, i int) bool {
	if i < 1 || !a.ready(i-1) || !b.ready(i-1) || !a.ready(i) || !b.ready(i) {
		return false
	}
	return a.values[i] > b.values[i] && a.values[i-1] <= b.values[i-1]
}

// crossBelow reports whether a moved from at-or-above b to below b at bar i.
func crossBelow(a, b line, i int) bool {
	if i < 1 || !a.ready(i-1) || !b.ready(i-1) || !a.ready(i) || !b.ready(i) {
		return false
	}
	return a.values[i] < b.values[i] && a.values[i-1] >= b.values[i-1]
}
