package pattern

import (
	"crypto-signal-backtest/internal/dto"
	"math"
)

const (
	PatternDoubleTop           = "double_top"
	PatternDoubleBottom        = "double_bottom"
	PatternTripleTop           = "triple_top"
	PatternTripleBottom        = "triple_bottom"
	PatternHeadAndShoulders    = "head_and_shoulders"
	PatternInverseHeadShoulder = "inverse_head_and_shoulders"

	priceActionWindow = 20
	levelTolerance    = 0.01
	shoulderTolerance = 0.05
)

// PriceAction detects reversal formations built from pivot highs and lows. A pivot
// is only known window bars after it prints, so formations are reported on the bar
// that confirms their last pivot.
type PriceAction struct {
	window int
}

func NewPriceAction() *PriceAction {
	return &PriceAction{window: priceActionWindow}
}

func (d *PriceAction) Name() string { return "price_action" }

func (d *PriceAction) Detect(annotated []dto.AnnotatedBar, cfg dto.SignalConfig) {
	if !cfg.PriceActionEnabled() {
		return
	}

	highs := make([]float64, len(annotated))
	lows := make([]float64, len(annotated))
	for i, b := range annotated {
		highs[i] = b.High
		lows[i] = b.Low
	}

	var pivotHighs, pivotLows []pivot
	for i := range annotated {
		p := i - d.window
		if p < 0 {
			continue
		}

		var names []string
		if isPivot(highs[:i+1], p, d.window, true, false) && d.fresh(pivotHighs, p) {
			pivotHighs = append(pivotHighs, pivot{index: p, price: highs[p], high: true})
			names = append(names, d.tops(pivotHighs, pivotLows)...)
		}
		if isPivot(lows[:i+1], p, d.window, false, false) && d.fresh(pivotLows, p) {
			pivotLows = append(pivotLows, pivot{index: p, price: lows[p]})
			names = append(names, d.bottoms(pivotLows, pivotHighs)...)
		}
		if len(names) == 0 {
			continue
		}

		annotated[i].Patterns = append(annotated[i].Patterns, names...)
		for _, name := range names {
			switch name {
			case PatternDoubleBottom, PatternTripleBottom, PatternInverseHeadShoulder:
				annotated[i].Flags.BullishPriceAction = true
			default:
				annotated[i].Flags.BearishPriceAction = true
			}
		}
	}
}

// fresh rejects a pivot that sits on the same plateau as the previous one of its kind.
func (d *PriceAction) fresh(points []pivot, p int) bool {
	return len(points) == 0 || p-points[len(points)-1].index > d.window
}

// tops evaluates the formations completed by the newest pivot high.
func (d *PriceAction) tops(highs, lows []pivot) []string {
	var names []string
	n := len(highs)

	if n >= 2 {
		h1, h2 := highs[n-2], highs[n-1]
		if h2.index-h1.index <= 2*d.window && within(h1.price, h2.price, levelTolerance) && anyBetween(lows, h1.index, h2.index) {
			names = append(names, PatternDoubleTop)
		}
	}
	if n >= 3 {
		h1, h2, h3 := highs[n-3], highs[n-2], highs[n-1]
		if h3.index-h1.index <= 3*d.window {
			if within(h1.price, h2.price, levelTolerance) && within(h1.price, h3.price, levelTolerance) {
				names = append(names, PatternTripleTop)
			}
			if h2.price > h1.price && h2.price > h3.price && within(h1.price, h3.price, shoulderTolerance) {
				names = append(names, PatternHeadAndShoulders)
			}
		}
	}
	return names
}

// bottoms mirrors tops for pivot lows.
func (d *PriceAction) bottoms(lows, highs []pivot) []string {
	var names []string
	n := len(lows)

	if n >= 2 {
		l1, l2 := lows[n-2], lows[n-1]
		if l2.index-l1.index <= 2*d.window && within(l1.price, l2.price, levelTolerance) && anyBetween(highs, l1.index, l2.index) {
			names = append(names, PatternDoubleBottom)
		}
	}
	if n >= 3 {
		l1, l2, l3 := lows[n-3], lows[n-2], lows[n-1]
		if l3.index-l1.index <= 3*d.window {
			if within(l1.price, l2.price, levelTolerance) && within(l1.price, l3.price, levelTolerance) {
				names = append(names, PatternTripleBottom)
			}
			if l2.price < l1.price && l2.price < l3.price && within(l1.price, l3.price, shoulderTolerance) {
				names = append(names, PatternInverseHeadShoulder)
			}
		}
	}
	return names
}

// within reports |b-a|/a < tol.
func within(a, b, tol float64) bool {
	if a == 0 {
		return false
	}
	return math.Abs(b-a)/math.Abs(a) < tol
}

func anyBetween(points []pivot, from, to int) bool {
	for _, p := range points {
		if p.index >= from && p.index <= to {
			return true
		}
	}
	return false
}
