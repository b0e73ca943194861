package pattern

import (
	"crypto-signal-backtest/internal/dto"
	"math"
	"sort"
)

const (
	PatternGartley   = "gartley"
	PatternButterfly = "butterfly"
	PatternBat       = "bat"
	PatternCrab      = "crab"
	PatternShark     = "shark"

	harmonicLookback  = 100
	harmonicOrder     = 10
	harmonicTolerance = 0.05
)

type ratioRule struct {
	name             string
	abXA, bcAB, cdBC []float64
}

// Each leg ratio must be within tolerance of one of the listed values.
var harmonicRules = []ratioRule{
	{PatternGartley, []float64{0.618}, []float64{0.382}, []float64{1.272, 1.618}},
	{PatternButterfly, []float64{0.786}, []float64{0.382, 0.886}, []float64{1.618, 2.618}},
	{PatternBat, []float64{0.382, 0.5}, []float64{0.382, 0.886}, []float64{1.618, 2.618}},
	{PatternCrab, []float64{0.382, 0.618}, []float64{0.382, 0.886}, []float64{2.618, 3.618}},
	{PatternShark, []float64{1.13, 1.618}, []float64{1.13, 1.618}, []float64{1.13, 1.618}},
}

// Harmonic looks for XABCD structures among the last five swing points of the
// trailing window. A pattern is reported on the bar that confirms its D point.
type Harmonic struct {
	lookback  int
	order     int
	tolerance float64
}

func NewHarmonic() *Harmonic {
	return &Harmonic{
		lookback:  harmonicLookback,
		order:     harmonicOrder,
		tolerance: harmonicTolerance,
	}
}

func (d *Harmonic) Name() string { return "harmonic" }

func (d *Harmonic) Detect(annotated []dto.AnnotatedBar, cfg dto.SignalConfig) {
	if !cfg.HarmonicEnabled() {
		return
	}

	highs := make([]float64, len(annotated))
	lows := make([]float64, len(annotated))
	for i, b := range annotated {
		highs[i] = b.High
		lows[i] = b.Low
	}

	for i := range annotated {
		p := i - d.order
		if p < 0 {
			continue
		}
		// Only the bar that confirms a fresh swing can change the XABCD set.
		if !isPivot(highs[:i+1], p, d.order, true, true) && !isPivot(lows[:i+1], p, d.order, false, true) {
			continue
		}

		points := d.swings(highs, lows, i)
		if len(points) < 5 {
			continue
		}
		names, bullish := d.match(points[len(points)-5:])
		if len(names) == 0 {
			continue
		}
		annotated[i].Patterns = append(annotated[i].Patterns, names...)
		if bullish {
			annotated[i].Flags.BullishHarmonic = true
		} else {
			annotated[i].Flags.BearishHarmonic = true
		}
	}
}

// swings lists the swing points visible at bar i inside the trailing window.
func (d *Harmonic) swings(highs, lows []float64, i int) []pivot {
	start := i - d.lookback + 1
	if start < 0 {
		start = 0
	}
	window := i + 1

	var points []pivot
	for p := start + d.order; p <= i-d.order; p++ {
		switch {
		case isPivot(highs[start:window], p-start, d.order, true, true):
			points = append(points, pivot{index: p, price: highs[p], high: true})
		case isPivot(lows[start:window], p-start, d.order, false, true):
			points = append(points, pivot{index: p, price: lows[p]})
		}
	}
	sort.SliceStable(points, func(a, b int) bool { return points[a].index < points[b].index })
	return points
}

// match checks the XABCD legs against every rule. A structure whose last leg moves
// down is bullish (it completes at a low).
func (d *Harmonic) match(xabcd []pivot) ([]string, bool) {
	xa := xabcd[1].price - xabcd[0].price
	ab := xabcd[2].price - xabcd[1].price
	bc := xabcd[3].price - xabcd[2].price
	cd := xabcd[4].price - xabcd[3].price

	abXA := legRatio(ab, xa)
	bcAB := legRatio(bc, ab)
	cdBC := legRatio(cd, bc)

	var names []string
	for _, rule := range harmonicRules {
		if d.near(abXA, rule.abXA) && d.near(bcAB, rule.bcAB) && d.near(cdBC, rule.cdBC) {
			names = append(names, rule.name)
		}
	}
	return names, cd < 0
}

func (d *Harmonic) near(v float64, targets []float64) bool {
	for _, t := range targets {
		if math.Abs(v-t) < d.tolerance {
			return true
		}
	}
	return false
}

func legRatio(leg, base float64) float64 {
	if base == 0 {
		return 0
	}
	return math.Abs(leg / base)
}
