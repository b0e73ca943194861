package backtest

import (
	"crypto-signal-backtest/internal/dto"
	"sort"
)

const initialEquity = 100.0

// Stats is the aggregate view over a set of terminal signals.
type Stats struct {
	TotalSignals   int
	WinningSignals int
	LosingSignals  int
	WinRate        float64
	AvgProfit      float64
	MaxDrawdown    float64
	ProfitFactor   float64
	ByStrategy     map[string]dto.StrategyPerformance
}

// Summarize computes win rate, average profit, max drawdown, profit factor and the
// per-strategy breakdown. A trade with P/L exactly 0 counts as a loss.
func Summarize(signals []dto.Signal) Stats {
	stats := Stats{
		TotalSignals: len(signals),
		ByStrategy:   make(map[string]dto.StrategyPerformance),
	}
	if len(signals) == 0 {
		return stats
	}

	var total, profitSum, lossSum float64
	for _, s := range signals {
		pl := s.ProfitLoss()
		total += pl

		perf := stats.ByStrategy[s.Strategy]
		perf.Count++
		if pl > 0 {
			stats.WinningSignals++
			profitSum += pl
			perf.WinCount++
			perf.ProfitSum += pl
		} else {
			stats.LosingSignals++
			lossSum += -pl
			perf.LossCount++
			perf.LossSum += -pl
		}
		stats.ByStrategy[s.Strategy] = perf
	}

	for name, perf := range stats.ByStrategy {
		perf.WinRate = ratio(float64(perf.WinCount), float64(perf.Count)) * 100
		perf.ProfitFactor = profitFactor(perf.ProfitSum, perf.LossSum)
		stats.ByStrategy[name] = perf
	}

	stats.WinRate = ratio(float64(stats.WinningSignals), float64(stats.TotalSignals)) * 100
	stats.AvgProfit = ratio(total, float64(stats.TotalSignals))
	stats.ProfitFactor = profitFactor(profitSum, lossSum)
	stats.MaxDrawdown = MaxDrawdown(EquityCurve(signals))

	return stats
}

// EquityCurve compounds each signal's P/L onto a starting equity of 100, in anchor
// order. Signals sharing an anchor keep their relative order.
func EquityCurve(signals []dto.Signal) []float64 {
	ordered := make([]dto.Signal, len(signals))
	copy(ordered, signals)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	curve := make([]float64, 0, len(ordered)+1)
	curve = append(curve, initialEquity)
	equity := initialEquity
	for _, s := range ordered {
		equity *= 1 + s.ProfitLoss()/100
		curve = append(curve, equity)
	}
	return curve
}

// MaxDrawdown returns the largest peak-to-trough decline of curve, in percent.
func MaxDrawdown(curve []float64) float64 {
	var peak, maxDD float64
	for i, v := range curve {
		if i == 0 || v > peak {
			peak = v
		}
		if peak <= 0 {
			continue
		}
		if dd := (peak - v) / peak * 100; dd > maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// profitFactor falls back to the profit sum when nothing was lost.
func profitFactor(profitSum, lossSum float64) float64 {
	if lossSum > 0 {
		return profitSum / lossSum
	}
	if profitSum > 0 {
		return profitSum
	}
	return 0
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
