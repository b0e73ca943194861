package signal

import "github.com/shopspring/decimal"

// PositionSize returns the position notional that risks riskPercent of balance if
// the stop is hit, scaled by leverage. It returns 0 when entry and stop coincide.
func PositionSize(balance, riskPercent, entry, stop float64, leverage int) float64 {
	if entry == 0 || entry == stop {
		return 0
	}
	if leverage < 1 {
		leverage = 1
	}

	riskAmount := decimal.NewFromFloat(balance).Mul(decimal.NewFromFloat(riskPercent)).Div(decimal.NewFromInt(100))
	riskPerUnit := decimal.NewFromFloat(entry).Sub(decimal.NewFromFloat(stop)).Abs().Div(decimal.NewFromFloat(entry))

	size, _ := riskAmount.Div(riskPerUnit).Mul(decimal.NewFromInt(int64(leverage))).Round(8).Float64()
	return size
}
