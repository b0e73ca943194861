package backtest

import (
	"crypto-signal-backtest/internal/dto"
	"time"
)

// Simulate resolves a signal against the bars that follow its anchor. Each bar is
// checked for stop, then target 1, then target 2 using its high and low; the first
// bar with any hit closes the trade. When both the stop and a target sit inside the
// same bar the stop wins, since the intrabar path is unknown.
//
// A terminal signal is returned unchanged. Simulate never modifies future.
func Simulate(signal dto.Signal, future []dto.Bar) dto.Signal {
	if signal.IsTerminal() {
		return signal
	}

	if len(future) == 0 {
		return closeAt(signal, signal.EntryPrice, signal.Timestamp, dto.ExitReasonEndOfData)
	}

	for _, bar := range future {
		if price, reason, hit := checkBar(signal, bar); hit {
			return closeAt(signal, price, bar.Timestamp, reason)
		}
	}

	last := future[len(future)-1]
	return closeAt(signal, last.Close, last.Timestamp, dto.ExitReasonEndOfData)
}

func checkBar(signal dto.Signal, bar dto.Bar) (float64, dto.ExitReason, bool) {
	switch signal.Direction {
	case dto.DirectionLong:
		switch {
		case bar.Low <= signal.StopLoss:
			return signal.StopLoss, dto.ExitReasonStopLoss, true
		case bar.High >= signal.Target1:
			return signal.Target1, dto.ExitReasonTarget1, true
		case bar.High >= signal.Target2:
			return signal.Target2, dto.ExitReasonTarget2, true
		}
	case dto.DirectionShort:
		switch {
		case bar.High >= signal.StopLoss:
			return signal.StopLoss, dto.ExitReasonStopLoss, true
		case bar.Low <= signal.Target1:
			return signal.Target1, dto.ExitReasonTarget1, true
		case bar.Low <= signal.Target2:
			return signal.Target2, dto.ExitReasonTarget2, true
		}
	}
	return 0, "", false
}

func closeAt(signal dto.Signal, price float64, at time.Time, reason dto.ExitReason) dto.Signal {
	signal.Exit = &dto.TradeExit{
		Price:      price,
		Time:       at,
		ProfitLoss: ProfitLossPercent(signal.Direction, signal.EntryPrice, price),
		Reason:     reason,
	}
	return signal
}

// ProfitLossPercent is the signed return of a trade in percent. A zero entry yields 0.
func ProfitLossPercent(direction dto.Direction, entry, exit float64) float64 {
	if entry == 0 {
		return 0
	}
	if direction == dto.DirectionShort {
		return (entry - exit) / entry * 100
	}
	return (exit - entry) / entry * 100
}
