package telegram

import (
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/pkg/utils"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatPrice prints a price with a precision that suits its magnitude.
func FormatPrice(price float64) string {
	d := decimal.NewFromFloat(price)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1000)):
		return d.StringFixed(2)
	case abs.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return d.StringFixed(4)
	case abs.IsZero():
		return "0"
	default:
		return d.Round(8).String()
	}
}

// FormatSignal renders one simulated signal.
func FormatSignal(signal dto.Signal) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s *%s* (%s)\n", signal.Direction.String(), signal.Symbol, signal.Strategy))
	sb.WriteString(fmt.Sprintf("🕒 %s\n", utils.PrettyDate(signal.Timestamp)))
	sb.WriteString(fmt.Sprintf("Entry: %s | SL: %s\n", FormatPrice(signal.EntryPrice), FormatPrice(signal.StopLoss)))
	sb.WriteString(fmt.Sprintf("T1: %s (R:R %.2f) | T2: %s (R:R %.2f)\n",
		FormatPrice(signal.Target1), signal.RiskReward1, FormatPrice(signal.Target2), signal.RiskReward2))
	sb.WriteString(fmt.Sprintf("Leverage: %dx | Risk: %.2f%%\n", signal.Leverage, signal.RiskPercent))
	if signal.Exit != nil {
		sb.WriteString(fmt.Sprintf("%s %s at %s → %s\n",
			signal.Exit.Reason.Emoji(), signal.Exit.Reason, FormatPrice(signal.Exit.Price), utils.FormatPercentage(signal.Exit.ProfitLoss)))
	}
	return sb.String()
}

// FormatBacktestResult renders the summary sent after a backtest.
func FormatBacktestResult(result *dto.BacktestResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 *Backtest %s*\n", result.Symbol))
	sb.WriteString(fmt.Sprintf("%s | %s | %d days\n", result.Exchange, result.Timeframe, result.Days))
	sb.WriteString(fmt.Sprintf("🗓 %s → %s\n", formatDay(result.StartDate), formatDay(result.EndDate)))
	sb.WriteString(fmt.Sprintf("Bars: %d | Signals: %d\n\n", result.TotalBars, result.TotalSignals))

	sb.WriteString(fmt.Sprintf("✅ Win: %d | ❌ Loss: %d | Win rate: %.2f%%\n",
		result.WinningSignals, result.LosingSignals, result.WinRate))
	sb.WriteString(fmt.Sprintf("💰 Avg P/L: %s | Profit factor: %.2f\n", utils.FormatPercentage(result.AvgProfit), result.ProfitFactor))
	sb.WriteString(fmt.Sprintf("📉 Max drawdown: %.2f%%\n", result.MaxDrawdown))

	if len(result.StrategyPerformance) > 0 {
		names := make([]string, 0, len(result.StrategyPerformance))
		for name := range result.StrategyPerformance {
			names = append(names, name)
		}
		sort.Strings(names)

		sb.WriteString("\n*Per strategy*\n")
		for _, name := range names {
			perf := result.StrategyPerformance[name]
			sb.WriteString(fmt.Sprintf("• %s: %d trades, %.2f%% win, PF %.2f\n", name, perf.Count, perf.WinRate, perf.ProfitFactor))
		}
	}

	if n := len(result.Signals); n > 0 {
		sb.WriteString("\n*Last signal*\n")
		sb.WriteString(FormatSignal(result.Signals[n-1]))
	}

	return sb.String()
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02")
}
