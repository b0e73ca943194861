package cmd

import (
	"context"
	"crypto-signal-backtest/internal/dto"
	"crypto-signal-backtest/internal/signal"
	"crypto-signal-backtest/pkg/utils"
	"encoding/json"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type backtestFlags struct {
	exchange  string
	timeframe string
	days      int
	save      bool
	notify    bool
	balance   float64
	asJSON    bool
}

var btFlags backtestFlags

var backtestCmd = &cobra.Command{
	Use:   "backtest [SYMBOL...]",
	Short: "Run a backtest once and print the summary",
	Long: `Run a backtest for each symbol (or the configured backtest.symbols) and print
the summary. Nothing is stored unless --save is given.`,
	RunE: runBacktestCmd,
}

func init() {
	f := backtestCmd.Flags()
	f.StringVarP(&btFlags.exchange, "exchange", "e", "", "exchange to fetch candles from (default from config)")
	f.StringVarP(&btFlags.timeframe, "timeframe", "t", "", "candle timeframe, e.g. 1h or 4h (default from config)")
	f.IntVarP(&btFlags.days, "days", "d", 0, "days of history to replay (default from config)")
	f.BoolVar(&btFlags.save, "save", false, "store the results in the database")
	f.BoolVar(&btFlags.notify, "notify", false, "send the summary to telegram")
	f.Float64Var(&btFlags.balance, "balance", 0, "account balance used to size the last signal of each result")
	f.BoolVar(&btFlags.asJSON, "json", false, "print results as JSON")
}

func runBacktestCmd(cmd *cobra.Command, args []string) error {
	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []DependencyOption
	if !btFlags.save {
		opts = append(opts, WithoutDB())
	}
	if !btFlags.notify {
		opts = append(opts, WithoutTelegram())
	}
	appDep, err := NewAppDependency(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create app dependency: %w", err)
	}
	defer appDep.Close()

	symbols := args
	if len(symbols) == 0 {
		symbols = appDep.cfg.Backtest.Symbols
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbol given and backtest.symbols is empty")
	}

	reqs := make([]dto.BacktestRequest, 0, len(symbols))
	for _, symbol := range symbols {
		reqs = append(reqs, dto.BacktestRequest{
			Exchange:  btFlags.exchange,
			Symbol:    symbol,
			Timeframe: btFlags.timeframe,
			Days:      btFlags.days,
			Save:      btFlags.save,
			Notify:    btFlags.notify,
		})
	}

	results, err := appDep.Services().BacktestService.RunBatch(ctx, reqs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if btFlags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	for i, result := range results {
		printSummary(out, symbols[i], result, btFlags.balance)
	}
	return nil
}

// printSummary writes a human readable report. A nil result prints a placeholder.
func printSummary(w io.Writer, symbol string, result *dto.BacktestResult, balance float64) {
	if result == nil {
		fmt.Fprintf(w, "== %s ==\nbacktest unavailable: no data for the requested window\n\n", strings.ToUpper(symbol))
		return
	}

	fmt.Fprintf(w, "== %s (%s, %s, %d days) ==\n", result.Symbol, result.Exchange, result.Timeframe, result.Days)
	fmt.Fprintf(w, "period         %s -> %s (%d bars)\n", result.StartDate.UTC().Format("2006-01-02 15:04"), result.EndDate.UTC().Format("2006-01-02 15:04"), result.TotalBars)
	fmt.Fprintf(w, "signals        %d (%d win / %d loss)\n", result.TotalSignals, result.WinningSignals, result.LosingSignals)
	fmt.Fprintf(w, "win rate       %.2f%%\n", result.WinRate)
	fmt.Fprintf(w, "avg profit     %s\n", utils.FormatPercentage(result.AvgProfit))
	fmt.Fprintf(w, "max drawdown   %.2f%%\n", result.MaxDrawdown)
	fmt.Fprintf(w, "profit factor  %.2f\n", result.ProfitFactor)
	if result.ID != 0 {
		fmt.Fprintf(w, "saved as       #%d\n", result.ID)
	}

	if len(result.StrategyPerformance) > 0 {
		names := make([]string, 0, len(result.StrategyPerformance))
		for name := range result.StrategyPerformance {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(w)
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "STRATEGY\tTRADES\tWIN%\tPF")
		for _, name := range names {
			perf := result.StrategyPerformance[name]
			fmt.Fprintf(tw, "%s\t%d\t%.2f\t%.2f\n", name, perf.Count, perf.WinRate, perf.ProfitFactor)
		}
		tw.Flush()
	}

	if n := len(result.Signals); n > 0 && balance > 0 {
		last := result.Signals[n-1]
		size := signal.PositionSize(balance, last.RiskPercent, last.EntryPrice, last.StopLoss, last.Leverage)
		fmt.Fprintf(w, "\nlast signal    %s %s @ %.8g, position size %.2f on balance %.2f\n",
			last.Direction, last.Strategy, last.EntryPrice, size, balance)
	}
	fmt.Fprintln(w)
}
