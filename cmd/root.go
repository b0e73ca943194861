package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crypto-signal-backtest",
	Short: "Replay technical trading signals on historical crypto candles",
	Long: `crypto-signal-backtest fetches OHLCV candles, computes indicators and chart
patterns, proposes long and short signals bar by bar and settles every signal
against the bars that follow it.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(backtestCmd)
	rootCmd.AddCommand(migrateCmd)
}
