package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "signal",
	Short: "StockPulse - market-event signal pipeline",
	Long: `StockPulse CLI

Event-to-signal pipeline for Taiwan-listed instruments: collects news
and announcements, scores each event's directional impact, and
aggregates the scores into one robust signal.

Usage:
  go run ./cmd/signal [command]

Examples:
  go run ./cmd/signal analyze --query 2330
  go run ./cmd/signal api
  go run ./cmd/signal watch`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
