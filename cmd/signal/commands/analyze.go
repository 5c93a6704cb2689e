package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/wltsai/stockpulse/internal/pipeline"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run one analysis and print the result as JSON",
	Long: `Run the event-to-signal pipeline once for a query and print
the batch result to stdout.

Example:
  go run ./cmd/signal analyze --query 2330
  go run ./cmd/signal analyze --query 台積電 --hours 24 --limit 30`,
	RunE: runAnalyze,
}

var (
	analyzeQuery string
	analyzeHours int
	analyzeLimit int
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVar(&analyzeQuery, "query", "", "instrument id or keyword (required)")
	analyzeCmd.Flags().IntVar(&analyzeHours, "hours", 0, "recency window in hours (default from config)")
	analyzeCmd.Flags().IntVar(&analyzeLimit, "limit", 0, "max events considered (default from config)")
	_ = analyzeCmd.MarkFlagRequired("query")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// CLI output goes to stdout; keep logs out of the way
	if !verbose {
		cfg.LogLevel = "warn"
	}
	log := logger.New(cfg)

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := p.Analyze(ctx, pipeline.Request{
		Query: analyzeQuery,
		Hours: analyzeHours,
		Limit: analyzeLimit,
	})
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
