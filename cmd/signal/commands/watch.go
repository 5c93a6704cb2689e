package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wltsai/stockpulse/internal/scheduler"
	"github.com/wltsai/stockpulse/internal/scheduler/jobs"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the watchlist warmer daemon",
	Long: `Periodically run the pipeline for every WATCHLIST entry on the
WATCH_SCHEDULE cron expression. Results are logged, not stored; the
purpose is keeping the judgment cache warm for popular instruments.

Example:
  WATCHLIST=2330,2317 go run ./cmd/signal watch`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(cfg.Watchlist) == 0 {
		return fmt.Errorf("WATCHLIST is empty, nothing to watch")
	}

	log := logger.New(cfg)

	p, cleanup, err := buildPipeline(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	sched := scheduler.New(log)
	warmJob := jobs.NewWatchlistWarmJob(p, cfg.Watchlist, cfg.WatchSchedule, log)
	if err := sched.AddJob(warmJob); err != nil {
		return fmt.Errorf("add warm job: %w", err)
	}

	sched.Start()
	defer sched.Stop()

	// First run right away instead of waiting for the schedule
	if err := sched.RunJob(warmJob.Name()); err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"watchlist": cfg.Watchlist,
		"schedule":  cfg.WatchSchedule,
	}).Info("Watch daemon running")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	log.WithField("signal", sig.String()).Info("Shutdown signal received")
	return nil
}
