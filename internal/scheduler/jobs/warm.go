package jobs

import (
	"context"
	"time"

	"github.com/wltsai/stockpulse/internal/pipeline"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// WatchlistWarmJob periodically runs the pipeline for a fixed set of
// queries. Nothing is stored; the point is keeping the judgment cache
// warm so interactive requests for popular instruments mostly hit it.
type WatchlistWarmJob struct {
	pipeline  *pipeline.Pipeline
	watchlist []string
	schedule  string
	logger    *logger.Logger
}

// NewWatchlistWarmJob creates the warm job
func NewWatchlistWarmJob(p *pipeline.Pipeline, watchlist []string, schedule string, log *logger.Logger) *WatchlistWarmJob {
	return &WatchlistWarmJob{
		pipeline:  p,
		watchlist: watchlist,
		schedule:  schedule,
		logger:    log.WithField("job", "watchlist_warm"),
	}
}

// Name returns the job name
func (j *WatchlistWarmJob) Name() string {
	return "watchlist_warm"
}

// Schedule returns the cron expression
func (j *WatchlistWarmJob) Schedule() string {
	return j.schedule
}

// Run analyzes every watchlist entry in turn
func (j *WatchlistWarmJob) Run(ctx context.Context) error {
	for _, query := range j.watchlist {
		runCtx, cancel := context.WithTimeout(ctx, 3*time.Minute)
		result, err := j.pipeline.Analyze(runCtx, pipeline.Request{Query: query})
		cancel()

		if err != nil {
			j.logger.WithError(err).WithField("query", query).Warn("Warm run failed")
			continue
		}

		j.logger.WithFields(map[string]interface{}{
			"query":  query,
			"events": len(result.Events),
			"score":  result.Signal.Score,
		}).Info("Warm run completed")
	}
	return nil
}
