package commands

import (
	"fmt"

	"github.com/wltsai/stockpulse/internal/collect"
	"github.com/wltsai/stockpulse/internal/external/cnyes"
	"github.com/wltsai/stockpulse/internal/external/gnews"
	"github.com/wltsai/stockpulse/internal/external/openai"
	"github.com/wltsai/stockpulse/internal/external/twse"
	"github.com/wltsai/stockpulse/internal/judge"
	"github.com/wltsai/stockpulse/internal/pipeline"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
	"github.com/wltsai/stockpulse/pkg/redis"
)

// buildPipeline wires the full dependency graph shared by every command.
// The returned cleanup closes the redis connection if one was opened.
func buildPipeline(cfg *config.Config, log *logger.Logger) (*pipeline.Pipeline, func(), error) {
	// Redis is optional: disabled, every limiter degrades to local-only
	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	cleanup := func() { _ = redisClient.Close() }

	limiter := redis.NewRateLimiter(redisClient, "stockpulse")

	// Provider HTTP clients, each with its own limits
	cnyesHTTP := httputil.New(cfg, log).
		WithLocalLimit(5, 5).
		WithRateLimiter(limiter, redis.CnyesRateLimit)
	twseHTTP := httputil.New(cfg, log).
		WithLocalLimit(2, 2)
	gnewsHTTP := httputil.New(cfg, log).
		WithLocalLimit(2, 2).
		WithRateLimiter(limiter, redis.GNewsRateLimit)
	openaiHTTP := httputil.New(cfg, log).
		DisableRetry(). // single-attempt-then-fallback policy
		WithLocalLimit(10, 10).
		WithRateLimiter(limiter, redis.OpenAIRateLimit)

	cnyesClient := cnyes.NewClient(cnyesHTTP, log, cfg.Cnyes.BaseURL)
	twseClient := twse.NewClient(twseHTTP, log, cfg.TWSE.BaseURL)
	gnewsClient := gnews.NewClient(gnewsHTTP, log, cfg.GNews.BaseURL)

	collector := collect.NewCollector(
		[]collect.Source{
			collect.NewCnyesSource(cnyesClient),
			collect.NewTWSESource(twseClient),
		},
		[]collect.Source{
			collect.NewGNewsSource(gnewsClient),
		},
		log,
	)

	var scorer judge.Scorer
	if cfg.OpenAI.APIKey != "" {
		scorer = openai.NewClient(openaiHTTP, log, cfg.OpenAI)
	}

	cache := judge.NewCache(cfg.Pipeline.CacheSize)
	evaluator := judge.NewEvaluator(scorer, cache, log)
	scheduler := judge.NewScheduler(evaluator, judge.SchedulerConfig{
		Workers:     cfg.Pipeline.EvalWorkers,
		EvalCap:     cfg.Pipeline.EvalCap,
		ItemTimeout: cfg.Pipeline.EvalTimeout,
	}, log)

	p := pipeline.New(collector, scheduler, cfg.Pipeline, log)
	return p, cleanup, nil
}
