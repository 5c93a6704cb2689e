// Package judge turns events into judgments: an injected LLM scorer with
// a deterministic rule-based fallback, a bounded judgment cache, and a
// worker-pool scheduler for concurrent evaluation.
package judge

import (
	"context"
	"time"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// Scorer is the injected LLM scoring capability
type Scorer interface {
	Available() bool
	Score(ctx context.Context, text string) (contracts.Judgment, error)
}

// Evaluator produces exactly one Judgment per event. It never returns an
// error: any scorer failure degrades to the rule-based fallback derived
// from the event's keyword risk tag.
type Evaluator struct {
	scorer Scorer // may be nil
	cache  *Cache
	logger *logger.Logger
}

// NewEvaluator creates an Evaluator. scorer may be nil, in which case
// every event takes the rule-based path.
func NewEvaluator(scorer Scorer, cache *Cache, log *logger.Logger) *Evaluator {
	return &Evaluator{
		scorer: scorer,
		cache:  cache,
		logger: log.WithField("module", "evaluator"),
	}
}

// Evaluate returns the judgment for one event. A cache hit bypasses the
// scorer entirely: within the cache's lifetime the same text always
// yields the same judgment.
func (e *Evaluator) Evaluate(ctx context.Context, ev contracts.Event) contracts.Judgment {
	key := ev.ComposedText()

	if judgment, ok := e.cache.Get(key); ok {
		metrics.CountEvaluation("cache")
		return judgment
	}

	judgment, path := e.evaluateUncached(ctx, ev)
	metrics.CountEvaluation(path)
	e.cache.Put(key, judgment)
	return judgment
}

func (e *Evaluator) evaluateUncached(ctx context.Context, ev contracts.Event) (contracts.Judgment, string) {
	if e.scorer == nil || !e.scorer.Available() {
		return FallbackJudgment(ev.RiskTag), "fallback"
	}

	start := time.Now()
	judgment, err := e.scorer.Score(ctx, ev.ComposedText())
	metrics.ObserveEvaluation(time.Since(start))

	if err != nil {
		e.logger.WithError(err).WithField("title", ev.Title).Warn("Scorer failed, using rule-based fallback")
		return FallbackJudgment(ev.RiskTag), "fallback"
	}

	return judgment.Clamp(), "llm"
}

// FallbackJudgment is the deterministic rule mapping a keyword risk tag
// to a judgment. Used when the scorer is unavailable, times out, or
// returns malformed output.
func FallbackJudgment(tag contracts.RiskTag) contracts.Judgment {
	switch tag {
	case contracts.RiskNegative:
		return contracts.Judgment{
			Direction:  -1,
			Severity:   3,
			Confidence: 0.55,
			Horizon:    contracts.HorizonShort,
			Rationale:  "rule-based fallback: negative keyword match",
		}
	case contracts.RiskPositive:
		return contracts.Judgment{
			Direction:  1,
			Severity:   3,
			Confidence: 0.55,
			Horizon:    contracts.HorizonShort,
			Rationale:  "rule-based fallback: positive keyword match",
		}
	default:
		return contracts.Judgment{
			Direction:  0,
			Severity:   1,
			Confidence: 0.3,
			Horizon:    contracts.HorizonShort,
			Rationale:  "rule-based fallback: no keyword match",
		}
	}
}

// NeutralJudgment is assigned to events beyond the evaluation cap
// without invoking the scorer. Explicit cost/latency tradeoff.
func NeutralJudgment() contracts.Judgment {
	return contracts.Judgment{
		Direction:  0,
		Severity:   1,
		Confidence: 0.3,
		Horizon:    contracts.HorizonShort,
		Rationale:  "not scored: over evaluation cap",
	}
}
