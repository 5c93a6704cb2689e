package judge

import (
	"context"
	"sync"
	"time"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// SchedulerConfig bounds the evaluation fan-out
type SchedulerConfig struct {
	Workers     int           // concurrent scorer calls
	EvalCap     int           // events at or beyond this index skip the scorer
	ItemTimeout time.Duration // per-item scoring timeout
}

// Scheduler runs evaluator calls concurrently over a candidate event set
// with bounded parallelism and per-item failure isolation.
type Scheduler struct {
	evaluator *Evaluator
	cfg       SchedulerConfig
	logger    *logger.Logger
}

// NewScheduler creates a Scheduler
func NewScheduler(evaluator *Evaluator, cfg SchedulerConfig, log *logger.Logger) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = 6
	}
	if cfg.EvalCap <= 0 {
		cfg.EvalCap = 30
	}
	if cfg.ItemTimeout <= 0 {
		cfg.ItemTimeout = 20 * time.Second
	}
	return &Scheduler{
		evaluator: evaluator,
		cfg:       cfg,
		logger:    log.WithField("module", "scheduler"),
	}
}

// Run evaluates all events and delivers each EvaluatedEvent as it
// completes. Guarantees: exactly one result per input event (no drops,
// no duplicates), completion order unspecified. Events beyond the cap
// get a neutral judgment without touching the scorer. Context
// cancellation stops dispatching scorer work; remaining events unwind
// through the instant rule-based path so the count invariant holds even
// though the consumer will discard the results.
//
// The returned channel is closed after the last result. now anchors the
// derived age-decay scores.
func (s *Scheduler) Run(ctx context.Context, events []contracts.Event, now time.Time) <-chan contracts.EvaluatedEvent {
	out := make(chan contracts.EvaluatedEvent, len(events))

	scheduled := events
	var overflow []contracts.Event
	if len(events) > s.cfg.EvalCap {
		scheduled = events[:s.cfg.EvalCap]
		overflow = events[s.cfg.EvalCap:]
	}

	s.logger.WithFields(map[string]interface{}{
		"events":    len(events),
		"scheduled": len(scheduled),
		"overflow":  len(overflow),
		"workers":   s.cfg.Workers,
	}).Debug("Starting evaluation batch")

	taskCh := make(chan contracts.Event, len(scheduled))
	var wg sync.WaitGroup

	workers := s.cfg.Workers
	if workers > len(scheduled) {
		workers = len(scheduled)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ev := range taskCh {
				out <- s.evaluateOne(ctx, ev, now)
			}
		}()
	}

	for _, ev := range scheduled {
		taskCh <- ev
	}
	close(taskCh)

	// Overflow events bypass the pool entirely
	for _, ev := range overflow {
		metrics.CountEvaluation("overflow")
		out <- contracts.NewEvaluatedEvent(ev, NeutralJudgment(), now)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// evaluateOne isolates a single evaluation: its own timeout, and a
// fallback path when the pipeline is already cancelled.
func (s *Scheduler) evaluateOne(ctx context.Context, ev contracts.Event, now time.Time) contracts.EvaluatedEvent {
	select {
	case <-ctx.Done():
		// Pipeline cancelled: skip the scorer, keep the count invariant
		return contracts.NewEvaluatedEvent(ev, FallbackJudgment(ev.RiskTag), now)
	default:
	}

	itemCtx, cancel := context.WithTimeout(ctx, s.cfg.ItemTimeout)
	defer cancel()

	judgment := s.evaluator.Evaluate(itemCtx, ev)
	return contracts.NewEvaluatedEvent(ev, judgment, now)
}

// RunAll is the batch convenience over Run: it blocks until every event
// is evaluated and returns the full set.
func (s *Scheduler) RunAll(ctx context.Context, events []contracts.Event, now time.Time) []contracts.EvaluatedEvent {
	results := make([]contracts.EvaluatedEvent, 0, len(events))
	for ee := range s.Run(ctx, events, now) {
		results = append(results, ee)
	}
	return results
}
