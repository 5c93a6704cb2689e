// Package pipeline wires collection, evaluation, aggregation and
// selection into the event-to-signal pipeline, delivered either as one
// batch result or as an incremental notice stream.
package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/wltsai/stockpulse/internal/collect"
	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/judge"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/internal/signalcalc"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// ErrInvalidQuery is the only caller-visible pipeline error. Everything
// else degrades into a valid (possibly empty) result.
var ErrInvalidQuery = errors.New("query must not be empty")

// previewPageSize is how many raw events the list notice carries
const previewPageSize = 10

// Request are the only parameters the pipeline consumes from its caller
type Request struct {
	Query string
	Hours int // recency window; <= 0 uses the configured default
	Limit int // max events considered; <= 0 uses the configured default
}

// Pipeline executes one event-to-signal run per request. Stateless apart
// from the judgment cache owned by the evaluator.
type Pipeline struct {
	collector   *collect.Collector
	scheduler   *judge.Scheduler
	selectorCfg signalcalc.SelectorConfig
	cfg         config.PipelineConfig
	logger      *logger.Logger
}

// New creates a Pipeline
func New(collector *collect.Collector, scheduler *judge.Scheduler, cfg config.PipelineConfig, log *logger.Logger) *Pipeline {
	selectorCfg := signalcalc.DefaultSelectorConfig()
	if cfg.SameSourceLimit > 0 {
		selectorCfg.PerSourceCap = cfg.SameSourceLimit
	}
	if cfg.MMRLambda > 0 {
		selectorCfg.Lambda = cfg.MMRLambda
	}
	if cfg.MMRSimThreshold > 0 {
		selectorCfg.SimThreshold = cfg.MMRSimThreshold
	}

	return &Pipeline{
		collector:   collector,
		scheduler:   scheduler,
		selectorCfg: selectorCfg,
		cfg:         cfg,
		logger:      log.WithField("module", "pipeline"),
	}
}

func (p *Pipeline) normalize(req Request) (Request, error) {
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return req, ErrInvalidQuery
	}
	if req.Hours <= 0 {
		req.Hours = p.cfg.WindowHours
	}
	if req.Limit <= 0 {
		req.Limit = p.cfg.EventLimit
	}
	return req, nil
}

// Analyze runs the full pipeline and returns one batch result
func (p *Pipeline) Analyze(ctx context.Context, req Request) (contracts.Result, error) {
	req, err := p.normalize(req)
	if err != nil {
		return contracts.Result{}, err
	}
	metrics.CountQuery("batch")

	now := time.Now()
	events, trace, err := p.collector.Collect(ctx, req.Query, req.Hours, req.Limit)
	if err != nil {
		return contracts.Result{}, err
	}

	evaluated := p.scheduler.RunAll(ctx, events, now)
	restoreInputOrder(events, evaluated)

	signal := p.buildSignal(evaluated)

	p.logger.WithFields(map[string]interface{}{
		"query":  req.Query,
		"events": len(events),
		"score":  signal.Score,
	}).Info("Pipeline completed")

	return contracts.Result{
		Query:       req.Query,
		WindowHours: req.Hours,
		Events:      events,
		Evaluated:   evaluated,
		Signal:      signal,
		Trace:       trace,
	}, nil
}

// Stream runs the same computation incrementally. Frames arrive in the
// wire-contract order: events, list, item (completion order), summary,
// done. The channel closes after done, or as soon as ctx is cancelled;
// cancellation propagates to the scheduler and undelivered results are
// discarded.
func (p *Pipeline) Stream(ctx context.Context, req Request) (<-chan contracts.Notice, error) {
	req, err := p.normalize(req)
	if err != nil {
		return nil, err
	}
	metrics.CountQuery("stream")

	ch := make(chan contracts.Notice)
	go p.runStream(ctx, req, ch)
	return ch, nil
}

func (p *Pipeline) runStream(ctx context.Context, req Request, ch chan<- contracts.Notice) {
	defer close(ch)

	now := time.Now()
	events, trace, err := p.collector.Collect(ctx, req.Query, req.Hours, req.Limit)
	if err != nil {
		// Collector errors are already degraded to traces; this only
		// fires on context cancellation
		return
	}

	if !p.send(ctx, ch, contracts.Notice{
		Type: contracts.NoticeEvents,
		Data: contracts.EventsPayload{Query: req.Query, Count: len(events)},
	}) {
		return
	}

	preview := events
	if len(preview) > previewPageSize {
		preview = preview[:previewPageSize]
	}
	if !p.send(ctx, ch, contracts.Notice{
		Type: contracts.NoticeList,
		Data: contracts.ListPayload{Events: preview},
	}) {
		return
	}

	evaluated := make([]contracts.EvaluatedEvent, 0, len(events))
	for ee := range p.scheduler.Run(ctx, events, now) {
		evaluated = append(evaluated, ee)
		if !p.send(ctx, ch, contracts.Notice{Type: contracts.NoticeItem, Data: ee}) {
			// Consumer went away; drain so the workers can finish
			continue
		}
	}
	if ctx.Err() != nil {
		return
	}

	restoreInputOrder(events, evaluated)
	signal := p.buildSignal(evaluated)

	summary := contracts.SummaryPayload{
		Query:         req.Query,
		WindowHours:   req.Hours,
		TotalEvents:   len(events),
		StockScore:    signal.Score,
		Uncertainty:   signal.Uncertainty,
		RiskMagnitude: signal.RiskMagnitude,
		TopItems:      signal.TopEvents,
		Trace:         trace,
	}
	if !p.send(ctx, ch, contracts.Notice{Type: contracts.NoticeSummary, Data: summary}) {
		return
	}
	p.send(ctx, ch, contracts.Notice{Type: contracts.NoticeDone})
}

// send delivers one notice unless the consumer is gone
func (p *Pipeline) send(ctx context.Context, ch chan<- contracts.Notice, n contracts.Notice) bool {
	select {
	case ch <- n:
		return true
	case <-ctx.Done():
		return false
	}
}

// buildSignal aggregates the evaluated set and fills in the top events.
// Expects evaluated in deterministic input order so the MMR tie-breaks
// and the most-recent append are reproducible.
func (p *Pipeline) buildSignal(evaluated []contracts.EvaluatedEvent) contracts.AggregateSignal {
	signal := signalcalc.Aggregate(evaluated)
	signal.TopEvents = signalcalc.SelectTop(evaluated, p.selectorCfg)
	return signal
}

// restoreInputOrder sorts evaluated events back to the order of the
// input events. Completion order is nondeterministic; every ordering
// downstream of here must not be. Identity keys are unique after dedup.
func restoreInputOrder(events []contracts.Event, evaluated []contracts.EvaluatedEvent) {
	index := make(map[string]int, len(events))
	for i, ev := range events {
		index[ev.IdentityKey()] = i
	}
	sort.SliceStable(evaluated, func(a, b int) bool {
		return index[evaluated[a].Event.IdentityKey()] < index[evaluated[b].Event.IdentityKey()]
	})
}
