// Package collect orchestrates multi-source event collection: structured
// providers first, syndicated-feed fallback only when they all come up
// empty, then normalization and identity-key dedup.
package collect

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/metrics"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// Collector fetches raw records from the configured source adapters
type Collector struct {
	structured []Source // priority order
	fallback   []Source // invoked only when structured output is empty
	logger     *logger.Logger
}

// NewCollector creates a new Collector. structured sources are tried in
// the given priority order; fallback sources only run when the combined
// structured output is empty.
func NewCollector(structured, fallback []Source, log *logger.Logger) *Collector {
	return &Collector{
		structured: structured,
		fallback:   fallback,
		logger:     log.WithField("module", "collector"),
	}
}

// Collect fetches, normalizes and deduplicates events for a query.
// Adapter failures never propagate: they become trace entries and the
// remaining sources still contribute. limit caps the output size.
func (c *Collector) Collect(ctx context.Context, query string, windowHours, limit int) ([]contracts.Event, []string, error) {
	now := time.Now()
	since := now.Add(-time.Duration(windowHours) * time.Hour)

	var trace []string

	records, fetchTrace := c.fetchStructured(ctx, query, since)
	trace = append(trace, fetchTrace...)

	if len(records) == 0 {
		// Structured providers produced nothing; fall through to the feed
		trace = append(trace, "structured providers empty, falling back to feed")
		for _, src := range c.fallback {
			recs, err := c.fetchOne(ctx, src, query, since)
			if err != nil {
				trace = append(trace, fmt.Sprintf("source %s failed: %v", src.Name(), err))
				continue
			}
			records = append(records, recs...)
		}
	}

	events := Normalize(records, since, now)
	if limit > 0 && len(events) > limit {
		trace = append(trace, fmt.Sprintf("event list truncated to %d (had %d)", limit, len(events)))
		events = events[:limit]
	}

	c.logger.WithFields(map[string]interface{}{
		"query":  query,
		"raw":    len(records),
		"events": len(events),
	}).Info("Collection completed")

	return events, trace, nil
}

// fetchStructured runs all structured adapters concurrently and merges
// their output in priority order.
func (c *Collector) fetchStructured(ctx context.Context, query string, since time.Time) ([]Record, []string) {
	results := make([][]Record, len(c.structured))
	errs := make([]error, len(c.structured))

	var wg sync.WaitGroup
	for i, src := range c.structured {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			results[i], errs[i] = c.fetchOne(ctx, src, query, since)
		}(i, src)
	}
	wg.Wait()

	var records []Record
	var trace []string
	for i, src := range c.structured {
		if errs[i] != nil {
			trace = append(trace, fmt.Sprintf("source %s failed: %v", src.Name(), errs[i]))
			continue
		}
		records = append(records, results[i]...)
	}
	return records, trace
}

// fetchOne calls a single adapter with logging and metrics
func (c *Collector) fetchOne(ctx context.Context, src Source, query string, since time.Time) ([]Record, error) {
	start := time.Now()
	records, err := src.Fetch(ctx, query, since)
	metrics.ObserveProviderFetch(src.Name(), time.Since(start), err)

	if err != nil {
		c.logger.WithError(err).WithFields(map[string]interface{}{
			"source": src.Name(),
			"query":  query,
		}).Warn("Source fetch failed")
		return nil, err
	}

	c.logger.WithFields(map[string]interface{}{
		"source": src.Name(),
		"query":  query,
		"count":  len(records),
	}).Debug("Source fetch completed")
	return records, nil
}
