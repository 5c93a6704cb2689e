package collect

import (
	"sort"
	"strings"
	"time"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/label"
)

// eventTimeFormat is the canonical PublishedAt layout. Its lexicographic
// order matches chronological order, which the output sort relies on.
const eventTimeFormat = "2006-01-02 15:04:05"

// Normalize maps raw provider records into Events, applies the recency
// window, labels risk, deduplicates by identity key and sorts newest
// first. Records with unknown publish times are kept (fail open) and
// dated "now": a plausible headline matching the query is worth more
// than a parsing success.
func Normalize(records []Record, since, now time.Time) []contracts.Event {
	events := make([]contracts.Event, 0, len(records))

	for _, rec := range records {
		title := strings.TrimSpace(rec.Title)
		if title == "" {
			continue
		}

		published := rec.Published
		if !rec.TimeKnown || published.IsZero() {
			published = now
		} else if published.Before(since) {
			// Outside the recency window
			continue
		}

		events = append(events, contracts.Event{
			Kind:        rec.Kind,
			Title:       title,
			Source:      strings.TrimSpace(rec.Source),
			PublishedAt: published.Format(eventTimeFormat),
			URL:         rec.URL,
			RiskTag:     contracts.RiskTag(label.Label(title)),
		})
	}

	events = dedupe(events)

	// Descending string compare on the time field. Both providers emit
	// ISO-like prefixes, so this approximates chronological order.
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].PublishedAt > events[j].PublishedAt
	})

	return events
}

// dedupe removes events sharing an identity key, keeping the first
// occurrence so provider priority order is preserved.
func dedupe(events []contracts.Event) []contracts.Event {
	seen := make(map[string]struct{}, len(events))
	out := events[:0]
	for _, ev := range events {
		key := ev.IdentityKey()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ev)
	}
	return out
}
