package contracts

import "strings"

// EventKind classifies where an event came from
type EventKind string

const (
	KindNews         EventKind = "news"
	KindAnnouncement EventKind = "announcement"
)

// RiskTag is the coarse keyword-based sentiment label
type RiskTag string

const (
	RiskNegative RiskTag = "negative"
	RiskPositive RiskTag = "positive"
	RiskNeutral  RiskTag = "neutral"
)

// Event is a normalized market-event record about the queried subject.
// Immutable once produced by the normalizer.
type Event struct {
	Kind        EventKind `json:"kind"`
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	PublishedAt string    `json:"published_at"` // best-effort, ISO-like when parsed
	URL         string    `json:"url"`
	RiskTag     RiskTag   `json:"risk_tag"`
}

// IdentityKey returns the dedup key: case-insensitive (title, source).
// Two events with the same key are the same event.
func (e Event) IdentityKey() string {
	return strings.ToLower(strings.TrimSpace(e.Title)) + "|" + strings.ToLower(strings.TrimSpace(e.Source))
}

// ComposedText is the exact text handed to the evaluator and used as the
// judgment cache key. It must be deterministic for a given event.
func (e Event) ComposedText() string {
	return e.Title + " | " + e.Source + " | " + e.PublishedAt
}
