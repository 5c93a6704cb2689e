package contracts

import (
	"math"
	"time"
)

// Horizon is the expected time frame of an event's market impact
type Horizon string

const (
	HorizonShort  Horizon = "short"
	HorizonMedium Horizon = "medium"
	HorizonLong   Horizon = "long"
)

// Judgment is the evaluator's structured opinion about one event's
// market impact.
type Judgment struct {
	Direction  int     `json:"direction"`  // -1, 0, 1
	Severity   int     `json:"severity"`   // 1..5
	Confidence float64 `json:"confidence"` // 0..1
	Horizon    Horizon `json:"horizon"`
	Rationale  string  `json:"rationale"`
}

// Clamp normalizes out-of-range fields in place and returns the judgment.
// LLM output is untrusted; everything downstream assumes valid ranges.
func (j Judgment) Clamp() Judgment {
	if j.Direction > 1 {
		j.Direction = 1
	}
	if j.Direction < -1 {
		j.Direction = -1
	}
	if j.Severity < 1 {
		j.Severity = 1
	}
	if j.Severity > 5 {
		j.Severity = 5
	}
	if j.Confidence < 0 {
		j.Confidence = 0
	}
	if j.Confidence > 1 {
		j.Confidence = 1
	}
	switch j.Horizon {
	case HorizonShort, HorizonMedium, HorizonLong:
	default:
		j.Horizon = HorizonShort
	}
	return j
}

// EvaluatedEvent joins an Event with its Judgment plus derived scores.
type EvaluatedEvent struct {
	Event    Event    `json:"event"`
	Judgment Judgment `json:"judgment"`

	// EventScore = direction * severity * confidence
	EventScore float64 `json:"event_score"`

	// BaseScore = |EventScore| * ageDecay * (0.6 + 0.4*confidence).
	// Used only for selection ranking, never for the aggregate.
	BaseScore float64 `json:"base_score"`
}

// NewEvaluatedEvent derives the scores for an event/judgment pair.
// now anchors the age decay so results are reproducible in tests.
func NewEvaluatedEvent(ev Event, j Judgment, now time.Time) EvaluatedEvent {
	score := float64(j.Direction) * float64(j.Severity) * j.Confidence
	base := math.Abs(score) * AgeDecay(ev.PublishedAt, now) * (0.6 + 0.4*j.Confidence)
	return EvaluatedEvent{
		Event:      ev,
		Judgment:   j,
		EventScore: score,
		BaseScore:  base,
	}
}

// AgeDecay returns the weighting factor for an event's age: half-life of
// 24 hours. Unparsable publish times decay as if published now, matching
// the normalizer's fail-open stance on missing dates.
func AgeDecay(publishedAt string, now time.Time) float64 {
	t, ok := ParseEventTime(publishedAt)
	if !ok {
		return 1.0
	}
	ageHours := now.Sub(t).Hours()
	if ageHours <= 0 {
		return 1.0
	}
	return math.Pow(0.5, ageHours/24.0)
}

// eventTimeLayouts are the formats the normalizer emits or passes through
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseEventTime parses a best-effort PublishedAt string
func ParseEventTime(s string) (time.Time, bool) {
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
