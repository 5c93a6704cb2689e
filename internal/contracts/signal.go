package contracts

// AggregateSignal is the single combined score + confidence summary
// for a query. Recomputed fresh per query, never persisted.
type AggregateSignal struct {
	Score         float64          `json:"score"`
	Uncertainty   float64          `json:"uncertainty"`    // 0..1
	RiskMagnitude float64          `json:"risk_magnitude"` // >= 0
	EventCount    int              `json:"event_count"`
	TopEvents     []EvaluatedEvent `json:"top_events"` // size <= 5
}

// Result is the full outcome of one pipeline execution
type Result struct {
	Query       string           `json:"query"`
	WindowHours int              `json:"window_hours"`
	Events      []Event          `json:"events"`
	Evaluated   []EvaluatedEvent `json:"evaluated"`
	Signal      AggregateSignal  `json:"signal"`
	Trace       []string         `json:"trace,omitempty"` // degraded-path diagnostics
}
