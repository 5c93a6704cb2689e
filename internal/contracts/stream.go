package contracts

// NoticeType names the incremental delivery frames. The ordering contract
// clients rely on is: events -> list -> item* -> summary -> done.
type NoticeType string

const (
	NoticeEvents  NoticeType = "events"  // collection finished, carries the count
	NoticeList    NoticeType = "list"    // first page of raw events
	NoticeItem    NoticeType = "item"    // one completed evaluation, completion order
	NoticeSummary NoticeType = "summary" // the aggregate signal
	NoticeDone    NoticeType = "done"    // terminal marker
)

// Notice is one frame of the incremental response
type Notice struct {
	Type NoticeType  `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// EventsPayload is the payload of a NoticeEvents frame
type EventsPayload struct {
	Query string `json:"query"`
	Count int    `json:"count"`
}

// ListPayload is the payload of a NoticeList frame
type ListPayload struct {
	Events []Event `json:"events"`
}

// SummaryPayload is the payload of a NoticeSummary frame
type SummaryPayload struct {
	Query         string           `json:"query"`
	WindowHours   int              `json:"window_hours"`
	TotalEvents   int              `json:"total_events"`
	StockScore    float64          `json:"stock_score"`
	Uncertainty   float64          `json:"uncertainty"`
	RiskMagnitude float64          `json:"risk_magnitude"`
	TopItems      []EvaluatedEvent `json:"top_items"`
	Trace         []string         `json:"trace,omitempty"`
}
