package collect

import (
	"context"
	"time"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/internal/external/cnyes"
	"github.com/wltsai/stockpulse/internal/external/gnews"
	"github.com/wltsai/stockpulse/internal/external/twse"
)

// Record is a provider-agnostic raw record before normalization
type Record struct {
	Kind      contracts.EventKind
	Title     string
	Source    string
	URL       string
	Published time.Time // zero when the provider had no parseable time
	TimeKnown bool
}

// Source is one provider adapter. Adapters fail independently: the
// collector maps any error into an empty result plus a trace entry.
type Source interface {
	Name() string
	Fetch(ctx context.Context, query string, since time.Time) ([]Record, error)
}

// CnyesSource adapts the structured cnyes news API
type CnyesSource struct {
	client *cnyes.Client
}

// NewCnyesSource creates the cnyes adapter
func NewCnyesSource(client *cnyes.Client) *CnyesSource {
	return &CnyesSource{client: client}
}

func (s *CnyesSource) Name() string { return "cnyes" }

func (s *CnyesSource) Fetch(ctx context.Context, query string, since time.Time) ([]Record, error) {
	items, err := s.client.SearchNews(ctx, query, since)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		source := item.Source
		if source == "" {
			source = "鉅亨網"
		}
		records = append(records, Record{
			Kind:      contracts.KindNews,
			Title:     item.Title,
			Source:    source,
			URL:       item.URL(),
			Published: item.PublishedTime(),
			TimeKnown: item.PublishAt > 0,
		})
	}
	return records, nil
}

// TWSESource adapts the exchange announcement scraper
type TWSESource struct {
	client *twse.Client
}

// NewTWSESource creates the TWSE adapter
func NewTWSESource(client *twse.Client) *TWSESource {
	return &TWSESource{client: client}
}

func (s *TWSESource) Name() string { return "twse" }

func (s *TWSESource) Fetch(ctx context.Context, query string, since time.Time) ([]Record, error) {
	anns, err := s.client.FetchAnnouncements(ctx, query, since)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(anns))
	for _, ann := range anns {
		records = append(records, Record{
			Kind:      contracts.KindAnnouncement,
			Title:     ann.Title,
			Source:    "TWSE",
			URL:       ann.URL,
			Published: ann.PublishedAt,
			TimeKnown: !ann.PublishedAt.IsZero(),
		})
	}
	return records, nil
}

// GNewsSource adapts the syndicated-feed fallback
type GNewsSource struct {
	client *gnews.Client
}

// NewGNewsSource creates the Google News adapter
func NewGNewsSource(client *gnews.Client) *GNewsSource {
	return &GNewsSource{client: client}
}

func (s *GNewsSource) Name() string { return "gnews" }

func (s *GNewsSource) Fetch(ctx context.Context, query string, since time.Time) ([]Record, error) {
	items, err := s.client.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(items))
	for _, item := range items {
		rec := Record{
			Kind:   contracts.KindNews,
			Title:  item.Title,
			Source: item.Source,
			URL:    item.Link,
		}
		if item.Parsed != nil {
			rec.Published = *item.Parsed
			rec.TimeKnown = true
		}
		records = append(records, rec)
	}
	return records, nil
}
