package collect

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/pkg/logger"
)

// stubSource is a canned Source for collector tests
type stubSource struct {
	name    string
	records []Record
	err     error
	calls   int32
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context, query string, since time.Time) ([]Record, error) {
	atomic.AddInt32(&s.calls, 1)
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func stubRecord(title, source string, age time.Duration) Record {
	return Record{
		Kind:      contracts.KindNews,
		Title:     title,
		Source:    source,
		Published: time.Now().Add(-age),
		TimeKnown: true,
	}
}

func TestCollector_FallbackSkippedWhenStructuredYields(t *testing.T) {
	structured := &stubSource{name: "cnyes", records: []Record{stubRecord("Company X cuts production", "鉅亨網", time.Hour)}}
	fallback := &stubSource{name: "gnews", records: []Record{stubRecord("Should not appear", "Google News", time.Hour)}}

	c := NewCollector([]Source{structured}, []Source{fallback}, logger.NewNop())

	events, _, err := c.Collect(context.Background(), "Company X", 48, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Company X cuts production", events[0].Title)
	assert.EqualValues(t, 0, atomic.LoadInt32(&fallback.calls), "fallback must not run when structured output is non-empty")
}

func TestCollector_FallbackRunsWhenStructuredEmpty(t *testing.T) {
	empty := &stubSource{name: "cnyes"}
	failing := &stubSource{name: "twse", err: errors.New("status 503")}
	fallback := &stubSource{name: "gnews", records: []Record{stubRecord("Feed headline about Company X", "Google News", time.Hour)}}

	c := NewCollector([]Source{empty, failing}, []Source{fallback}, logger.NewNop())

	events, trace, err := c.Collect(context.Background(), "Company X", 48, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Feed headline about Company X", events[0].Title)
	assert.EqualValues(t, 1, atomic.LoadInt32(&fallback.calls))

	joined := strings.Join(trace, "\n")
	assert.Contains(t, joined, "twse failed")
	assert.Contains(t, joined, "falling back")
}

func TestCollector_AllSourcesFailYieldsEmptyNotError(t *testing.T) {
	c := NewCollector(
		[]Source{&stubSource{name: "cnyes", err: errors.New("timeout")}},
		[]Source{&stubSource{name: "gnews", err: errors.New("parse error")}},
		logger.NewNop(),
	)

	events, trace, err := c.Collect(context.Background(), "Company X", 48, 50)
	require.NoError(t, err, "adapter failures must degrade, not propagate")
	assert.Empty(t, events)
	assert.NotEmpty(t, trace)
}

func TestCollector_LimitTruncates(t *testing.T) {
	records := make([]Record, 0, 10)
	for i := 0; i < 10; i++ {
		records = append(records, stubRecord("Headline "+string(rune('A'+i)), "鉅亨網", time.Duration(i)*time.Hour))
	}
	c := NewCollector([]Source{&stubSource{name: "cnyes", records: records}}, nil, logger.NewNop())

	events, trace, err := c.Collect(context.Background(), "Company X", 48, 3)
	require.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Contains(t, strings.Join(trace, "\n"), "truncated")
}

func TestCollector_MergesStructuredInPriorityOrder(t *testing.T) {
	now := time.Now()
	first := &stubSource{name: "cnyes", records: []Record{
		{Kind: contracts.KindNews, Title: "Same headline", Source: "鉅亨網", URL: "https://cnyes", Published: now.Add(-time.Hour), TimeKnown: true},
	}}
	second := &stubSource{name: "twse", records: []Record{
		{Kind: contracts.KindAnnouncement, Title: "Same headline", Source: "鉅亨網", URL: "https://twse", Published: now.Add(-time.Hour), TimeKnown: true},
	}}

	c := NewCollector([]Source{first, second}, nil, logger.NewNop())

	events, _, err := c.Collect(context.Background(), "Company X", 48, 50)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "https://cnyes", events[0].URL, "higher-priority source wins the dedup")
}
