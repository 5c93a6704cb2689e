package signalcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltsai/stockpulse/internal/contracts"
)

func candidate(title, source string, direction int, base float64, publishedAt string) contracts.EvaluatedEvent {
	return contracts.EvaluatedEvent{
		Event: contracts.Event{
			Kind:        contracts.KindNews,
			Title:       title,
			Source:      source,
			PublishedAt: publishedAt,
		},
		Judgment:   contracts.Judgment{Direction: direction, Severity: 3, Confidence: 0.7, Horizon: contracts.HorizonShort},
		EventScore: float64(direction) * base,
		BaseScore:  base,
	}
}

func titles(selected []contracts.EvaluatedEvent) []string {
	out := make([]string, 0, len(selected))
	for _, s := range selected {
		out = append(out, s.Event.Title)
	}
	return out
}

func TestSelectTop_RejectsNearDuplicates(t *testing.T) {
	// Rewrites of the same headline from different outlets; token overlap
	// is far above the similarity threshold.
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X cuts production", "鉅亨網", -1, 1.6, "2026-03-10 11:00:00"),
		candidate("Company X to cut production", "TWSE", -1, 1.5, "2026-03-10 10:00:00"),
		candidate("Regulator fines Company X over disclosure", "Google News", -1, 1.0, "2026-03-10 09:00:00"),
	}

	selected := SelectTop(candidates, DefaultSelectorConfig())

	got := titles(selected)
	assert.Contains(t, got, "Company X cuts production")
	assert.NotContains(t, got, "Company X to cut production", "near-duplicate must be suppressed")
	assert.Contains(t, got, "Regulator fines Company X over disclosure")
}

func TestSelectTop_PerSourceCap(t *testing.T) {
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X plant halts after fire", "鉅亨網", -1, 1.8, "2026-03-10 11:00:00"),
		candidate("Suppliers sue Company X for breach", "鉅亨網", -1, 1.6, "2026-03-10 10:00:00"),
		candidate("Company X misses quarterly estimates", "TWSE", -1, 1.0, "2026-03-10 09:00:00"),
	}

	selected := SelectTop(candidates, DefaultSelectorConfig())

	sources := map[string]int{}
	for _, s := range selected {
		sources[s.Event.Source]++
	}
	for source, n := range sources {
		assert.LessOrEqual(t, n, 1, "source %s exceeds the per-source cap", source)
	}
	assert.Contains(t, titles(selected), "Company X plant halts after fire", "higher base score wins within a source")
}

func TestSelectTop_CoversBothDirections(t *testing.T) {
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X recalls flagship product", "鉅亨網", -1, 1.6, "2026-03-10 11:00:00"),
		candidate("Company X lands record order", "TWSE", 1, 1.4, "2026-03-10 10:00:00"),
	}

	selected := SelectTop(candidates, DefaultSelectorConfig())

	require.Len(t, selected, 2)
	var directions []int
	for _, s := range selected {
		directions = append(directions, s.Judgment.Direction)
	}
	assert.Contains(t, directions, 1)
	assert.Contains(t, directions, -1)
}

func TestSelectTop_AppendsMostRecentNeutral(t *testing.T) {
	// Newest-first candidate order; the newest event is neutral so only
	// the final append can pick it.
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X schedules investor day", "Google News", 0, 0.1, "2026-03-10 11:30:00"),
		candidate("Company X recalls flagship product", "鉅亨網", -1, 1.6, "2026-03-10 11:00:00"),
		candidate("Company X lands record order", "TWSE", 1, 1.4, "2026-03-10 10:00:00"),
	}

	selected := SelectTop(candidates, DefaultSelectorConfig())

	assert.Contains(t, titles(selected), "Company X schedules investor day")
}

func TestSelectTop_MostRecentStillObeysSourceCap(t *testing.T) {
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X schedules investor day", "鉅亨網", 0, 0.1, "2026-03-10 11:30:00"),
		candidate("Company X recalls flagship product", "鉅亨網", -1, 1.6, "2026-03-10 11:00:00"),
	}

	selected := SelectTop(candidates, DefaultSelectorConfig())

	require.Len(t, selected, 1)
	assert.Equal(t, "Company X recalls flagship product", selected[0].Event.Title)
}

func TestSelectTop_MaxTotalBound(t *testing.T) {
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X fined over disclosure lapse", "鉅亨網", -1, 1.9, "2026-03-10 11:00:00"),
		candidate("Suppliers sue Company X for breach", "TWSE", -1, 1.7, "2026-03-10 10:00:00"),
		candidate("Company X lands record order", "Google News", 1, 1.5, "2026-03-10 09:00:00"),
		candidate("Brokers upgrade Company X outlook", "Reuters", 1, 1.3, "2026-03-10 08:00:00"),
		candidate("Company X schedules investor day", "Bloomberg", 0, 0.1, "2026-03-10 11:30:00"),
	}

	cfg := DefaultSelectorConfig()
	selected := SelectTop(candidates, cfg)

	assert.LessOrEqual(t, len(selected), cfg.MaxTotal)
}

func TestSelectTop_Deterministic(t *testing.T) {
	candidates := []contracts.EvaluatedEvent{
		candidate("Company X plant halts after fire", "鉅亨網", -1, 1.5, "2026-03-10 11:00:00"),
		candidate("Suppliers sue Company X for breach", "TWSE", -1, 1.5, "2026-03-10 10:00:00"),
	}

	first := titles(SelectTop(candidates, DefaultSelectorConfig()))
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, titles(SelectTop(candidates, DefaultSelectorConfig())))
	}
}

func TestSelectTop_EmptyInput(t *testing.T) {
	assert.Empty(t, SelectTop(nil, DefaultSelectorConfig()))
}

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Company X cuts production", "Company X cuts production", 1.0},
		{"inflected rewrite", "Company X cuts production", "Company X to cut production", 0.8},
		{"disjoint", "Company X cuts production", "Brokers upgrade outlook", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := jaccard(titleTokens(tt.a), titleTokens(tt.b))
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
