package signalcalc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wltsai/stockpulse/internal/contracts"
)

func evaluatedWithScore(score, confidence float64) contracts.EvaluatedEvent {
	return contracts.EvaluatedEvent{
		Judgment:   contracts.Judgment{Confidence: confidence},
		EventScore: score,
	}
}

func TestAggregate_EmptySetIsNeutralAndUncertain(t *testing.T) {
	got := Aggregate(nil)

	assert.Equal(t, 0.0, got.Score)
	assert.Equal(t, 1.0, got.Uncertainty)
	assert.Equal(t, 0.0, got.RiskMagnitude)
	assert.Equal(t, 0, got.EventCount)
}

func TestAggregate_TrimmedMeanDropsExtremes(t *testing.T) {
	scores := []float64{-5, -3, -1, 0, 0, 1, 1, 2, 3, 10}
	evaluated := make([]contracts.EvaluatedEvent, 0, len(scores))
	for _, s := range scores {
		evaluated = append(evaluated, evaluatedWithScore(s, 0.7))
	}

	got := Aggregate(evaluated)

	// One value trimmed from each tail: mean of [-3,-1,0,0,1,1,2,3]
	assert.InDelta(t, 0.375, got.Score, 1e-9)
	assert.Equal(t, 10, got.EventCount)
}

func TestAggregate_SmallSetsAreAveragedUntrimmed(t *testing.T) {
	evaluated := []contracts.EvaluatedEvent{
		evaluatedWithScore(-4, 0.9),
		evaluatedWithScore(1, 0.9),
	}

	got := Aggregate(evaluated)

	assert.InDelta(t, -1.5, got.Score, 1e-9)
}

func TestAggregate_MixedScenario(t *testing.T) {
	// Two negative events at -1.65 plus one positive at +1.65, all at
	// fallback confidence.
	evaluated := []contracts.EvaluatedEvent{
		evaluatedWithScore(-1.65, 0.55),
		evaluatedWithScore(-1.65, 0.55),
		evaluatedWithScore(1.65, 0.55),
	}

	got := Aggregate(evaluated)

	require.Equal(t, 3, got.EventCount)
	assert.InDelta(t, -0.55, got.Score, 1e-9)
	assert.InDelta(t, 3.3, got.RiskMagnitude, 1e-9)

	// avgConf 0.55, MAD 1.1 -> 0.45 * (1 + 1.1/3)
	assert.InDelta(t, 0.615, got.Uncertainty, 1e-9)
}

func TestAggregate_RiskMagnitudeCountsOnlyNegatives(t *testing.T) {
	evaluated := []contracts.EvaluatedEvent{
		evaluatedWithScore(2.0, 0.8),
		evaluatedWithScore(1.0, 0.8),
		evaluatedWithScore(-0.5, 0.8),
	}

	got := Aggregate(evaluated)

	assert.InDelta(t, 0.5, got.RiskMagnitude, 1e-9)
}

func TestAggregate_UncertaintyStaysInUnitRange(t *testing.T) {
	// Wildly dispersed, low-confidence scores must still clamp at 1
	evaluated := []contracts.EvaluatedEvent{
		evaluatedWithScore(-5, 0.1),
		evaluatedWithScore(5, 0.1),
		evaluatedWithScore(-5, 0.1),
		evaluatedWithScore(5, 0.1),
	}

	got := Aggregate(evaluated)

	assert.LessOrEqual(t, got.Uncertainty, 1.0)
	assert.GreaterOrEqual(t, got.Uncertainty, 0.0)
}

func TestTrimmedMean_NeverEmptiesSample(t *testing.T) {
	// n=5 with k floored to 1 leaves three values
	got := trimmedMean([]float64{-10, 0, 0, 0, 10})
	assert.InDelta(t, 0.0, got, 1e-9)

	// n=6: k=1 keeps four
	got = trimmedMean([]float64{-10, 1, 1, 1, 1, 10})
	assert.InDelta(t, 1.0, got, 1e-9)
}

func TestMedianAbsDeviation(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
		center float64
		want   float64
	}{
		{"odd count", []float64{1, 2, 4}, 2, 1},
		{"even count", []float64{1, 2, 3, 6}, 2, 1},
		{"identical scores", []float64{3, 3, 3}, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := medianAbsDeviation(tt.scores, tt.center)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
