// Package signalcalc combines per-event judgments into the aggregate
// signal and picks the representative top events.
package signalcalc

import (
	"math"
	"sort"

	"github.com/wltsai/stockpulse/internal/contracts"
)

// trimFraction is the share of sorted event scores dropped from each
// tail before averaging, bounding the influence of single extreme or
// mis-scored events.
const trimFraction = 0.15

// Aggregate computes the combined signal from the full evaluated set.
// TopEvents is left empty; the selector fills it. An empty set yields
// the neutral aggregate: score 0, uncertainty 1.
func Aggregate(evaluated []contracts.EvaluatedEvent) contracts.AggregateSignal {
	if len(evaluated) == 0 {
		return contracts.AggregateSignal{
			Score:         0,
			Uncertainty:   1,
			RiskMagnitude: 0,
			EventCount:    0,
		}
	}

	scores := make([]float64, len(evaluated))
	var confSum, riskMagnitude float64
	for i, ee := range evaluated {
		scores[i] = ee.EventScore
		confSum += ee.Judgment.Confidence
		if ee.EventScore < 0 {
			riskMagnitude += -ee.EventScore
		}
	}

	score := trimmedMean(scores)

	avgConf := confSum / float64(len(evaluated))
	dispersion := math.Min(medianAbsDeviation(scores, score)/3.0, 1.0)
	uncertainty := math.Min(1.0, (1.0-avgConf)*(1.0+dispersion))

	return contracts.AggregateSignal{
		Score:         score,
		Uncertainty:   uncertainty,
		RiskMagnitude: riskMagnitude,
		EventCount:    len(evaluated),
	}
}

// trimmedMean averages the scores after a symmetric trim. Sets smaller
// than 5 are averaged untrimmed; the trim drops at least one value from
// each end and never empties the sample.
func trimmedMean(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return 0
	}
	if n < 5 {
		return mean(scores)
	}

	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)

	k := int(float64(n) * trimFraction)
	if k < 1 {
		k = 1
	}
	for n-2*k < 1 {
		k--
	}

	return mean(sorted[k : n-k])
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// medianAbsDeviation returns the median of |score_i - center|
func medianAbsDeviation(scores []float64, center float64) float64 {
	devs := make([]float64, len(scores))
	for i, s := range scores {
		devs[i] = math.Abs(s - center)
	}
	sort.Float64s(devs)

	n := len(devs)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return devs[n/2]
	}
	return (devs[n/2-1] + devs[n/2]) / 2
}
