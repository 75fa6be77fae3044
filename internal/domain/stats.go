package domain

import (
	"fmt"
	"math"
)

// Observation is a single (value, weight) pair feeding the weighted
// statistics. Value is a sentiment in [-1, 1]; Weight is the credibility
// weight of the contributing source and must be non-negative.
type Observation struct {
	Value  float64
	Weight float64
}

// WeightedStats holds the weighted mean and variance over a set of
// observations.
//
// Variance is the population variance, not the sample variance: the observed
// source set is the whole population of interest, not a sample drawn from a
// larger one.
type WeightedStats struct {
	// Mean is the weight-normalized average, rounded to two decimal places.
	Mean float64

	// Variance is the weight-normalized mean squared deviation from Mean,
	// rounded to two decimal places.
	Variance float64

	// Count is the number of contributing observations, independent of
	// weighting.
	Count int
}

// ComputeWeightedStats calculates the weighted mean and population variance
// of the given observations in a single pass over the values.
//
// The boolean result is false when there is nothing to aggregate: an empty
// observation list, or one whose weights sum to zero. In that case the
// returned stats are the zero value and callers must treat the category as
// having no data rather than a zero-sentiment consensus.
//
// Returns ErrInvalidObservation for NaN or infinite values and for negative
// weights; these indicate a defect in the upstream pipeline rather than an
// empty-data condition.
func ComputeWeightedStats(obs []Observation) (WeightedStats, bool, error) {
	if len(obs) == 0 {
		return WeightedStats{}, false, nil
	}

	var totalWeight float64
	for i, o := range obs {
		if math.IsNaN(o.Value) || math.IsInf(o.Value, 0) {
			return WeightedStats{}, false, fmt.Errorf("%w: value %f at index %d", ErrInvalidObservation, o.Value, i)
		}
		if math.IsNaN(o.Weight) || math.IsInf(o.Weight, 0) || o.Weight < 0 {
			return WeightedStats{}, false, fmt.Errorf("%w: weight %f at index %d", ErrInvalidObservation, o.Weight, i)
		}
		totalWeight += o.Weight
	}

	// All weights zero is the no-data case, not an error; guards the
	// division below.
	if totalWeight == 0 {
		return WeightedStats{}, false, nil
	}

	var weightedSum float64
	for _, o := range obs {
		weightedSum += o.Value * o.Weight
	}
	mean := weightedSum / totalWeight

	var weightedSquares float64
	for _, o := range obs {
		d := o.Value - mean
		weightedSquares += o.Weight * d * d
	}
	variance := weightedSquares / totalWeight

	return WeightedStats{
		Mean:     round2(mean),
		Variance: round2(variance),
		Count:    len(obs),
	}, true, nil
}

// round2 rounds to two decimal places for stable, comparable output.
func round2(v float64) float64 { return math.Round(v*100) / 100 }
