package domain

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestComputeWeightedStats verifies the weighted mean and population
// variance calculation, the no-data conditions, and rejection of invalid
// observations.
func TestComputeWeightedStats(t *testing.T) {
	tests := []struct {
		name         string
		obs          []Observation
		wantOK       bool
		wantMean     float64
		wantVariance float64
		wantCount    int
		wantErr      error
	}{
		{
			name:   "empty list yields no data",
			obs:    nil,
			wantOK: false,
		},
		{
			name:   "all-zero weights yield no data",
			obs:    []Observation{{Value: 0.5, Weight: 0}, {Value: -0.5, Weight: 0}},
			wantOK: false,
		},
		{
			name:         "single observation has zero variance",
			obs:          []Observation{{Value: 0.6, Weight: 1.0}},
			wantOK:       true,
			wantMean:     0.6,
			wantVariance: 0,
			wantCount:    1,
		},
		{
			name: "tier1 and tier2 sources on the same category",
			// (0.8*1.0 + 0.9*0.7) / 1.7 = 0.8412 -> 0.84; the tiny spread
			// rounds to zero variance.
			obs:          []Observation{{Value: 0.8, Weight: 1.0}, {Value: 0.9, Weight: 0.7}},
			wantOK:       true,
			wantMean:     0.84,
			wantVariance: 0,
			wantCount:    2,
		},
		{
			name:         "opposite poles produce large variance",
			obs:          []Observation{{Value: 1, Weight: 1}, {Value: -1, Weight: 1}},
			wantOK:       true,
			wantMean:     0,
			wantVariance: 1,
			wantCount:    2,
		},
		{
			name: "heavier weight pulls the mean",
			// (1.0*1.0 + 0.0*0.5) / 1.5 = 0.6667 -> 0.67
			obs:          []Observation{{Value: 1, Weight: 1.0}, {Value: 0, Weight: 0.5}},
			wantOK:       true,
			wantMean:     0.67,
			wantVariance: 0.22,
			wantCount:    2,
		},
		{
			name:    "NaN value is rejected",
			obs:     []Observation{{Value: math.NaN(), Weight: 1}},
			wantErr: ErrInvalidObservation,
		},
		{
			name:    "infinite value is rejected",
			obs:     []Observation{{Value: math.Inf(1), Weight: 1}},
			wantErr: ErrInvalidObservation,
		},
		{
			name:    "negative weight is rejected",
			obs:     []Observation{{Value: 0.5, Weight: -1}},
			wantErr: ErrInvalidObservation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats, ok, err := ComputeWeightedStats(tt.obs)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Zero(t, stats)
				return
			}
			assert.InDelta(t, tt.wantMean, stats.Mean, 1e-9, "mean")
			assert.InDelta(t, tt.wantVariance, stats.Variance, 1e-9, "variance")
			assert.Equal(t, tt.wantCount, stats.Count, "count")
		})
	}
}

// TestComputeWeightedStats_MeanWithinBounds checks that for any non-empty
// observation list with at least one positive weight, the weighted mean
// stays within [min(value), max(value)].
func TestComputeWeightedStats_MeanWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(10)
		obs := make([]Observation, n)
		lo, hi := 1.0, -1.0

		for i := range obs {
			// Two-decimal values keep the rounded mean inside the exact
			// value bounds.
			v := math.Round((rng.Float64()*2-1)*100) / 100
			obs[i] = Observation{Value: v, Weight: rng.Float64()}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		// Guarantee at least one positive weight.
		obs[0].Weight = 0.5 + rng.Float64()

		stats, ok, err := ComputeWeightedStats(obs)
		require.NoError(t, err)
		require.True(t, ok)
		assert.GreaterOrEqual(t, stats.Mean, lo, "mean below minimum value")
		assert.LessOrEqual(t, stats.Mean, hi, "mean above maximum value")
		assert.GreaterOrEqual(t, stats.Variance, 0.0, "variance must be non-negative")
		assert.Equal(t, n, stats.Count)
	}
}
