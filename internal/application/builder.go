// Package application orchestrates the consensus pipeline: per-vehicle
// aggregation, batch fan-out with failure isolation, and batch
// configuration.
package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// ErrNoReviews is returned by Builder.Build when a vehicle has zero
// completed review records. It is not a failure: the batch driver counts it
// separately and deliberately leaves any previously persisted consensus for
// the vehicle untouched, since a temporary data gap should not erase a
// previously valid consensus.
var ErrNoReviews = errors.New("no completed reviews for vehicle")

// Builder computes one vehicle's consensus record from its review records.
// It performs no persistence; the batch driver decides whether the record is
// written or, in dry-run mode, only reported.
//
// Builder is stateless apart from its immutable configuration and is safe
// for concurrent use.
type Builder struct {
	cfg    domain.Config
	source ports.ReviewSource
	now    func() time.Time
}

// BuilderOption customizes a Builder.
type BuilderOption func(*Builder)

// WithClock overrides the time source used for ConsensusRecord.GeneratedAt.
// Tests use a fixed clock to assert byte-identical output across runs.
func WithClock(now func() time.Time) BuilderOption {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a Builder with the given aggregation configuration and
// review source. The configuration is validated once here and treated as
// read-only afterwards.
func NewBuilder(cfg domain.Config, source ports.ReviewSource, opts ...BuilderOption) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("review source must not be nil")
	}

	b := &Builder{
		cfg:    cfg,
		source: source,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Build fetches the vehicle's completed review records and aggregates them
// into a consensus record.
//
// Returns ErrNoReviews when the vehicle has no completed records. Any other
// error means the fetch or computation failed and no record exists for this
// run.
func (b *Builder) Build(ctx context.Context, vehicleID string) (*domain.ConsensusRecord, error) {
	if vehicleID == "" {
		return nil, domain.ErrEmptyVehicleID
	}

	records, err := b.source.ReviewsForVehicle(ctx, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("fetch reviews for %s: %w", vehicleID, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoReviews, vehicleID)
	}

	record := &domain.ConsensusRecord{
		VehicleID:   vehicleID,
		ReviewCount: len(records),
		Categories:  make(map[string]domain.CategoryConsensus),
		Adjustments: make(map[string]float64),
		GeneratedAt: b.now().UTC(),
	}

	for _, category := range observedCategories(records) {
		stats, ok, err := b.categoryStats(records, category)
		if err != nil {
			return nil, fmt.Errorf("aggregate category %q for %s: %w", category, vehicleID, err)
		}
		if !ok {
			// Zero total weight for the category; treated the same as no
			// source addressing it.
			continue
		}

		agreement := b.cfg.Agreement.Classify(stats.Variance)
		record.Categories[category] = domain.CategoryConsensus{
			Mean:      stats.Mean,
			Variance:  stats.Variance,
			Count:     stats.Count,
			Agreement: agreement,
		}
		record.Adjustments[category] = b.cfg.Adjustment(stats.Mean, agreement)
	}

	strengths := domain.RankTags(collect(records, func(r domain.ReviewRecord) []string { return r.StrengthTags }), b.cfg.Tags)
	weaknesses := domain.RankTags(collect(records, func(r domain.ReviewRecord) []string { return r.WeaknessTags }), b.cfg.Tags)
	contexts := domain.RankTags(collect(records, func(r domain.ReviewRecord) []string { return r.UsageContextTags }), b.cfg.Tags)
	comparisons := domain.RankTags(collect(records, func(r domain.ReviewRecord) []string { return r.ComparedToIDs }), b.cfg.Tags)

	record.Strengths = domain.TopTags(strengths, b.cfg.TopTags)
	record.Weaknesses = domain.TopTags(weaknesses, b.cfg.TopTags)
	record.UsageContexts = domain.TopTags(contexts, b.cfg.TopTags)
	record.Comparisons = domain.TopTags(comparisons, b.cfg.TopComparisons)

	record.Summary = domain.BuildSummary(record.Strengths, record.Weaknesses, b.cfg.SummaryTags)

	return record, nil
}

// categoryStats assembles the (value, weight) observations for one category,
// skipping records that did not score it, and runs the weighted statistics.
func (b *Builder) categoryStats(records []domain.ReviewRecord, category string) (domain.WeightedStats, bool, error) {
	obs := make([]domain.Observation, 0, len(records))
	for _, r := range records {
		score, scored := r.CategoryScores[category]
		if !scored {
			continue
		}
		weight, err := b.cfg.Weight(r.CredibilityTier)
		if err != nil {
			return domain.WeightedStats{}, false, fmt.Errorf("record %s: %w", r.VideoID, err)
		}
		obs = append(obs, domain.Observation{Value: score, Weight: weight})
	}
	return domain.ComputeWeightedStats(obs)
}

// observedCategories returns the union of category names across the records
// in sorted order, so map iteration order never leaks into the output.
func observedCategories(records []domain.ReviewRecord) []string {
	seen := make(map[string]struct{})
	for _, r := range records {
		for category := range r.CategoryScores {
			seen[category] = struct{}{}
		}
	}
	categories := make([]string, 0, len(seen))
	for category := range seen {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	return categories
}

func collect(records []domain.ReviewRecord, pick func(domain.ReviewRecord) []string) [][]string {
	lists := make([][]string, 0, len(records))
	for _, r := range records {
		lists = append(lists, pick(r))
	}
	return lists
}
