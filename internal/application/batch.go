package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// BatchStats summarizes one batch run. The driver always returns a stats
// value, even when every vehicle failed.
type BatchStats struct {
	// Processed is the number of vehicles the run attempted.
	Processed int `json:"processed"`

	// Updated is the number of consensus records upserted (or, in dry-run
	// mode, fully computed and reported).
	Updated int `json:"updated"`

	// SkippedNoReviews counts vehicles with zero completed reviews. These
	// are not errors and leave prior persisted records untouched.
	SkippedNoReviews int `json:"skipped_no_reviews"`

	// Errors counts vehicles whose fetch, computation, or persistence
	// failed. A failed vehicle never aborts the remaining iterations.
	Errors int `json:"errors"`
}

// BatchOptions control a single batch run.
type BatchOptions struct {
	// DryRun performs all computation but replaces the upsert with a log
	// line describing the would-be record.
	DryRun bool

	// Verbose additionally logs each vehicle's per-category statistics and
	// adjustments for inspection.
	Verbose bool
}

// Driver fans the consensus builder out across vehicles, one at a time.
//
// The run is deliberately sequential: per-vehicle work is small and
// independent, the review source is rate-sensitive, and sequential execution
// keeps failure attribution unambiguous. Cancellation is checked between
// vehicles only; a single vehicle's computation is cheap and runs to
// completion once started.
type Driver struct {
	builder *Builder
	source  ports.ReviewSource
	store   ports.ConsensusStore
	metrics ports.MetricsCollector
	logger  *log.Logger
	opts    BatchOptions
}

// NewDriver creates a batch driver. The store may be nil only in dry-run
// mode; metrics and logger may be nil, in which case metrics are dropped and
// logging uses the default logger.
func NewDriver(
	builder *Builder,
	source ports.ReviewSource,
	store ports.ConsensusStore,
	metrics ports.MetricsCollector,
	logger *log.Logger,
	opts BatchOptions,
) (*Driver, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder must not be nil")
	}
	if source == nil {
		return nil, fmt.Errorf("review source must not be nil")
	}
	if store == nil && !opts.DryRun {
		return nil, fmt.Errorf("consensus store must not be nil outside dry-run mode")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Driver{
		builder: builder,
		source:  source,
		store:   store,
		metrics: metrics,
		logger:  logger,
		opts:    opts,
	}, nil
}

// Run processes the given vehicles, or every vehicle known to the review
// source when the list is empty. Each vehicle executes inside an isolated
// failure boundary: an error in one vehicle is logged, counted, and never
// propagates to the rest of the batch.
//
// The returned error is non-nil only when the run could not proceed at all
// (vehicle enumeration failed) or was cancelled between vehicles; the stats
// value is always meaningful.
func (d *Driver) Run(ctx context.Context, vehicleIDs []string) (BatchStats, error) {
	var stats BatchStats

	if len(vehicleIDs) == 0 {
		ids, err := d.source.ListVehicleIDs(ctx)
		if err != nil {
			d.logger.Printf("batch: vehicle enumeration failed: %v", err)
			return stats, fmt.Errorf("list vehicles: %w", err)
		}
		vehicleIDs = ids
	}

	for _, vehicleID := range vehicleIDs {
		if err := ctx.Err(); err != nil {
			d.logger.Printf("batch: cancelled after %d of %d vehicles", stats.Processed, len(vehicleIDs))
			return stats, err
		}
		d.processVehicle(ctx, vehicleID, &stats)
	}

	d.logger.Printf("batch: done processed=%d updated=%d skipped_no_reviews=%d errors=%d",
		stats.Processed, stats.Updated, stats.SkippedNoReviews, stats.Errors)
	return stats, nil
}

// processVehicle runs one vehicle end to end, converting panics and errors
// into counted, logged outcomes.
func (d *Driver) processVehicle(ctx context.Context, vehicleID string, stats *BatchStats) {
	start := time.Now()
	stats.Processed++

	defer func() {
		if r := recover(); r != nil {
			stats.Errors++
			d.logger.Printf("vehicle %s: panic during processing: %v", vehicleID, r)
			d.count("error")
		}
		d.latency("vehicle_process", time.Since(start))
	}()

	record, err := d.builder.Build(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, ErrNoReviews) {
			stats.SkippedNoReviews++
			d.logger.Printf("vehicle %s: no reviews, skipping", vehicleID)
			d.count("skipped_no_reviews")
			return
		}
		stats.Errors++
		d.logger.Printf("vehicle %s: %v", vehicleID, err)
		d.count("error")
		return
	}

	d.logger.Printf("vehicle %s: %d reviews, summary=%q strengths=%v weaknesses=%v",
		vehicleID, record.ReviewCount, record.Summary,
		tagNames(record.Strengths), tagNames(record.Weaknesses))
	if d.opts.Verbose {
		d.logInspection(record)
	}

	if d.opts.DryRun {
		stats.Updated++
		d.logger.Printf("vehicle %s: dry-run, skipping upsert of %d categories", vehicleID, len(record.Categories))
		d.count("dry_run")
		return
	}

	if err := d.store.UpsertConsensus(ctx, record); err != nil {
		// The in-memory record is discarded; the vehicle is retried on the
		// next batch run, not within this one.
		stats.Errors++
		d.logger.Printf("vehicle %s: upsert failed: %v", vehicleID, err)
		d.count("error")
		return
	}

	stats.Updated++
	d.count("updated")
}

// logInspection prints the intermediate per-category values verbose mode
// exposes for operator inspection.
func (d *Driver) logInspection(record *domain.ConsensusRecord) {
	categories := make([]string, 0, len(record.Categories))
	for category := range record.Categories {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		c := record.Categories[category]
		d.logger.Printf("vehicle %s: category %s mean=%.2f variance=%.2f count=%d agreement=%s adjustment=%.2f",
			record.VehicleID, category, c.Mean, c.Variance, c.Count, c.Agreement, record.Adjustments[category])
	}
}

func (d *Driver) count(status string) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordCounter("consensus_vehicles_total", 1, map[string]string{"status": status})
}

func (d *Driver) latency(operation string, elapsed time.Duration) {
	if d.metrics == nil {
		return
	}
	d.metrics.RecordLatency(operation, elapsed, nil)
}

func tagNames(tags []domain.TagCount) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Tag)
	}
	return names
}
