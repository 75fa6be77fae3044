// Package ports defines the interfaces that form the contract between the
// aggregation core and the infrastructure layer. These interfaces enable
// dependency inversion and make the batch pipeline testable without a
// database.
package ports

import (
	"context"
	"time"

	"github.com/revline/consensus/internal/domain"
)

// ReviewSource supplies the per-vehicle review records the consensus builder
// aggregates. Implementations must return only fully-processed records and
// must resolve each source's credibility tier before returning; the core
// never re-derives it from nested channel data.
//
// The review source is typically a rate-sensitive external store; callers
// are expected to pace and bound their calls through middleware rather than
// inside implementations.
type ReviewSource interface {
	// ReviewsForVehicle returns all completed review records for the given
	// vehicle, in a stable order. An empty slice is a valid result and is
	// not an error.
	ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error)

	// ListVehicleIDs enumerates every vehicle that has at least one
	// completed review record, in a stable order. Used when a batch run is
	// not given an explicit vehicle list.
	ListVehicleIDs(ctx context.Context) ([]string, error)
}

// ConsensusStore persists consensus records. Upserts use full-replace
// semantics keyed by vehicle ID; there are no partial updates.
//
// Implementations are never invoked for vehicles with zero reviews, which is
// what leaves previously persisted records untouched when a vehicle's data
// temporarily disappears.
type ConsensusStore interface {
	// UpsertConsensus writes the record, replacing any previous record for
	// the same vehicle in its entirety.
	UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error
}

// MetricsCollector abstracts metrics recording for the batch pipeline,
// keeping the application layer free of a concrete metrics dependency.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a named counter by the given value.
	RecordCounter(metric string, value float64, labels map[string]string)
}
