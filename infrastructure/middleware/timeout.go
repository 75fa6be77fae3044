package middleware

import (
	"context"
	"time"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// timeoutSource bounds each fetch call so a single stalled fetch cannot
// hang the whole batch.
type timeoutSource struct {
	next    ports.ReviewSource
	timeout time.Duration
}

// TimeoutSource creates middleware that enforces a per-call deadline on
// fetch operations.
func TimeoutSource(timeout time.Duration) SourceMiddleware {
	return func(next ports.ReviewSource) ports.ReviewSource {
		return &timeoutSource{next: next, timeout: timeout}
	}
}

// ReviewsForVehicle executes the fetch with a deadline.
func (t *timeoutSource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.ReviewsForVehicle(ctx, vehicleID)
}

// ListVehicleIDs executes the enumeration with a deadline.
func (t *timeoutSource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.ListVehicleIDs(ctx)
}

// timeoutStore bounds each upsert call.
type timeoutStore struct {
	next    ports.ConsensusStore
	timeout time.Duration
}

// TimeoutStore creates middleware that enforces a per-call deadline on
// upserts.
func TimeoutStore(timeout time.Duration) StoreMiddleware {
	return func(next ports.ConsensusStore) ports.ConsensusStore {
		return &timeoutStore{next: next, timeout: timeout}
	}
}

// UpsertConsensus executes the upsert with a deadline.
func (t *timeoutStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.UpsertConsensus(ctx, record)
}
