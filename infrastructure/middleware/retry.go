package middleware

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// backoff computes the delay before retry attempt n using exponential
// backoff with ±25% jitter, capped at maxDelay.
type backoff struct {
	baseDelay time.Duration
	maxDelay  time.Duration
}

func (b backoff) delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// #nosec G115 - attempt is bounded between 0 and 30
	multiplier := 1 << uint(attempt)
	delay := time.Duration(float64(b.baseDelay) * float64(multiplier))

	// #nosec G404 - Using weak RNG is acceptable for jitter calculation
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - (delay / 4)

	if delay > b.maxDelay {
		delay = b.maxDelay
	}
	return delay
}

// retry runs op up to maxAttempts times, sleeping between attempts and
// stopping early on context cancellation. Fetch and persist are both
// idempotent, so retrying either is safe.
func retry(ctx context.Context, maxAttempts int, b backoff, op func() error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := op(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if ctx.Err() != nil || attempt == maxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.delay(attempt)):
			// Continue to next attempt.
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", maxAttempts, lastErr)
}

// retrySource retries failed fetches with exponential backoff.
type retrySource struct {
	next        ports.ReviewSource
	maxAttempts int
	backoff     backoff
}

// RetrySource creates middleware that retries failed fetch calls.
// maxAttempts is the total attempt count including the first call.
func RetrySource(maxAttempts int, baseDelay, maxDelay time.Duration) SourceMiddleware {
	return func(next ports.ReviewSource) ports.ReviewSource {
		return &retrySource{
			next:        next,
			maxAttempts: maxAttempts,
			backoff:     backoff{baseDelay: baseDelay, maxDelay: maxDelay},
		}
	}
}

// ReviewsForVehicle retries the wrapped fetch.
func (r *retrySource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	var records []domain.ReviewRecord
	err := retry(ctx, r.maxAttempts, r.backoff, func() error {
		var opErr error
		records, opErr = r.next.ReviewsForVehicle(ctx, vehicleID)
		return opErr
	})
	return records, err
}

// ListVehicleIDs retries the wrapped enumeration.
func (r *retrySource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := retry(ctx, r.maxAttempts, r.backoff, func() error {
		var opErr error
		ids, opErr = r.next.ListVehicleIDs(ctx)
		return opErr
	})
	return ids, err
}

// retryStore retries failed upserts with exponential backoff.
type retryStore struct {
	next        ports.ConsensusStore
	maxAttempts int
	backoff     backoff
}

// RetryStore creates middleware that retries failed upserts. The upsert is a
// full replace keyed by vehicle ID, so repeating it converges to the same
// row.
func RetryStore(maxAttempts int, baseDelay, maxDelay time.Duration) StoreMiddleware {
	return func(next ports.ConsensusStore) ports.ConsensusStore {
		return &retryStore{
			next:        next,
			maxAttempts: maxAttempts,
			backoff:     backoff{baseDelay: baseDelay, maxDelay: maxDelay},
		}
	}
}

// UpsertConsensus retries the wrapped upsert.
func (r *retryStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	return retry(ctx, r.maxAttempts, r.backoff, func() error {
		return r.next.UpsertConsensus(ctx, record)
	})
}
