// Package middleware provides cross-cutting decorators for the review
// source and consensus store collaborators: rate limiting, bounded retries,
// per-call timeouts, tracing, and metrics.
package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// SourceMiddleware decorates a ReviewSource with additional behavior.
type SourceMiddleware func(ports.ReviewSource) ports.ReviewSource

// StoreMiddleware decorates a ConsensusStore with additional behavior.
type StoreMiddleware func(ports.ConsensusStore) ports.ConsensusStore

// ChainSource applies middlewares to a source so that the first middleware
// listed is the outermost decorator.
func ChainSource(source ports.ReviewSource, middlewares ...SourceMiddleware) ports.ReviewSource {
	for i := len(middlewares) - 1; i >= 0; i-- {
		source = middlewares[i](source)
	}
	return source
}

// ChainStore applies middlewares to a store so that the first middleware
// listed is the outermost decorator.
func ChainStore(store ports.ConsensusStore, middlewares ...StoreMiddleware) ports.ConsensusStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}

// rateLimitedSource paces fetches using a token bucket. The review source is
// a rate-sensitive external store; this keeps the sequential batch from
// overwhelming it even at full speed.
type rateLimitedSource struct {
	next    ports.ReviewSource
	limiter *rate.Limiter
}

// RateLimitSource creates middleware that enforces a sustained fetch rate
// with the given burst allowance. Both fetch operations draw from the same
// bucket.
func RateLimitSource(limit rate.Limit, burst int) SourceMiddleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next ports.ReviewSource) ports.ReviewSource {
		return &rateLimitedSource{next: next, limiter: limiter}
	}
}

// ReviewsForVehicle waits for rate limit permission before forwarding.
func (r *rateLimitedSource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.ReviewsForVehicle(ctx, vehicleID)
}

// ListVehicleIDs waits for rate limit permission before forwarding.
func (r *rateLimitedSource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.ListVehicleIDs(ctx)
}
