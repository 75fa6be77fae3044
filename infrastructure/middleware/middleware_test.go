package middleware

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/revline/consensus/internal/domain"
)

// flakySource fails the first failUntil fetches, then succeeds. It can also
// block to exercise timeouts.
type flakySource struct {
	calls     atomic.Int32
	failUntil int32
	delay     time.Duration
	records   []domain.ReviewRecord
}

func (f *flakySource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if n <= f.failUntil {
		return nil, errors.New("transient failure")
	}
	return f.records, nil
}

func (f *flakySource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	n := f.calls.Add(1)
	if n <= f.failUntil {
		return nil, errors.New("transient failure")
	}
	return []string{"v1"}, nil
}

// flakyStore fails the first failUntil upserts, then succeeds.
type flakyStore struct {
	calls     atomic.Int32
	failUntil int32
	delay     time.Duration
}

func (f *flakyStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	n := f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(f.delay):
		}
	}
	if n <= f.failUntil {
		return errors.New("transient failure")
	}
	return nil
}

func TestRetrySource_RetriesUntilSuccess(t *testing.T) {
	// Given a source that fails twice then succeeds
	src := &flakySource{failUntil: 2, records: []domain.ReviewRecord{{VideoID: "vid1"}}}
	wrapped := RetrySource(3, time.Millisecond, 10*time.Millisecond)(src)

	// When fetching
	records, err := wrapped.ReviewsForVehicle(context.Background(), "gt3")

	// Then it eventually succeeds after retries
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.EqualValues(t, 3, src.calls.Load(), "should retry until success")
}

func TestRetrySource_FailsAfterBudgetExhausted(t *testing.T) {
	src := &flakySource{failUntil: 100}
	wrapped := RetrySource(3, time.Millisecond, 10*time.Millisecond)(src)

	_, err := wrapped.ReviewsForVehicle(context.Background(), "gt3")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.EqualValues(t, 3, src.calls.Load())
}

func TestRetrySource_StopsOnCancelledContext(t *testing.T) {
	src := &flakySource{failUntil: 100}
	wrapped := RetrySource(5, 50*time.Millisecond, time.Second)(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wrapped.ReviewsForVehicle(ctx, "gt3")
	require.Error(t, err)
	assert.EqualValues(t, 1, src.calls.Load(), "no retries once the context is cancelled")
}

func TestRetryStore_RetriesUpserts(t *testing.T) {
	store := &flakyStore{failUntil: 1}
	wrapped := RetryStore(3, time.Millisecond, 10*time.Millisecond)(store)

	err := wrapped.UpsertConsensus(context.Background(), &domain.ConsensusRecord{VehicleID: "gt3"})

	require.NoError(t, err)
	assert.EqualValues(t, 2, store.calls.Load())
}

func TestTimeoutSource_BoundsSlowFetches(t *testing.T) {
	src := &flakySource{delay: 100 * time.Millisecond}
	wrapped := TimeoutSource(10 * time.Millisecond)(src)

	_, err := wrapped.ReviewsForVehicle(context.Background(), "gt3")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTimeoutStore_BoundsSlowUpserts(t *testing.T) {
	store := &flakyStore{delay: 100 * time.Millisecond}
	wrapped := TimeoutStore(10 * time.Millisecond)(store)

	err := wrapped.UpsertConsensus(context.Background(), &domain.ConsensusRecord{VehicleID: "gt3"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimitSource_AllowsWithinBudget(t *testing.T) {
	src := &flakySource{records: []domain.ReviewRecord{{VideoID: "vid1"}}}
	wrapped := RateLimitSource(rate.Limit(1000), 2)(src)

	for i := 0; i < 2; i++ {
		_, err := wrapped.ReviewsForVehicle(context.Background(), "gt3")
		require.NoError(t, err)
	}
}

func TestRateLimitSource_FailsOnCancelledContext(t *testing.T) {
	src := &flakySource{}
	// Zero sustained rate with an empty bucket can never grant a token.
	wrapped := RateLimitSource(rate.Limit(0.0001), 1)(src)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := wrapped.ReviewsForVehicle(ctx, "gt3")
	require.NoError(t, err, "first call consumes the initial burst token")

	_, err = wrapped.ReviewsForVehicle(ctx, "gt3")
	require.Error(t, err, "second call must fail once the bucket is empty and the context expires")
	assert.Contains(t, err.Error(), "rate limit")
}

func TestChainSource_OrdersDecorators(t *testing.T) {
	src := &flakySource{failUntil: 1, records: []domain.ReviewRecord{{VideoID: "vid1"}}}
	wrapped := ChainSource(src,
		TimeoutSource(time.Second),
		RetrySource(2, time.Millisecond, 10*time.Millisecond),
	)

	records, err := wrapped.ReviewsForVehicle(context.Background(), "gt3")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.EqualValues(t, 2, src.calls.Load())
}
