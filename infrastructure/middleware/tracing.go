package middleware

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

// tracedSource wraps fetch operations in OpenTelemetry spans, recording the
// vehicle and result size for debugging slow or failing fetches.
type tracedSource struct {
	next   ports.ReviewSource
	tracer trace.Tracer
}

// TraceSource creates middleware that adds tracing spans to fetch calls.
func TraceSource() SourceMiddleware {
	return func(next ports.ReviewSource) ports.ReviewSource {
		return &tracedSource{
			next:   next,
			tracer: otel.Tracer("review-source"),
		}
	}
}

// ReviewsForVehicle executes the fetch within a span.
func (t *tracedSource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	ctx, span := t.tracer.Start(ctx, "ReviewSource.ReviewsForVehicle",
		trace.WithAttributes(attribute.String("vehicle.id", vehicleID)),
	)
	defer span.End()

	records, err := t.next.ReviewsForVehicle(ctx, vehicleID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("review.count", len(records)))
	return records, nil
}

// ListVehicleIDs executes the enumeration within a span.
func (t *tracedSource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	ctx, span := t.tracer.Start(ctx, "ReviewSource.ListVehicleIDs")
	defer span.End()

	ids, err := t.next.ListVehicleIDs(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("vehicle.count", len(ids)))
	return ids, nil
}

// tracedStore wraps upserts in OpenTelemetry spans.
type tracedStore struct {
	next   ports.ConsensusStore
	tracer trace.Tracer
}

// TraceStore creates middleware that adds tracing spans to upserts.
func TraceStore() StoreMiddleware {
	return func(next ports.ConsensusStore) ports.ConsensusStore {
		return &tracedStore{
			next:   next,
			tracer: otel.Tracer("consensus-store"),
		}
	}
}

// UpsertConsensus executes the upsert within a span.
func (t *tracedStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	ctx, span := t.tracer.Start(ctx, "ConsensusStore.UpsertConsensus",
		trace.WithAttributes(
			attribute.String("vehicle.id", record.VehicleID),
			attribute.Int("review.count", record.ReviewCount),
		),
	)
	defer span.End()

	if err := t.next.UpsertConsensus(ctx, record); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}
