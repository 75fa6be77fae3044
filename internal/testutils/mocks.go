// Package testutils provides in-memory collaborator fakes for exercising the
// consensus pipeline without a database.
package testutils

import (
	"context"
	"sort"
	"sync"

	"github.com/revline/consensus/internal/domain"
)

// MockReviewSource is an in-memory ReviewSource backed by a map of vehicle
// ID to review records. Individual vehicles can be made to fail to simulate
// fetch errors. Safe for concurrent use.
type MockReviewSource struct {
	mu      sync.Mutex
	records map[string][]domain.ReviewRecord
	failing map[string]error
	listErr error

	// FetchCalls counts ReviewsForVehicle invocations per vehicle.
	FetchCalls map[string]int
}

// NewMockReviewSource creates an empty mock review source.
func NewMockReviewSource() *MockReviewSource {
	return &MockReviewSource{
		records:    make(map[string][]domain.ReviewRecord),
		failing:    make(map[string]error),
		FetchCalls: make(map[string]int),
	}
}

// AddReviews registers review records for a vehicle.
func (m *MockReviewSource) AddReviews(vehicleID string, records ...domain.ReviewRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[vehicleID] = append(m.records[vehicleID], records...)
}

// SetReviews replaces a vehicle's review records.
func (m *MockReviewSource) SetReviews(vehicleID string, records []domain.ReviewRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[vehicleID] = records
}

// FailVehicle makes fetches for the given vehicle return err.
func (m *MockReviewSource) FailVehicle(vehicleID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failing[vehicleID] = err
}

// FailList makes ListVehicleIDs return err.
func (m *MockReviewSource) FailList(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

// ReviewsForVehicle implements ports.ReviewSource.
func (m *MockReviewSource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FetchCalls[vehicleID]++
	if err, ok := m.failing[vehicleID]; ok {
		return nil, err
	}
	out := make([]domain.ReviewRecord, len(m.records[vehicleID]))
	copy(out, m.records[vehicleID])
	return out, nil
}

// ListVehicleIDs implements ports.ReviewSource, returning vehicle IDs in
// sorted order for deterministic batches.
func (m *MockReviewSource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// MockConsensusStore is an in-memory ConsensusStore recording every upsert.
// Safe for concurrent use.
type MockConsensusStore struct {
	mu      sync.Mutex
	byID    map[string]*domain.ConsensusRecord
	upserts []*domain.ConsensusRecord
	err     error
}

// NewMockConsensusStore creates an empty mock store.
func NewMockConsensusStore() *MockConsensusStore {
	return &MockConsensusStore{byID: make(map[string]*domain.ConsensusRecord)}
}

// FailWith makes every upsert return err.
func (m *MockConsensusStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// UpsertConsensus implements ports.ConsensusStore with full-replace
// semantics.
func (m *MockConsensusStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byID[record.VehicleID] = record
	m.upserts = append(m.upserts, record)
	return nil
}

// Get returns the stored record for a vehicle, or nil.
func (m *MockConsensusStore) Get(vehicleID string) *domain.ConsensusRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byID[vehicleID]
}

// UpsertCount returns the total number of upserts performed.
func (m *MockConsensusStore) UpsertCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.upserts)
}
