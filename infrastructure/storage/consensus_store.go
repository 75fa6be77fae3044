package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

var _ ports.ConsensusStore = (*GormConsensusStore)(nil)

// GormConsensusStore persists consensus records with full-replace upsert
// semantics keyed by vehicle ID.
type GormConsensusStore struct {
	db *gorm.DB
}

// NewGormConsensusStore creates a consensus store backed by the given
// database handle.
func NewGormConsensusStore(db *gorm.DB) *GormConsensusStore {
	return &GormConsensusStore{db: db}
}

// UpsertConsensus implements ports.ConsensusStore. Every column is replaced
// on conflict; a consensus row never receives partial updates.
func (s *GormConsensusStore) UpsertConsensus(ctx context.Context, record *domain.ConsensusRecord) error {
	if record == nil {
		return fmt.Errorf("consensus record must not be nil")
	}
	if record.VehicleID == "" {
		return domain.ErrEmptyVehicleID
	}

	row, err := toRow(record)
	if err != nil {
		return fmt.Errorf("encode consensus for %s: %w", record.VehicleID, err)
	}

	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "vehicle_id"}},
			UpdateAll: true,
		}).
		Create(&row).Error
	if err != nil {
		return fmt.Errorf("upsert consensus for %s: %w", record.VehicleID, err)
	}
	return nil
}

// Load reads the persisted consensus for a vehicle, decoding the JSON
// columns back into a domain record. Returns gorm.ErrRecordNotFound when no
// consensus exists.
func (s *GormConsensusStore) Load(ctx context.Context, vehicleID string) (*domain.ConsensusRecord, error) {
	var row Consensus
	if err := s.db.WithContext(ctx).First(&row, "vehicle_id = ?", vehicleID).Error; err != nil {
		return nil, err
	}
	return fromRow(row)
}

func toRow(record *domain.ConsensusRecord) (Consensus, error) {
	row := Consensus{
		VehicleID:   record.VehicleID,
		ReviewCount: record.ReviewCount,
		Summary:     record.Summary,
		GeneratedAt: record.GeneratedAt,
	}

	encoded := []struct {
		value any
		dst   *string
	}{
		{record.Categories, &row.CategoriesJSON},
		{record.Strengths, &row.StrengthsJSON},
		{record.Weaknesses, &row.WeaknessesJSON},
		{record.UsageContexts, &row.UsageContextsJSON},
		{record.Comparisons, &row.ComparisonsJSON},
		{record.Adjustments, &row.AdjustmentsJSON},
	}
	for _, e := range encoded {
		data, err := json.Marshal(e.value)
		if err != nil {
			return Consensus{}, err
		}
		*e.dst = string(data)
	}
	return row, nil
}

func fromRow(row Consensus) (*domain.ConsensusRecord, error) {
	record := &domain.ConsensusRecord{
		VehicleID:   row.VehicleID,
		ReviewCount: row.ReviewCount,
		Summary:     row.Summary,
		GeneratedAt: row.GeneratedAt,
	}

	decoded := []struct {
		raw string
		dst any
	}{
		{row.CategoriesJSON, &record.Categories},
		{row.StrengthsJSON, &record.Strengths},
		{row.WeaknessesJSON, &record.Weaknesses},
		{row.UsageContextsJSON, &record.UsageContexts},
		{row.ComparisonsJSON, &record.Comparisons},
		{row.AdjustmentsJSON, &record.Adjustments},
	}
	for _, d := range decoded {
		if d.raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(d.raw), d.dst); err != nil {
			return nil, fmt.Errorf("decode consensus for %s: %w", row.VehicleID, err)
		}
	}
	return record, nil
}
