package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/revline/consensus/internal/domain"
	"github.com/revline/consensus/internal/ports"
)

var _ ports.ReviewSource = (*GormReviewSource)(nil)

// Open connects to the SQLite database at the given DSN and migrates the
// schema. Both collaborators share the returned handle.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Channel{}, &Video{}, &Review{}, &Consensus{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

// GormReviewSource serves review records from the database.
//
// Credibility tiers live on channels, two joins away from a review row. The
// source flattens that join here so every returned record carries a resolved
// tier and the aggregation core never touches nested structures.
type GormReviewSource struct {
	db *gorm.DB
}

// NewGormReviewSource creates a review source backed by the given database
// handle.
func NewGormReviewSource(db *gorm.DB) *GormReviewSource {
	return &GormReviewSource{db: db}
}

// ReviewsForVehicle implements ports.ReviewSource. Only reviews whose video
// reached complete status are returned, ordered by video ID for stable
// output across runs.
func (s *GormReviewSource) ReviewsForVehicle(ctx context.Context, vehicleID string) ([]domain.ReviewRecord, error) {
	if vehicleID == "" {
		return nil, domain.ErrEmptyVehicleID
	}

	var rows []Review
	err := s.db.WithContext(ctx).
		Preload("Video.Channel").
		Joins("JOIN videos ON videos.id = reviews.video_id").
		Where("reviews.vehicle_id = ? AND videos.status = ?", vehicleID, StatusComplete).
		Order("reviews.video_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("query reviews for %s: %w", vehicleID, err)
	}

	records := make([]domain.ReviewRecord, 0, len(rows))
	for _, row := range rows {
		record, err := toDomainRecord(row)
		if err != nil {
			return nil, fmt.Errorf("review %d for %s: %w", row.ID, vehicleID, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// ListVehicleIDs implements ports.ReviewSource, enumerating every vehicle
// with at least one completed review in sorted order.
func (s *GormReviewSource) ListVehicleIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).
		Model(&Review{}).
		Joins("JOIN videos ON videos.id = reviews.video_id").
		Where("videos.status = ?", StatusComplete).
		Distinct().
		Order("reviews.vehicle_id").
		Pluck("reviews.vehicle_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return ids, nil
}

// toDomainRecord flattens a review row and its joined video/channel into a
// self-contained domain record with the credibility tier resolved.
func toDomainRecord(row Review) (domain.ReviewRecord, error) {
	record := domain.ReviewRecord{
		VideoID:         row.VideoID,
		VehicleID:       row.VehicleID,
		Role:            domain.ReviewRole(row.Role),
		CredibilityTier: domain.CredibilityTier(row.Video.Channel.CredibilityTier),
	}

	if err := decodeColumn(row.CategoryScoresJSON, &record.CategoryScores); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("category scores: %w", err)
	}
	if err := decodeColumn(row.StrengthTagsJSON, &record.StrengthTags); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("strength tags: %w", err)
	}
	if err := decodeColumn(row.WeaknessTagsJSON, &record.WeaknessTags); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("weakness tags: %w", err)
	}
	if err := decodeColumn(row.UsageContextTagsJSON, &record.UsageContextTags); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("usage context tags: %w", err)
	}
	if err := decodeColumn(row.ComparedToIDsJSON, &record.ComparedToIDs); err != nil {
		return domain.ReviewRecord{}, fmt.Errorf("compared-to ids: %w", err)
	}

	if err := record.Validate(); err != nil {
		return domain.ReviewRecord{}, err
	}
	return record, nil
}

// decodeColumn unmarshals a JSON text column, treating the empty string as
// an absent value.
func decodeColumn(raw string, out any) error {
	if raw == "" {
		return nil
	}
	return json.Unmarshal([]byte(raw), out)
}
