// Package storage implements the review source and consensus store
// collaborators on top of gorm with a SQLite backing database.
package storage

import "time"

// Video processing statuses set by the upstream classification pipeline.
// Only complete videos feed the aggregation; partially processed records
// must never be included.
const (
	StatusPending  = "pending"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// Channel is the owning outlet of one or more review videos. The channel
// carries the credibility tier that the review source flattens onto every
// review record it returns.
type Channel struct {
	ID              string `gorm:"primaryKey"`
	Name            string
	CredibilityTier string
}

// Video is one source video, linked to its owning channel and stamped with
// the upstream processing status.
type Video struct {
	ID        string `gorm:"primaryKey"`
	ChannelID string `gorm:"index"`
	Channel   Channel
	Title     string
	Status    string `gorm:"index"`
}

// Review is one video's classified observations about one vehicle.
// List and map fields are stored as JSON text columns.
type Review struct {
	ID        uint   `gorm:"primaryKey"`
	VideoID   string `gorm:"index"`
	Video     Video
	VehicleID string `gorm:"index"`
	Role      string

	CategoryScoresJSON   string
	StrengthTagsJSON     string
	WeaknessTagsJSON     string
	UsageContextTagsJSON string
	ComparedToIDsJSON    string
}

// Consensus is the persisted per-vehicle consensus record, keyed by vehicle
// ID and fully replaced on every upsert.
type Consensus struct {
	VehicleID   string `gorm:"primaryKey"`
	ReviewCount int

	CategoriesJSON    string
	StrengthsJSON     string
	WeaknessesJSON    string
	UsageContextsJSON string
	ComparisonsJSON   string
	AdjustmentsJSON   string

	Summary     string
	GeneratedAt time.Time
}
