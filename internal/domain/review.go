// Package domain contains the core types and pure aggregation algorithms for
// the vehicle review consensus engine. Nothing in this package performs I/O;
// all functions are deterministic and safe for concurrent use.
package domain

// CredibilityTier classifies how trustworthy a review source is.
// The tier is resolved from the source's owning channel by the review source
// collaborator and arrives pre-flattened on every record; this core never
// re-derives it.
type CredibilityTier string

// Supported credibility tiers, ordered from most to least trusted.
const (
	TierOne   CredibilityTier = "tier1"
	TierTwo   CredibilityTier = "tier2"
	TierThree CredibilityTier = "tier3"
)

// ReviewRole describes whether a source is principally about the vehicle
// or only mentions it while reviewing something else.
type ReviewRole string

const (
	// RolePrimary marks a source whose review is about this vehicle.
	RolePrimary ReviewRole = "primary"

	// RoleComparison marks a source that mentions this vehicle incidentally,
	// typically while comparing it against the vehicle under review.
	RoleComparison ReviewRole = "comparison"
)

// Well-known attribute category names produced by the upstream classifier.
// The category set is open; these constants exist for callers and tests that
// reference the common categories.
const (
	CategorySound       = "sound"
	CategoryTrack       = "track"
	CategoryReliability = "reliability"
	CategoryValue       = "value"
	CategoryDriverFun   = "driver_fun"
	CategoryInterior    = "interior"
	CategoryAftermarket = "aftermarket"
)

// ReviewRecord captures one source's observations about one vehicle.
// Records are produced by the upstream classification pipeline and are
// read-only to this core: aggregation never mutates them.
type ReviewRecord struct {
	// VideoID is the opaque identifier of the source, unique per source.
	VideoID string `json:"video_id" validate:"required"`

	// VehicleID identifies the vehicle being reviewed. Many records may
	// reference the same vehicle.
	VehicleID string `json:"vehicle_id" validate:"required"`

	// Role indicates whether the source is principally about this vehicle.
	Role ReviewRole `json:"role" validate:"required,oneof=primary comparison"`

	// CategoryScores maps attribute category names to sentiment values in
	// [-1, 1]. A source may not address every category, so any entry may be
	// absent.
	CategoryScores map[string]float64 `json:"category_scores" validate:"omitempty,dive,min=-1,max=1"`

	// StrengthTags are free-form short strings naming praised attributes.
	StrengthTags []string `json:"strength_tags,omitempty"`

	// WeaknessTags are free-form short strings naming criticized attributes.
	WeaknessTags []string `json:"weakness_tags,omitempty"`

	// UsageContextTags describe how the source used the vehicle
	// (track day, daily driver, tow rig, ...).
	UsageContextTags []string `json:"usage_context_tags,omitempty"`

	// ComparedToIDs lists other vehicle identifiers this source explicitly
	// compares against.
	ComparedToIDs []string `json:"compared_to_ids,omitempty"`

	// CredibilityTier is the source's trust classification, immutable once
	// set. It is resolved upstream from the owning channel.
	CredibilityTier CredibilityTier `json:"credibility_tier" validate:"required,oneof=tier1 tier2 tier3"`
}

// Validate checks the record against its structural constraints.
// Returns nil if valid, or a validation error describing the violation.
func (r *ReviewRecord) Validate() error { return validate.Struct(r) }
