package domain

import "time"

// CategoryConsensus holds the aggregated sentiment statistics for a single
// attribute category. Every populated entry reflects at least one
// contributing source; categories no source addressed are omitted from
// ConsensusRecord.Categories entirely.
type CategoryConsensus struct {
	// Mean is the credibility-weighted average sentiment, rounded to two
	// decimal places.
	Mean float64 `json:"mean"`

	// Variance is the credibility-weighted population variance of the
	// sentiment values, rounded to two decimal places.
	Variance float64 `json:"variance"`

	// Count is the number of sources that addressed this category,
	// independent of weighting. Used downstream for "based on N reviews".
	Count int `json:"count"`

	// Agreement is the discrete agreement bucket derived from Variance.
	Agreement AgreementLevel `json:"agreement"`
}

// TagCount pairs a qualitative tag (or a compared-vehicle identifier) with
// the number of sources that mentioned it.
type TagCount struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// ConsensusRecord is the per-vehicle output of the aggregation core.
// It is regenerated wholesale on every batch run and upserted keyed by
// VehicleID; there are no partial updates.
type ConsensusRecord struct {
	// VehicleID identifies the vehicle this consensus describes.
	VehicleID string `json:"vehicle_id"`

	// ReviewCount is the number of review records folded into this consensus.
	ReviewCount int `json:"review_count"`

	// Categories maps attribute category names to their aggregated
	// statistics. Categories with zero contributing sources are absent.
	Categories map[string]CategoryConsensus `json:"categories"`

	// Strengths, Weaknesses, and UsageContexts are ranked (tag, count)
	// lists, each capped to the configured top-N.
	Strengths     []TagCount `json:"strengths,omitempty"`
	Weaknesses    []TagCount `json:"weaknesses,omitempty"`
	UsageContexts []TagCount `json:"usage_contexts,omitempty"`

	// Comparisons ranks the vehicles sources compared this one against.
	Comparisons []TagCount `json:"comparisons,omitempty"`

	// Adjustments maps category names to bounded rating adjustments, each
	// within [-MaxAdjustment, MaxAdjustment].
	Adjustments map[string]float64 `json:"adjustments"`

	// Summary is a short templated sentence built from the top strengths
	// and weaknesses. Empty when no tags were available.
	Summary string `json:"summary,omitempty"`

	// GeneratedAt records when this consensus was computed.
	GeneratedAt time.Time `json:"generated_at"`
}
