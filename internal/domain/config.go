package domain

import (
	"fmt"
	"math"
)

// TagConfig controls string handling during tag aggregation.
// The zero value preserves the upstream classifier's output byte-for-byte:
// case-sensitive matching without whitespace trimming. Near-duplicate tags
// ("chassis" vs "chassis balance") are never merged; normalization beyond
// case folding belongs in the upstream classification step.
type TagConfig struct {
	// CaseSensitive controls case sensitivity during tag comparison.
	// When false, uses Unicode-aware case folding; the first-seen spelling
	// remains the displayed tag. Default: true.
	CaseSensitive bool `yaml:"case_sensitive" json:"case_sensitive"`

	// TrimWhitespace controls leading/trailing whitespace normalization
	// before comparison. Default: false.
	TrimWhitespace bool `yaml:"trim_whitespace" json:"trim_whitespace"`
}

// Config is the immutable aggregation configuration, constructed once at
// process start and passed explicitly into every component. It is never
// ambient or global state, so tests can substitute alternate thresholds
// without module-level tricks.
type Config struct {
	// TierWeights resolves a source's credibility tier to its aggregation
	// weight.
	TierWeights map[CredibilityTier]float64 `yaml:"tier_weights" json:"tier_weights" validate:"required,min=1,dive,keys,oneof=tier1 tier2 tier3,endkeys,min=0"`

	// Agreement holds the variance thresholds for agreement classification.
	Agreement AgreementThresholds `yaml:"agreement" json:"agreement" validate:"required"`

	// Multipliers damp the adjustment by agreement level. Disputed signals
	// are pulled toward zero rather than swinging the displayed score.
	Multipliers map[AgreementLevel]float64 `yaml:"agreement_multipliers" json:"agreement_multipliers" validate:"required,min=1,dive,keys,oneof=none weak moderate strong,endkeys,min=0,max=1"`

	// MaxAdjustment bounds the rating adjustment for any category to
	// [-MaxAdjustment, MaxAdjustment].
	MaxAdjustment float64 `yaml:"max_adjustment" json:"max_adjustment" validate:"required,gt=0,max=1"`

	// TopTags caps the ranked strength, weakness, and usage-context lists.
	TopTags int `yaml:"top_tags" json:"top_tags" validate:"required,min=1,max=20"`

	// TopComparisons caps the ranked compared-vehicle list.
	TopComparisons int `yaml:"top_comparisons" json:"top_comparisons" validate:"required,min=1,max=20"`

	// SummaryTags is how many top strengths and weaknesses feed the summary
	// sentence.
	SummaryTags int `yaml:"summary_tags" json:"summary_tags" validate:"required,min=1,max=5"`

	// Tags controls tag string comparison.
	Tags TagConfig `yaml:"tags" json:"tags"`
}

// DefaultConfig returns the production aggregation configuration:
// tier weights 1.0/0.7/0.5, strong agreement below variance 0.10, moderate
// below 0.25, a 0.5 maximum adjustment, and top-5 tag lists.
func DefaultConfig() Config {
	return Config{
		TierWeights: map[CredibilityTier]float64{
			TierOne:   1.0,
			TierTwo:   0.7,
			TierThree: 0.5,
		},
		Agreement: AgreementThresholds{
			StrongBelow:   0.10,
			ModerateBelow: 0.25,
		},
		Multipliers: map[AgreementLevel]float64{
			AgreementStrong:   1.0,
			AgreementModerate: 0.7,
			AgreementWeak:     0.4,
			AgreementNone:     0.0,
		},
		MaxAdjustment:  0.5,
		TopTags:        5,
		TopComparisons: 5,
		SummaryTags:    2,
		Tags: TagConfig{
			CaseSensitive:  true,
			TrimWhitespace: false,
		},
	}
}

// Validate checks the configuration for structural and range violations.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}

// Weight resolves a credibility tier to its aggregation weight.
// Returns ErrUnknownTier for tiers absent from the weight table.
func (c Config) Weight(tier CredibilityTier) (float64, error) {
	w, ok := c.TierWeights[tier]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownTier, tier)
	}
	return w, nil
}

// Adjustment maps a category's weighted mean and agreement level to a
// bounded rating adjustment:
//
//	clamp(mean * MaxAdjustment * multiplier, -MaxAdjustment, MaxAdjustment)
//
// rounded to two decimal places. A unanimous strongly negative category
// (mean near -1, strong agreement) reaches the full penalty, while a
// disputed signal is damped toward zero by its multiplier.
func (c Config) Adjustment(mean float64, agreement AgreementLevel) float64 {
	multiplier, ok := c.Multipliers[agreement]
	if !ok {
		multiplier = 0
	}
	adj := mean * c.MaxAdjustment * multiplier
	adj = math.Max(-c.MaxAdjustment, math.Min(c.MaxAdjustment, adj))
	return round2(adj)
}
