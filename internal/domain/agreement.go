package domain

// AgreementLevel is a discrete bucket expressing how much sources concur on
// a category, derived from the weighted variance of their sentiment values.
type AgreementLevel string

// Agreement levels ordered from no data to full concurrence.
const (
	// AgreementNone means no source addressed the category. It appears if
	// and only if the category has no variance to classify.
	AgreementNone AgreementLevel = "none"

	// AgreementWeak means sources are spread across roughly opposite poles.
	AgreementWeak AgreementLevel = "weak"

	// AgreementModerate means sources lean the same way with visible spread.
	AgreementModerate AgreementLevel = "moderate"

	// AgreementStrong means sources tightly concur.
	AgreementStrong AgreementLevel = "strong"
)

// rank orders agreement levels for monotonicity comparisons in tests and
// callers; higher means more concurrence.
func (l AgreementLevel) rank() int {
	switch l {
	case AgreementWeak:
		return 1
	case AgreementModerate:
		return 2
	case AgreementStrong:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether l expresses at least as much concurrence as other.
func (l AgreementLevel) AtLeast(other AgreementLevel) bool { return l.rank() >= other.rank() }

// AgreementThresholds maps a variance to a discrete agreement level.
//
// The thresholds are fixed constants of the design rather than values derived
// from the data distribution: they assume sentiment values live in [-1, 1],
// where a variance at or above the weak boundary already indicates sources
// spread across roughly opposite poles.
type AgreementThresholds struct {
	// StrongBelow is the exclusive upper variance bound for strong agreement.
	StrongBelow float64 `yaml:"strong_below" json:"strong_below" validate:"gt=0"`

	// ModerateBelow is the exclusive upper variance bound for moderate
	// agreement; variances at or above it classify as weak.
	ModerateBelow float64 `yaml:"moderate_below" json:"moderate_below" validate:"gtfield=StrongBelow"`
}

// Classify maps a variance to an agreement level. The caller is responsible
// for mapping the no-data case to AgreementNone; Classify only sees variances
// that exist.
func (t AgreementThresholds) Classify(variance float64) AgreementLevel {
	switch {
	case variance < t.StrongBelow:
		return AgreementStrong
	case variance < t.ModerateBelow:
		return AgreementModerate
	default:
		return AgreementWeak
	}
}
