// internal/pipeline/score-candidates/config.go
package scorecandidates

type Config struct {
	// NeutralDefault is the sub-score for factors with no reported data.
	NeutralDefault float64
	// SalaryCeiling saturates the salary quality signal; salaries at or
	// above the ceiling score 1.0.
	SalaryCeiling float64
	// UnverifiedRatingWeight discounts unverified mentor ratings.
	UnverifiedRatingWeight float64
	// ProximitySameState scores a same-state (non-exact) location match.
	ProximitySameState float64
	// ProximityFloor scores a full location mismatch. Location never
	// excludes a candidate.
	ProximityFloor float64
}

func LoadConfig() *Config {
	return &Config{
		NeutralDefault:         0.5,
		SalaryCeiling:          2000000,
		UnverifiedRatingWeight: 0.5,
		ProximitySameState:     0.6,
		ProximityFloor:         0.3,
	}
}
