// internal/pipeline/verify-claims/config.go
package verifyclaims

import (
	"time"

	"college-recommender/internal/models"
)

type Config struct {
	// SourceTimeout bounds each individual source query.
	SourceTimeout time.Duration
	// PoolSize bounds the verification fan-out. Zero means "size to the
	// number of configured sources".
	PoolSize int

	// Comparison tolerances per field class.
	PercentageTolerance float64 // absolute, in percentage points
	SalaryTolerance     float64 // relative fraction of the source value
	SeatsTolerance      float64 // absolute seat count

	// MaxSeatClaims caps per-program seat claims per candidate.
	MaxSeatClaims int

	// FieldImportance weights claim confidences in the per-college
	// aggregate. Field types absent from the map count with weight zero.
	FieldImportance map[models.FieldType]float64
}

func LoadConfig() *Config {
	return &Config{
		SourceTimeout:       3 * time.Second,
		PercentageTolerance: 2.0,
		SalaryTolerance:     0.05,
		SeatsTolerance:      10,
		MaxSeatClaims:       3,
		FieldImportance: map[models.FieldType]float64{
			models.FieldAccreditation:       0.30,
			models.FieldPlacementPercentage: 0.25,
			models.FieldRanking:             0.20,
			models.FieldAverageSalary:       0.15,
			models.FieldProgramSeats:        0.10,
		},
	}
}
