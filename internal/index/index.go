// Package index provides access to the candidate index used for the
// retrieval stage. The index stores searchable college documents and
// answers similarity queries against a student profile.
package index

import (
	"context"

	"college-recommender/internal/models"
)

// Candidate is a single retrieval hit: a college identifier with a
// similarity score normalized to [0.0, 1.0].
type Candidate struct {
	CollegeID  string  `json:"collegeId"`
	Similarity float64 `json:"similarity"`
}

// CandidateIndex answers top-k similarity queries for a student profile.
type CandidateIndex interface {
	Search(ctx context.Context, profile *models.StudentProfile, k int) ([]Candidate, error)
}
