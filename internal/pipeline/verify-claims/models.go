// internal/pipeline/verify-claims/models.go
package verifyclaims

import (
	"college-recommender/internal/models"
)

type CandidateInput struct {
	CollegeID string          `json:"collegeId"`
	College   *models.College `json:"college"`
}

type Input struct {
	Candidates []CandidateInput       `json:"candidates"`
	Profile    *models.StudentProfile `json:"profile"`
}

// CandidateVerification is the joined verification outcome for one
// candidate: every claim's terminal result plus the importance-weighted
// aggregate confidence.
type CandidateVerification struct {
	CollegeID  string                      `json:"collegeId"`
	Results    []models.VerificationResult `json:"results"`
	Confidence float64                     `json:"confidence"`
}

type Output struct {
	Verifications map[string]*CandidateVerification `json:"verifications"`
}

// workItem is one unit of fan-out: a single claim of a single candidate.
type workItem struct {
	collegeID string
	claim     models.Claim
}

type workResult struct {
	collegeID string
	result    models.VerificationResult
}
