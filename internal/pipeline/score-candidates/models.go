// internal/pipeline/score-candidates/models.go
package scorecandidates

import (
	"college-recommender/internal/models"
)

type CandidateInput struct {
	CollegeID           string                      `json:"collegeId"`
	Similarity          float64                     `json:"similarity"`
	College             *models.College             `json:"college"`
	VerificationScore   float64                     `json:"verificationScore"`
	VerificationResults []models.VerificationResult `json:"verificationResults,omitempty"`
}

type Input struct {
	Candidates []CandidateInput        `json:"candidates"`
	Profile    *models.StudentProfile  `json:"profile"`
	Weights    models.PreferenceWeights `json:"weights"`
}

type Output struct {
	Scored []models.ScoredCandidate `json:"scored"`
}
