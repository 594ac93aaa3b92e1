// internal/models/recommendation.go
package models

import "fmt"

// PreferenceWeights hold the four ranking factors. Weights always sum to 1.0
// after Normalize; every mutation path goes through Normalize before use.
type PreferenceWeights struct {
	Quality   float64 `json:"quality"`
	Trust     float64 `json:"trust"`
	Relevance float64 `json:"relevance"`
	Proximity float64 `json:"proximity"`
}

// Normalize scales the weights to sum to 1.0. All-zero or negative weights
// are rejected rather than silently replaced with defaults.
func (w PreferenceWeights) Normalize() (PreferenceWeights, error) {
	if w.Quality < 0 || w.Trust < 0 || w.Relevance < 0 || w.Proximity < 0 {
		return PreferenceWeights{}, fmt.Errorf("weights must be non-negative")
	}
	total := w.Quality + w.Trust + w.Relevance + w.Proximity
	if total == 0 {
		return PreferenceWeights{}, fmt.Errorf("weights sum to zero")
	}
	return PreferenceWeights{
		Quality:   w.Quality / total,
		Trust:     w.Trust / total,
		Relevance: w.Relevance / total,
		Proximity: w.Proximity / total,
	}, nil
}

// SubScores are the four [0,1] factor scores for one (college, profile)
// pair. They depend only on the college and the profile, never on weights,
// which is what makes weight-only re-ranking cheap.
type SubScores struct {
	Quality   float64 `json:"quality"`
	Trust     float64 `json:"trust"`
	Relevance float64 `json:"relevance"`
	Proximity float64 `json:"proximity"`
}

// Composite combines the cached sub-scores under normalized weights. The
// result stays in [0,1] because the weights sum to 1 and each factor is in
// [0,1].
func (s SubScores) Composite(w PreferenceWeights) float64 {
	return s.Quality*w.Quality + s.Trust*w.Trust + s.Relevance*w.Relevance + s.Proximity*w.Proximity
}

// ScoredCandidate is the ranked output unit handed to the downstream text
// generation collaborator together with the verification results.
type ScoredCandidate struct {
	CollegeID           string               `json:"collegeId"`
	CollegeName         string               `json:"collegeName"`
	Similarity          float64              `json:"similarity"`
	SubScores           SubScores            `json:"subScores"`
	CompositeScore      float64              `json:"compositeScore"`
	VerificationScore   float64              `json:"verificationScore"`
	VerificationResults []VerificationResult `json:"verificationResults,omitempty"`
	Rank                int                  `json:"rank"`
}
