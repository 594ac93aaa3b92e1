// internal/pipeline/apply-ranking/models.go
package applyranking

import (
	"college-recommender/internal/models"
)

type Input struct {
	Scored []models.ScoredCandidate `json:"scored"`
	K      int                      `json:"k"`
}

type Output struct {
	Ranked []models.ScoredCandidate `json:"ranked"`
}

type RerankInput struct {
	Ranked  []models.ScoredCandidate `json:"ranked"`
	Weights models.PreferenceWeights `json:"weights"`
	K       int                      `json:"k"`
}
