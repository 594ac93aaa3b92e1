// internal/pipeline/apply-ranking/handler.go
package applyranking

import (
	"context"
	"errors"
	"sort"
	"time"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
)

const StageName = "apply-ranking"

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	logger logger.Logger
}

func NewHandler(config *Config, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute orders scored candidates and assigns dense, 1-based ranks.
// Identical inputs always produce identical output order: composite score
// descending, then verification confidence descending, then college id
// ascending.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	}()

	ranked := rankAndTruncate(input.Scored, h.k(input.K))
	return &Output{Ranked: ranked}, nil
}

// Rerank recombines cached sub-scores under new weights and re-sorts. It
// never touches the verifier or the index; verification scores and results
// carry over unchanged.
func (h *Handler) Rerank(_ context.Context, input *RerankInput) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	weights, err := input.Weights.Normalize()
	if err != nil {
		return nil, apperrors.NewInvalidWeightsError(err.Error())
	}

	rescored := make([]models.ScoredCandidate, len(input.Ranked))
	copy(rescored, input.Ranked)
	for i := range rescored {
		rescored[i].CompositeScore = rescored[i].SubScores.Composite(weights)
	}

	ranked := rankAndTruncate(rescored, h.k(input.K))
	return &Output{Ranked: ranked}, nil
}

func (h *Handler) k(k int) int {
	if k <= 0 {
		return h.config.DefaultK
	}
	return k
}

func rankAndTruncate(scored []models.ScoredCandidate, k int) []models.ScoredCandidate {
	ranked := make([]models.ScoredCandidate, len(scored))
	copy(ranked, scored)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		if ranked[i].VerificationScore != ranked[j].VerificationScore {
			return ranked[i].VerificationScore > ranked[j].VerificationScore
		}
		return ranked[i].CollegeID < ranked[j].CollegeID
	})

	// Dense ranks: candidates with the same score pair share a rank.
	rank := 0
	for i := range ranked {
		if i == 0 ||
			ranked[i].CompositeScore != ranked[i-1].CompositeScore ||
			ranked[i].VerificationScore != ranked[i-1].VerificationScore {
			rank++
		}
		ranked[i].Rank = rank
	}

	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
