// internal/pipeline/retrieve-candidates/handler.go
package retrievecandidates

import (
	"context"
	"errors"
	"time"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/index"
	"college-recommender/internal/store"
)

const StageName = "retrieve-candidates"

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config *Config
	index  index.CandidateIndex
	store  store.CollegeStore
	logger logger.Logger
}

func NewHandler(config *Config, idx index.CandidateIndex, st store.CollegeStore, log logger.Logger) *Handler {
	return &Handler{
		config: config,
		index:  idx,
		store:  st,
		logger: log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute queries the candidate index for top-k hits and joins them with
// full store records. Index hits without a backing record are dropped and
// logged, never fatal.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.Profile == nil {
		return nil, apperrors.NewInvalidProfileError("profile is required")
	}
	if err := input.Profile.Validate(); err != nil {
		return nil, apperrors.NewInvalidProfileError(err.Error())
	}

	k := input.K
	if k <= 0 {
		k = h.config.DefaultK
	}
	if k > h.config.MaxK {
		k = h.config.MaxK
	}

	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	}()

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	hits, err := h.index.Search(ctx, input.Profile, k)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return &Output{Candidates: []Candidate{}}, nil
	}

	// Deduplicate index hits, keeping the first (highest-ranked) occurrence.
	seen := make(map[string]bool, len(hits))
	ids := make([]string, 0, len(hits))
	deduped := make([]index.Candidate, 0, len(hits))
	for _, hit := range hits {
		if seen[hit.CollegeID] {
			continue
		}
		seen[hit.CollegeID] = true
		ids = append(ids, hit.CollegeID)
		deduped = append(deduped, hit)
	}

	colleges, err := h.store.GetColleges(ctx, ids)
	if err != nil {
		return nil, err
	}

	candidates := make([]Candidate, 0, len(deduped))
	dropped := 0
	for _, hit := range deduped {
		college, ok := colleges[hit.CollegeID]
		if !ok {
			dropped++
			h.logger.Warn("dropping candidate without store record", map[string]interface{}{
				"collegeId": hit.CollegeID,
			})
			continue
		}
		candidates = append(candidates, Candidate{
			CollegeID:  hit.CollegeID,
			Similarity: hit.Similarity,
			College:    college,
		})
	}

	h.logger.Info("candidates retrieved", map[string]interface{}{
		"requested": k,
		"retrieved": len(candidates),
		"dropped":   dropped,
	})

	return &Output{Candidates: candidates, Dropped: dropped}, nil
}
