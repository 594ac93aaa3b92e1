// internal/pipeline/score-candidates/handler.go
package scorecandidates

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
)

const StageName = "score-candidates"

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

// Execute computes the four sub-scores and the weighted composite for every
// candidate. Scoring is pure: no side effects, no network, and missing
// optional data maps to neutral defaults rather than errors.
func (h *Handler) Execute(_ context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	if input.Profile == nil {
		return nil, apperrors.NewInvalidProfileError("profile is required")
	}

	weights, err := input.Weights.Normalize()
	if err != nil {
		return nil, apperrors.NewInvalidWeightsError(err.Error())
	}

	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	}()

	scored := make([]models.ScoredCandidate, 0, len(input.Candidates))
	for _, cand := range input.Candidates {
		subScores := h.SubScores(cand.College, input.Profile)
		scored = append(scored, models.ScoredCandidate{
			CollegeID:           cand.CollegeID,
			CollegeName:         cand.College.Name,
			Similarity:          cand.Similarity,
			SubScores:           subScores,
			CompositeScore:      subScores.Composite(weights),
			VerificationScore:   cand.VerificationScore,
			VerificationResults: cand.VerificationResults,
		})
	}

	return &Output{Scored: scored}, nil
}

// SubScores computes the weight-independent factor scores for one
// (college, profile) pair. Callers cache the result; only the weighted
// recombination runs on re-rank.
func (h *Handler) SubScores(college *models.College, profile *models.StudentProfile) models.SubScores {
	return models.SubScores{
		Quality:   h.qualityScore(college),
		Trust:     h.trustScore(college),
		Relevance: h.relevanceScore(college, profile),
		Proximity: h.proximityScore(college, profile),
	}
}

// qualityScore averages the signals the college actually reports:
// accreditation, ranking, most-recent placement percentage and average
// salary. A college reporting nothing scores the neutral default.
func (h *Handler) qualityScore(college *models.College) float64 {
	var sum float64
	var n int

	if len(college.Accreditation) > 0 {
		sum += math.Min(1, float64(len(college.Accreditation))*0.5)
		n++
	}
	if college.NIRFRank > 0 {
		sum += math.Max(0, 1-float64(college.NIRFRank-1)/100)
		n++
	}
	if latest := college.LatestPlacement(); latest != nil {
		sum += clamp01(latest.PlacementPercentage / 100)
		n++
		if latest.AverageSalary > 0 {
			sum += h.salaryScore(latest.AverageSalary)
			n++
		}
	}

	if n == 0 {
		return h.NeutralDefault()
	}
	return sum / float64(n)
}

// salaryScore saturates on a log scale so salaries beyond the ceiling stop
// adding quality.
func (h *Handler) salaryScore(salary float64) float64 {
	if h.config.SalaryCeiling <= 0 {
		return h.NeutralDefault()
	}
	return clamp01(math.Log1p(salary / h.config.SalaryCeiling * (math.E - 1)))
}

// trustScore is the mean of mentor ratings over the full rating count, with
// unverified ratings discounted. Only unverified reviews therefore yield a
// non-zero but conservative score.
func (h *Handler) trustScore(college *models.College) float64 {
	if len(college.MentorRatings) == 0 {
		return h.NeutralDefault()
	}

	var sum float64
	for _, r := range college.MentorRatings {
		value := clamp01(r.Rating / 5)
		if !r.Verified {
			value *= h.config.UnverifiedRatingWeight
		}
		sum += value
	}
	return sum / float64(len(college.MentorRatings))
}

// relevanceScore is the best single program's relevance: stream coverage of
// the profile's preferred streams, zeroed for programs priced outside the
// budget. One good program rescues a college with many irrelevant ones.
func (h *Handler) relevanceScore(college *models.College, profile *models.StudentProfile) float64 {
	if len(profile.PreferredStreams) == 0 || len(college.Programs) == 0 {
		return 0
	}

	collegeStreams := make(map[models.Stream]bool, len(college.Programs))
	for _, p := range college.Programs {
		collegeStreams[p.Stream] = true
	}
	covered := 0
	for _, s := range profile.PreferredStreams {
		if collegeStreams[s] {
			covered++
		}
	}
	coverage := float64(covered) / float64(len(profile.PreferredStreams))

	best := 0.0
	for _, p := range college.Programs {
		if !profile.HasStream(p.Stream) {
			continue
		}
		if !profile.InBudget(p.AnnualFee) {
			continue
		}
		if coverage > best {
			best = coverage
		}
	}
	return best
}

// proximityScore never excludes: exact location match scores 1.0, a
// same-state heuristic match scores the configured constant, anything else
// the floor.
func (h *Handler) proximityScore(college *models.College, profile *models.StudentProfile) float64 {
	if profile.Location == "" {
		return h.config.ProximityFloor
	}

	loc := strings.ToLower(strings.TrimSpace(profile.Location))
	if loc == strings.ToLower(strings.TrimSpace(college.Location)) {
		return 1.0
	}
	if college.State != "" && loc == strings.ToLower(strings.TrimSpace(college.State)) {
		return h.config.ProximitySameState
	}
	if college.District != "" && loc == strings.ToLower(strings.TrimSpace(college.District)) {
		return h.config.ProximitySameState
	}
	return h.config.ProximityFloor
}

func (h *Handler) NeutralDefault() float64 {
	return h.config.NeutralDefault
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
