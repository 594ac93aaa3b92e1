// internal/recommender/service.go

// Package recommender coordinates the recommendation pipeline: retrieve
// candidates, verify their claims, score, rank, truncate. It owns the
// per-session score cache that makes slider-driven re-ranking cheap.
package recommender

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/common/observability"
	"college-recommender/internal/models"
	applyranking "college-recommender/internal/pipeline/apply-ranking"
	retrievecandidates "college-recommender/internal/pipeline/retrieve-candidates"
	scorecandidates "college-recommender/internal/pipeline/score-candidates"
	verifyclaims "college-recommender/internal/pipeline/verify-claims"
)

// Retriever and Verifier are the two network-facing stages; they are
// consumed as interfaces so tests can count and stub their calls.
type Retriever interface {
	Execute(ctx context.Context, input *retrievecandidates.Input) (*retrievecandidates.Output, error)
}

type Verifier interface {
	Execute(ctx context.Context, input *verifyclaims.Input) (*verifyclaims.Output, error)
}

type Config struct {
	SessionTTL  time.Duration
	MaxSessions int
}

type RecommendRequest struct {
	// SessionID optionally resumes an existing session. When the profile
	// fingerprint still matches, the cached run is reused and no network
	// calls are made.
	SessionID string                   `json:"sessionId,omitempty"`
	Profile   *models.StudentProfile   `json:"profile"`
	Weights   models.PreferenceWeights `json:"weights"`
	K         int                      `json:"k,omitempty"`
}

type RerankRequest struct {
	SessionID string                   `json:"sessionId"`
	Weights   models.PreferenceWeights `json:"weights"`
	K         int                      `json:"k,omitempty"`
	// ProfileFingerprint, when set, must match the session's fingerprint.
	// A stale fingerprint is rejected rather than served stale scores.
	ProfileFingerprint string `json:"profileFingerprint,omitempty"`
}

type Recommendation struct {
	SessionID  string                   `json:"sessionId"`
	Candidates []models.ScoredCandidate `json:"candidates"`
}

type Service struct {
	config    Config
	retriever Retriever
	verifier  Verifier
	scorer    *scorecandidates.Handler
	ranker    *applyranking.Handler
	sessions  *sessionStore
	tracer    *observability.Tracer
	obs       *observability.Observability
	logger    logger.Logger
}

func NewService(
	config Config,
	retriever Retriever,
	verifier Verifier,
	scorer *scorecandidates.Handler,
	ranker *applyranking.Handler,
	tracer *observability.Tracer,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		config:    config,
		retriever: retriever,
		verifier:  verifier,
		scorer:    scorer,
		ranker:    ranker,
		sessions:  newSessionStore(config.SessionTTL, config.MaxSessions),
		tracer:    tracer,
		obs:       obs,
		logger:    log.WithFields(map[string]interface{}{"component": "recommender"}),
	}
}

// Recommend runs the full pipeline for a profile and returns the top-k
// ranked candidates with their verification results. The untruncated
// scored list is cached under a fresh session id; a resumed session with
// an unchanged profile skips straight to the re-ranking path.
func (s *Service) Recommend(ctx context.Context, req *RecommendRequest) (*Recommendation, error) {
	start := time.Now()

	rec, err := s.recommend(ctx, req)
	if err != nil {
		metrics.PipelineRunsFailed.WithLabelValues("recommend", string(apperrors.CodeOf(err))).Inc()
		s.obs.RecordRun(ctx, "failed")
		return nil, err
	}

	metrics.PipelineRunsCompleted.WithLabelValues("recommend").Inc()
	s.obs.RecordRun(ctx, "completed")
	s.obs.RecordRunDuration(ctx, time.Since(start), "completed")
	return rec, nil
}

func (s *Service) recommend(ctx context.Context, req *RecommendRequest) (*Recommendation, error) {
	if req == nil || req.Profile == nil {
		return nil, apperrors.NewInvalidProfileError("profile is required")
	}
	if err := req.Profile.Validate(); err != nil {
		return nil, apperrors.NewInvalidProfileError(err.Error())
	}
	if _, err := req.Weights.Normalize(); err != nil {
		return nil, apperrors.NewInvalidWeightsError(err.Error())
	}

	fingerprint := req.Profile.Fingerprint()

	// Unchanged profile on a live session: recombine cached sub-scores,
	// no retrieval, no verification.
	if req.SessionID != "" {
		if sess, ok := s.sessions.get(req.SessionID); ok && sess.fingerprint == fingerprint {
			return s.rerankSession(ctx, sess, req.Weights, req.K)
		}
	}

	ctx, span := s.tracer.StartStage(ctx, "recommend",
		attribute.Int("k", req.K),
	)
	defer span.End()

	retrieved, err := s.runRetrieve(ctx, req)
	if err != nil {
		return nil, err
	}

	verified, err := s.runVerify(ctx, req.Profile, retrieved)
	if err != nil {
		return nil, err
	}

	scored, err := s.runScore(ctx, req, retrieved, verified)
	if err != nil {
		return nil, err
	}

	ranked, err := s.ranker.Execute(ctx, &applyranking.Input{Scored: scored, K: req.K})
	if err != nil {
		return nil, err
	}

	sess := &session{
		id:          uuid.NewString(),
		fingerprint: fingerprint,
		scored:      scored,
	}
	s.sessions.put(sess)

	s.logger.Info("recommendation run completed", map[string]interface{}{
		"sessionId":  sess.id,
		"candidates": len(ranked.Ranked),
	})

	return &Recommendation{SessionID: sess.id, Candidates: ranked.Ranked}, nil
}

// Rerank re-sorts a cached session under new weights. It is safe to call
// while another Recommend is in flight and never performs network calls.
func (s *Service) Rerank(ctx context.Context, req *RerankRequest) (*Recommendation, error) {
	rec, err := s.rerank(ctx, req)
	if err != nil {
		metrics.PipelineRunsFailed.WithLabelValues("rerank", string(apperrors.CodeOf(err))).Inc()
		return nil, err
	}
	metrics.PipelineRunsCompleted.WithLabelValues("rerank").Inc()
	return rec, nil
}

func (s *Service) rerank(ctx context.Context, req *RerankRequest) (*Recommendation, error) {
	if req == nil || req.SessionID == "" {
		return nil, apperrors.NewInvalidRequestError("session id is required")
	}

	sess, ok := s.sessions.get(req.SessionID)
	if !ok {
		return nil, apperrors.NewSessionNotFoundError(req.SessionID)
	}
	if req.ProfileFingerprint != "" && req.ProfileFingerprint != sess.fingerprint {
		// The profile changed since this session was scored; stale
		// sub-scores must not be served.
		return nil, apperrors.NewSessionNotFoundError(req.SessionID)
	}

	return s.rerankSession(ctx, sess, req.Weights, req.K)
}

func (s *Service) rerankSession(ctx context.Context, sess *session, weights models.PreferenceWeights, k int) (*Recommendation, error) {
	out, err := s.ranker.Rerank(ctx, &applyranking.RerankInput{
		Ranked:  sess.scored,
		Weights: weights,
		K:       k,
	})
	if err != nil {
		return nil, err
	}
	return &Recommendation{SessionID: sess.id, Candidates: out.Ranked}, nil
}

func (s *Service) runRetrieve(ctx context.Context, req *RecommendRequest) (*retrievecandidates.Output, error) {
	ctx, span := s.tracer.StartStage(ctx, retrievecandidates.StageName)
	defer span.End()

	return s.retriever.Execute(ctx, &retrievecandidates.Input{
		Profile: req.Profile,
		K:       req.K,
	})
}

func (s *Service) runVerify(ctx context.Context, profile *models.StudentProfile, retrieved *retrievecandidates.Output) (*verifyclaims.Output, error) {
	ctx, span := s.tracer.StartStage(ctx, verifyclaims.StageName,
		attribute.Int("candidates", len(retrieved.Candidates)),
	)
	defer span.End()

	candidates := make([]verifyclaims.CandidateInput, len(retrieved.Candidates))
	for i, c := range retrieved.Candidates {
		candidates[i] = verifyclaims.CandidateInput{CollegeID: c.CollegeID, College: c.College}
	}

	return s.verifier.Execute(ctx, &verifyclaims.Input{
		Candidates: candidates,
		Profile:    profile,
	})
}

func (s *Service) runScore(ctx context.Context, req *RecommendRequest, retrieved *retrievecandidates.Output, verified *verifyclaims.Output) ([]models.ScoredCandidate, error) {
	ctx, span := s.tracer.StartStage(ctx, scorecandidates.StageName)
	defer span.End()

	candidates := make([]scorecandidates.CandidateInput, len(retrieved.Candidates))
	for i, c := range retrieved.Candidates {
		in := scorecandidates.CandidateInput{
			CollegeID:  c.CollegeID,
			Similarity: c.Similarity,
			College:    c.College,
		}
		if v, ok := verified.Verifications[c.CollegeID]; ok {
			in.VerificationScore = v.Confidence
			in.VerificationResults = v.Results
		}
		candidates[i] = in
	}

	out, err := s.scorer.Execute(ctx, &scorecandidates.Input{
		Candidates: candidates,
		Profile:    req.Profile,
		Weights:    req.Weights,
	})
	if err != nil {
		return nil, err
	}
	return out.Scored, nil
}

// SessionCount reports the number of live cached sessions.
func (s *Service) SessionCount() int {
	return s.sessions.len()
}
