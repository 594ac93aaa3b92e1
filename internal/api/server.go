// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/recommender"
)

// maxBodyBytes caps request bodies. Recommendation requests are small; a
// profile with a handful of streams fits in well under a kilobyte.
const maxBodyBytes = 64 << 10

// RecommendService is the slice of the orchestrator the API needs.
type RecommendService interface {
	Recommend(ctx context.Context, req *recommender.RecommendRequest) (*recommender.Recommendation, error)
	Rerank(ctx context.Context, req *recommender.RerankRequest) (*recommender.Recommendation, error)
}

type Server struct {
	service    RecommendService
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewServer(service RecommendService, log logger.Logger) *Server {
	return &Server{
		service:    service,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the service mux: the two recommendation endpoints plus
// health, metrics and pprof.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/recommendations", s.handleRecommend)
	mux.HandleFunc("/api/recommendations/rerank", s.handleRerank)

	health := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
	mux.HandleFunc("/health", health)
	mux.HandleFunc("/healthz", health)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)

	return mux
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req recommender.RecommendRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.errHandler.WriteError(w, err)
		return
	}

	rec, err := s.service.Recommend(r.Context(), &req)
	if err != nil {
		s.errHandler.WriteError(w, err)
		return
	}

	s.logger.Info("recommendation served", map[string]interface{}{
		"sessionId":  rec.SessionID,
		"candidates": len(rec.Candidates),
	})
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleRerank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req recommender.RerankRequest
	if err := s.decodeBody(w, r, &req); err != nil {
		s.errHandler.WriteError(w, err)
		return
	}
	if req.SessionID == "" {
		s.errHandler.WriteError(w, apperrors.NewInvalidRequestError("sessionId is required"))
		return
	}

	rec, err := s.service.Rerank(r.Context(), &req)
	if err != nil {
		s.errHandler.WriteError(w, err)
		return
	}

	s.logger.Info("rerank served", map[string]interface{}{
		"sessionId":  rec.SessionID,
		"candidates": len(rec.Candidates),
	})
	s.writeJSON(w, http.StatusOK, rec)
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, out interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return apperrors.NewInvalidRequestError("malformed request body: " + err.Error())
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", map[string]interface{}{"error": err.Error()})
	}
}
