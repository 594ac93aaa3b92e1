package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
	"college-recommender/internal/recommender"
)

type fakeService struct {
	recommendFn func(ctx context.Context, req *recommender.RecommendRequest) (*recommender.Recommendation, error)
	rerankFn    func(ctx context.Context, req *recommender.RerankRequest) (*recommender.Recommendation, error)
}

func (f *fakeService) Recommend(ctx context.Context, req *recommender.RecommendRequest) (*recommender.Recommendation, error) {
	return f.recommendFn(ctx, req)
}

func (f *fakeService) Rerank(ctx context.Context, req *recommender.RerankRequest) (*recommender.Recommendation, error) {
	return f.rerankFn(ctx, req)
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleRecommend_Success(t *testing.T) {
	svc := &fakeService{
		recommendFn: func(_ context.Context, req *recommender.RecommendRequest) (*recommender.Recommendation, error) {
			assert.Equal(t, 5, req.K)
			return &recommender.Recommendation{
				SessionID: "sess-1",
				Candidates: []models.ScoredCandidate{
					{CollegeID: "c-001", Rank: 1, CompositeScore: 0.82},
				},
			}, nil
		},
	}
	server := NewServer(svc, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations", map[string]interface{}{
		"profile": map[string]interface{}{
			"marksPercentage":  88,
			"preferredStreams": []string{"engineering"},
			"budget":           map[string]int{"min": 0, "max": 200000},
			"location":         "Delhi",
		},
		"weights": map[string]float64{"quality": 0.4, "trust": 0.2, "relevance": 0.2, "proximity": 0.2},
		"k":       5,
	})

	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header().Get("Content-Type"))

	var body recommender.Recommendation
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "sess-1", body.SessionID)
	require.Len(t, body.Candidates, 1)
	assert.Equal(t, 1, body.Candidates[0].Rank)
}

func TestHandleRecommend_InvalidProfileMapsTo400(t *testing.T) {
	svc := &fakeService{
		recommendFn: func(_ context.Context, _ *recommender.RecommendRequest) (*recommender.Recommendation, error) {
			return nil, apperrors.NewInvalidProfileError("marks percentage 140.00 out of range [0,100]")
		},
	}
	server := NewServer(svc, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations", map[string]interface{}{
		"profile": map[string]interface{}{"marksPercentage": 140},
		"weights": map[string]float64{"quality": 1},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)

	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_PROFILE", body["error"]["code"])
}

func TestHandleRecommend_MalformedBody(t *testing.T) {
	server := NewServer(&fakeService{}, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodPost, "/api/recommendations", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRecommend_UnknownFieldRejected(t *testing.T) {
	server := NewServer(&fakeService{}, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations", map[string]interface{}{
		"profile":  map[string]interface{}{"marksPercentage": 80},
		"weights":  map[string]float64{"quality": 1},
		"surprise": true,
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleRecommend_GetNotAllowed(t *testing.T) {
	server := NewServer(&fakeService{}, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/api/recommendations", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
}

func TestHandleRerank_Success(t *testing.T) {
	svc := &fakeService{
		rerankFn: func(_ context.Context, req *recommender.RerankRequest) (*recommender.Recommendation, error) {
			assert.Equal(t, "sess-1", req.SessionID)
			return &recommender.Recommendation{SessionID: "sess-1"}, nil
		},
	}
	server := NewServer(svc, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations/rerank", map[string]interface{}{
		"sessionId": "sess-1",
		"weights":   map[string]float64{"trust": 1},
	})

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestHandleRerank_MissingSessionID(t *testing.T) {
	server := NewServer(&fakeService{}, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations/rerank", map[string]interface{}{
		"weights": map[string]float64{"trust": 1},
	})

	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandleRerank_SessionNotFoundMapsTo404(t *testing.T) {
	svc := &fakeService{
		rerankFn: func(_ context.Context, req *recommender.RerankRequest) (*recommender.Recommendation, error) {
			return nil, apperrors.NewSessionNotFoundError(req.SessionID)
		},
	}
	server := NewServer(svc, logger.NewTestLogger(t))

	resp := postJSON(t, server.Routes(), "/api/recommendations/rerank", map[string]interface{}{
		"sessionId": "gone",
		"weights":   map[string]float64{"trust": 1},
	})

	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHealthEndpoint(t *testing.T) {
	server := NewServer(&fakeService{}, logger.NewTestLogger(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.Routes().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
