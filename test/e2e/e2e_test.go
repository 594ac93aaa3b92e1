// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-recommender/internal/api"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/observability"
	"college-recommender/internal/index"
	"college-recommender/internal/models"
	applyranking "college-recommender/internal/pipeline/apply-ranking"
	retrievecandidates "college-recommender/internal/pipeline/retrieve-candidates"
	scorecandidates "college-recommender/internal/pipeline/score-candidates"
	verifyclaims "college-recommender/internal/pipeline/verify-claims"
	"college-recommender/internal/recommender"
	"college-recommender/internal/sources"
)

// memoryIndex serves a fixed candidate list filtered by stream, standing in
// for the Elasticsearch index.
type memoryIndex struct {
	colleges map[string]*models.College
}

func (m *memoryIndex) Search(_ context.Context, profile *models.StudentProfile, k int) ([]index.Candidate, error) {
	similarity := 1.0
	var out []index.Candidate
	for _, id := range []string{"iitd", "dtu", "vit"} {
		college := m.colleges[id]
		matched := false
		for _, p := range college.Programs {
			if profile.HasStream(p.Stream) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		out = append(out, index.Candidate{CollegeID: id, Similarity: similarity})
		similarity -= 0.1
		if len(out) == k {
			break
		}
	}
	return out, nil
}

type memoryStore struct {
	colleges map[string]*models.College
}

func (m *memoryStore) GetColleges(_ context.Context, ids []string) (map[string]*models.College, error) {
	out := make(map[string]*models.College, len(ids))
	for _, id := range ids {
		if c, ok := m.colleges[id]; ok {
			out[id] = c
		}
	}
	return out, nil
}

func fixtureColleges() map[string]*models.College {
	return map[string]*models.College{
		"iitd": {
			ID:            "iitd",
			Name:          "IIT Delhi",
			Type:          models.CollegeGovernment,
			Location:      "Delhi",
			State:         "Delhi",
			Accreditation: []string{"NAAC A++", "NBA"},
			NIRFRank:      2,
			Programs: []models.Program{
				{Name: "B.Tech CSE", Stream: models.StreamEngineering, AnnualFee: 220000, TotalSeats: 120},
			},
			PlacementStats: []models.PlacementStat{
				{Year: 2025, PlacementPercentage: 95, AverageSalary: 1800000},
			},
			MentorRatings: []models.MentorRating{
				{Rating: 4.8, Verified: true},
			},
		},
		"dtu": {
			ID:            "dtu",
			Name:          "Delhi Technological University",
			Type:          models.CollegeGovernment,
			Location:      "Delhi",
			State:         "Delhi",
			Accreditation: []string{"NAAC A+"},
			NIRFRank:      29,
			Programs: []models.Program{
				{Name: "B.Tech IT", Stream: models.StreamEngineering, AnnualFee: 190000, TotalSeats: 180},
			},
			PlacementStats: []models.PlacementStat{
				{Year: 2025, PlacementPercentage: 88, AverageSalary: 1100000},
			},
			MentorRatings: []models.MentorRating{
				{Rating: 4.2, Verified: true},
			},
		},
		"vit": {
			ID:            "vit",
			Name:          "VIT Vellore",
			Type:          models.CollegePrivate,
			Location:      "Vellore",
			State:         "Tamil Nadu",
			Accreditation: []string{"NAAC A++"},
			// Asserted rank is far from what the ranking source reports,
			// so the ranking claim ends up flagged.
			NIRFRank: 5,
			Programs: []models.Program{
				{Name: "B.Tech CSE", Stream: models.StreamEngineering, AnnualFee: 198000, TotalSeats: 460},
			},
			PlacementStats: []models.PlacementStat{
				{Year: 2025, PlacementPercentage: 90, AverageSalary: 900000},
			},
			MentorRatings: []models.MentorRating{
				{Rating: 4.0, Verified: false},
			},
		},
	}
}

func fixtureRegistry() *sources.Registry {
	rankings := sources.NewStaticClientFromRecords("NIRF Rankings", 0.95,
		[]models.FieldType{models.FieldRanking},
		map[string]map[string]interface{}{
			"iitd": {"ranking": 2},
			"dtu":  {"ranking": 29},
			"vit":  {"ranking": 11},
		})

	accreditation := sources.NewStaticClientFromRecords("UGC Accreditation Registry", 0.9,
		[]models.FieldType{models.FieldAccreditation},
		map[string]map[string]interface{}{
			"iitd": {"accreditation": []interface{}{"NAAC A++", "NBA"}},
			"dtu":  {"accreditation": []interface{}{"NAAC A+"}},
			"vit":  {"accreditation": []interface{}{"NAAC A++"}},
		})

	placement := sources.NewStaticClientFromRecords("Placement Audit Bureau", 0.8,
		[]models.FieldType{models.FieldPlacementPercentage, models.FieldAverageSalary},
		map[string]map[string]interface{}{
			"iitd": {"placement_percentage": 95.0, "average_salary": 1800000.0},
			"dtu":  {"placement_percentage": 88.0, "average_salary": 1100000.0},
			"vit":  {"placement_percentage": 90.0, "average_salary": 900000.0},
		})

	seats := sources.NewStaticClientFromRecords("AICTE Approved Institutions", 0.9,
		[]models.FieldType{models.FieldProgramSeats},
		map[string]map[string]interface{}{
			"iitd": {"program_seats": 120},
			"dtu":  {"program_seats": 180},
			"vit":  {"program_seats": 460},
		})

	return sources.NewRegistry().
		Add(rankings, 1).
		Add(accreditation, 2).
		Add(placement, 3).
		Add(seats, 4).
		Build()
}

func newTestService(t *testing.T) *recommender.Service {
	t.Helper()
	log := logger.NewTestLogger(t)
	colleges := fixtureColleges()

	retriever := retrievecandidates.NewHandler(
		retrievecandidates.LoadConfig(),
		&memoryIndex{colleges: colleges},
		&memoryStore{colleges: colleges},
		log,
	)
	verifier := verifyclaims.NewHandler(verifyclaims.LoadConfig(), fixtureRegistry(), log)
	scorer := scorecandidates.NewHandler(scorecandidates.LoadConfig(), log)
	ranker := applyranking.NewHandler(applyranking.LoadConfig(), log)

	tracer, err := observability.NewTracer("e2e-test", "")
	require.NoError(t, err)

	return recommender.NewService(
		recommender.Config{SessionTTL: time.Minute, MaxSessions: 16},
		retriever, verifier, scorer, ranker,
		tracer, &observability.Observability{}, log,
	)
}

func delhiProfile() *models.StudentProfile {
	return &models.StudentProfile{
		MarksPercentage:  91,
		PreferredStreams: []models.Stream{models.StreamEngineering},
		Budget:           models.BudgetRange{Max: 250000},
		Location:         "Delhi",
	}
}

func TestPipeline_DelhiStudentGetsDelhiCollegesFirst(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Recommend(context.Background(), &recommender.RecommendRequest{
		Profile: delhiProfile(),
		Weights: models.PreferenceWeights{Quality: 0.3, Trust: 0.2, Relevance: 0.2, Proximity: 0.3},
		K:       10,
	})
	require.NoError(t, err)
	require.Len(t, rec.Candidates, 3)

	assert.Equal(t, "iitd", rec.Candidates[0].CollegeID)
	assert.Equal(t, 1, rec.Candidates[0].Rank)
	assert.Equal(t, "vit", rec.Candidates[2].CollegeID, "out-of-state college ranks behind local matches")

	for _, c := range rec.Candidates {
		assert.GreaterOrEqual(t, c.CompositeScore, 0.0)
		assert.LessOrEqual(t, c.CompositeScore, 1.0)
	}
}

func TestPipeline_ClaimsVerifiedAgainstSources(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Recommend(context.Background(), &recommender.RecommendRequest{
		Profile: delhiProfile(),
		Weights: models.PreferenceWeights{Quality: 0.25, Trust: 0.25, Relevance: 0.25, Proximity: 0.25},
		K:       10,
	})
	require.NoError(t, err)

	byID := make(map[string]models.ScoredCandidate)
	for _, c := range rec.Candidates {
		byID[c.CollegeID] = c
	}

	// Every IIT Delhi claim matches its source, so verification is strong.
	iitd := byID["iitd"]
	require.NotEmpty(t, iitd.VerificationResults)
	for _, r := range iitd.VerificationResults {
		assert.Equal(t, models.StatusVerified, r.Status, "field %s", r.Claim.FieldType)
	}
	assert.Greater(t, iitd.VerificationScore, 0.8)

	// The VIT asserted rank disagrees with the ranking source.
	vit := byID["vit"]
	var rankingStatus models.VerificationStatus
	for _, r := range vit.VerificationResults {
		if r.Claim.FieldType == models.FieldRanking {
			rankingStatus = r.Status
		}
	}
	assert.Equal(t, models.StatusFlagged, rankingStatus)
	assert.Less(t, vit.VerificationScore, iitd.VerificationScore)
}

func TestPipeline_RerankReordersWithoutNewRetrieval(t *testing.T) {
	svc := newTestService(t)

	rec, err := svc.Recommend(context.Background(), &recommender.RecommendRequest{
		Profile: delhiProfile(),
		Weights: models.PreferenceWeights{Proximity: 1},
		K:       10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Delhi", fixtureColleges()[rec.Candidates[0].CollegeID].Location)

	reranked, err := svc.Rerank(context.Background(), &recommender.RerankRequest{
		SessionID: rec.SessionID,
		Weights:   models.PreferenceWeights{Quality: 1},
		K:         10,
	})
	require.NoError(t, err)
	require.Len(t, reranked.Candidates, 3)

	// Sub-scores are cached per session, so re-ranking is pure arithmetic.
	for i, c := range reranked.Candidates {
		assert.Equal(t, i+1, c.Rank)
		assert.InDelta(t, c.SubScores.Quality, c.CompositeScore, 1e-9)
	}
}

func TestHTTPRoundTrip(t *testing.T) {
	svc := newTestService(t)
	server := httptest.NewServer(api.NewServer(svc, logger.NewTestLogger(t)).Routes())
	defer server.Close()

	payload, err := json.Marshal(map[string]interface{}{
		"profile": map[string]interface{}{
			"marksPercentage":  91,
			"preferredStreams": []string{"engineering"},
			"budget":           map[string]int{"min": 0, "max": 250000},
			"location":         "Delhi",
		},
		"weights": map[string]float64{"quality": 0.3, "trust": 0.2, "relevance": 0.2, "proximity": 0.3},
		"k":       2,
	})
	require.NoError(t, err)

	resp, err := http.Post(server.URL+"/api/recommendations", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rec recommender.Recommendation
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rec))
	assert.NotEmpty(t, rec.SessionID)
	assert.Len(t, rec.Candidates, 2, "k truncates after ranking")

	rerankPayload, err := json.Marshal(map[string]interface{}{
		"sessionId": rec.SessionID,
		"weights":   map[string]float64{"trust": 1},
	})
	require.NoError(t, err)

	rerankResp, err := http.Post(server.URL+"/api/recommendations/rerank", "application/json", bytes.NewReader(rerankPayload))
	require.NoError(t, err)
	defer rerankResp.Body.Close()
	assert.Equal(t, http.StatusOK, rerankResp.StatusCode)
}
