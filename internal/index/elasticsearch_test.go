package index

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
)

func testProfile() *models.StudentProfile {
	return &models.StudentProfile{
		Age:              18,
		Board:            "CBSE",
		MarksPercentage:  88.5,
		PreferredStreams: []models.Stream{models.StreamEngineering},
		Budget:           models.BudgetRange{Min: 50000, Max: 200000},
		Location:         "Delhi",
	}
}

func newTestIndex(t *testing.T, handler http.HandlerFunc) (*ElasticsearchIndex, *httptest.Server) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
	})
	require.NoError(t, err)

	return NewElasticsearchIndex(client, "colleges", logger.NewTestLogger(t)), srv
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		maxScore float64
		expected float64
	}{
		{"best hit maps to one", 12.5, 12.5, 1.0},
		{"half of max", 5.0, 10.0, 0.5},
		{"zero max score", 3.0, 0.0, 0.0},
		{"negative score clamps to zero", -1.0, 10.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, NormalizeScore(tt.score, tt.maxScore), 1e-9)
		})
	}
}

func TestBuildProfileQuery(t *testing.T) {
	profile := testProfile()
	query := buildProfileQuery(profile)

	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})

	filters := boolQuery["filter"].([]interface{})
	require.Len(t, filters, 1, "stream filter must be present")
	terms := filters[0].(map[string]interface{})["terms"].(map[string]interface{})
	assert.Equal(t, []string{"engineering"}, terms["programs.stream"])

	must := boolQuery["must"].([]interface{})
	require.Len(t, must, 1)
	cutoff := must[0].(map[string]interface{})["range"].(map[string]interface{})["programs.cutoff_percentage"].(map[string]interface{})
	assert.Equal(t, 88.5, cutoff["lte"])

	should := boolQuery["should"].([]interface{})
	assert.Len(t, should, 2, "budget and location clauses expected")
}

func TestBuildProfileQuery_NoLocation(t *testing.T) {
	profile := testProfile()
	profile.Location = ""

	query := buildProfileQuery(profile)
	boolQuery := query["query"].(map[string]interface{})["bool"].(map[string]interface{})
	should := boolQuery["should"].([]interface{})
	assert.Len(t, should, 1, "only the budget clause expected")
}

func TestSearch_NormalizesAgainstMaxScore(t *testing.T) {
	idx, srv := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"hits": {
				"max_score": 8.0,
				"hits": [
					{"_id": "c-001", "_score": 8.0},
					{"_id": "c-002", "_score": 4.0},
					{"_id": "c-003", "_score": 2.0}
				]
			}
		}`))
	})
	defer srv.Close()

	candidates, err := idx.Search(context.Background(), testProfile(), 10)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	assert.Equal(t, "c-001", candidates[0].CollegeID)
	assert.InDelta(t, 1.0, candidates[0].Similarity, 1e-9)
	assert.InDelta(t, 0.5, candidates[1].Similarity, 1e-9)
	assert.InDelta(t, 0.25, candidates[2].Similarity, 1e-9)
}

func TestSearch_EmptyResult(t *testing.T) {
	idx, srv := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"hits": {"max_score": null, "hits": []}}`))
	})
	defer srv.Close()

	candidates, err := idx.Search(context.Background(), testProfile(), 10)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestSearch_ServerError(t *testing.T) {
	idx, srv := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	_, err := idx.Search(context.Background(), testProfile(), 10)
	require.Error(t, err)
}
