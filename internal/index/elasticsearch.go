package index

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "college-recommender/internal/common/errors"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/models"
)

// ElasticsearchIndex queries the college documents index. Scores from
// Elasticsearch are relative, so each result set is normalized against
// its own max_score before being returned.
type ElasticsearchIndex struct {
	client    *elasticsearch.Client
	indexName string
	logger    logger.Logger
}

func NewElasticsearchIndex(client *elasticsearch.Client, indexName string, log logger.Logger) *ElasticsearchIndex {
	return &ElasticsearchIndex{
		client:    client,
		indexName: indexName,
		logger:    log.WithFields(map[string]interface{}{"component": "candidate-index"}),
	}
}

func (e *ElasticsearchIndex) Search(ctx context.Context, profile *models.StudentProfile, k int) ([]Candidate, error) {
	if e.indexName == "" {
		return nil, apperrors.NewIndexQueryFailedError(fmt.Errorf("index name is not configured"))
	}

	queryBody := buildProfileQuery(profile)
	body, _ := json.Marshal(queryBody)

	from := 0
	req := esapi.SearchRequest{
		Index: []string{e.indexName},
		Body:  strings.NewReader(string(body)),
		From:  &from,
		Size:  &k,
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.NewIndexTimeoutError()
		}
		return nil, apperrors.NewIndexQueryFailedError(fmt.Errorf("search request failed: %w", err))
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, apperrors.NewIndexQueryFailedError(fmt.Errorf("search query failed: %s", res.Status()))
	}

	var r struct {
		Hits struct {
			MaxScore float64 `json:"max_score"`
			Hits     []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, apperrors.NewIndexQueryFailedError(fmt.Errorf("failed to decode search response: %w", err))
	}

	candidates := make([]Candidate, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		candidates = append(candidates, Candidate{
			CollegeID:  hit.ID,
			Similarity: NormalizeScore(hit.Score, r.Hits.MaxScore),
		})
	}

	e.logger.Debug("candidate index query completed", map[string]interface{}{
		"hits": len(candidates),
		"k":    k,
	})

	return candidates, nil
}

// buildProfileQuery maps a student profile onto the index document schema.
// Streams are a hard filter; marks eligibility, budget, and location
// closeness contribute to the score.
func buildProfileQuery(profile *models.StudentProfile) map[string]interface{} {
	mustClauses := []interface{}{}
	shouldClauses := []interface{}{}
	filterClauses := []interface{}{}

	if len(profile.PreferredStreams) > 0 {
		streams := make([]string, len(profile.PreferredStreams))
		for i, s := range profile.PreferredStreams {
			streams[i] = string(s)
		}
		filterClauses = append(filterClauses, map[string]interface{}{
			"terms": map[string]interface{}{"programs.stream": streams},
		})
	}

	// Colleges whose cutoff exceeds the student's marks are not viable.
	mustClauses = append(mustClauses, map[string]interface{}{
		"range": map[string]interface{}{
			"programs.cutoff_percentage": map[string]interface{}{"lte": profile.MarksPercentage},
		},
	})

	if profile.Budget.Max > 0 {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"programs.annual_fees": map[string]interface{}{
					"gte": profile.Budget.Min,
					"lte": profile.Budget.Max,
				},
			},
		})
	}

	if profile.Location != "" {
		shouldClauses = append(shouldClauses, map[string]interface{}{
			"match": map[string]interface{}{
				"location": map[string]interface{}{
					"query": profile.Location,
					"boost": 2.0,
				},
			},
		})
	}

	return map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must":   mustClauses,
				"should": shouldClauses,
				"filter": filterClauses,
			},
		},
	}
}

// NormalizeScore maps a raw Elasticsearch relevance score into [0.0, 1.0]
// relative to the best hit of the same result set.
func NormalizeScore(score, maxScore float64) float64 {
	if maxScore <= 0 {
		return 0
	}
	normalized := score / maxScore
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}
