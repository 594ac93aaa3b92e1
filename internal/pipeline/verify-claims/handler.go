// internal/pipeline/verify-claims/handler.go
package verifyclaims

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/metrics"
	"college-recommender/internal/models"
	"college-recommender/internal/sources"
)

const StageName = "verify-claims"

var (
	ErrNilInput = errors.New("input cannot be nil")
)

type Handler struct {
	config   *Config
	registry *sources.Registry
	logger   logger.Logger
}

func NewHandler(config *Config, registry *sources.Registry, log logger.Logger) *Handler {
	return &Handler{
		config:   config,
		registry: registry,
		logger:   log.WithFields(map[string]interface{}{"stage": StageName}),
	}
}

// Execute verifies every claim of every candidate against the configured
// authoritative sources. Fan-out is per (candidate, claim) over a bounded
// worker pool; no candidate's verification blocks another's. A source
// failure degrades the affected claim, never the run.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil {
		return nil, ErrNilInput
	}

	start := time.Now()
	defer func() {
		metrics.StageDuration.WithLabelValues(StageName).Observe(time.Since(start).Seconds())
	}()

	output := &Output{Verifications: make(map[string]*CandidateVerification, len(input.Candidates))}

	var items []workItem
	for _, cand := range input.Candidates {
		output.Verifications[cand.CollegeID] = &CandidateVerification{CollegeID: cand.CollegeID}
		for _, claim := range ExtractClaims(cand.College, input.Profile, h.config.MaxSeatClaims) {
			items = append(items, workItem{collegeID: cand.CollegeID, claim: claim})
		}
	}
	if len(items) == 0 {
		return output, nil
	}

	poolSize := h.config.PoolSize
	if poolSize <= 0 {
		poolSize = h.registry.Size()
	}
	if poolSize < 1 {
		poolSize = 1
	}

	jobs := make(chan workItem)
	results := make(chan workResult, len(items))

	var wg sync.WaitGroup
	for i := 0; i < poolSize; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				results <- workResult{
					collegeID: item.collegeID,
					result:    h.verifyClaim(ctx, item.claim),
				}
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
	close(results)

	for res := range results {
		metrics.ClaimChecks.WithLabelValues(string(res.result.Claim.FieldType), string(res.result.Status)).Inc()
		v := output.Verifications[res.collegeID]
		v.Results = append(v.Results, res.result)
	}

	for _, v := range output.Verifications {
		v.Confidence = h.aggregateConfidence(v.Results)
	}

	h.logger.Info("claim verification completed", map[string]interface{}{
		"candidates": len(input.Candidates),
		"claims":     len(items),
		"poolSize":   poolSize,
	})

	return output, nil
}

// verifyClaim drives one claim through its terminal transition. Sources are
// consulted in priority order; the first in-tolerance match wins. Source
// errors and unparseable values count as "did not respond" for this query.
func (h *Handler) verifyClaim(ctx context.Context, claim models.Claim) models.VerificationResult {
	result := models.VerificationResult{
		Claim:     claim,
		CheckedAt: time.Now().UTC(),
	}

	compare, ok := comparators[claim.FieldType]
	clients := h.registry.ForField(claim.FieldType)
	if !ok || len(clients) == 0 {
		result.Status = models.StatusUnverifiable
		return result
	}

	responded := false
	closestSeverity := math.Inf(1)

	for _, client := range clients {
		qctx, cancel := context.WithTimeout(ctx, h.config.SourceTimeout)
		record, err := client.Query(qctx, claim.FieldType, claim.SubjectID)
		cancel()

		if err != nil {
			metrics.SourceQueries.WithLabelValues(client.Name(), "error").Inc()
			h.logger.Warn("source query failed", map[string]interface{}{
				"source":    client.Name(),
				"collegeId": claim.SubjectID,
				"fieldType": claim.FieldType,
				"error":     err.Error(),
			})
			continue
		}
		if record == nil {
			metrics.SourceQueries.WithLabelValues(client.Name(), "no_record").Inc()
			continue
		}

		cmp, err := compare(claim.AssertedValue, record.Value, h.config)
		if err != nil {
			metrics.SourceQueries.WithLabelValues(client.Name(), "malformed").Inc()
			h.logger.Warn("source returned uncomparable value", map[string]interface{}{
				"source":    client.Name(),
				"fieldType": claim.FieldType,
				"error":     err.Error(),
			})
			continue
		}

		metrics.SourceQueries.WithLabelValues(client.Name(), "ok").Inc()
		responded = true

		if cmp.match {
			result.Status = models.StatusVerified
			result.Confidence = record.Reliability
			result.MatchedSource = record.Source
			return result
		}
		if cmp.severity < closestSeverity {
			closestSeverity = cmp.severity
		}
	}

	if !responded {
		result.Status = models.StatusUnverifiable
		return result
	}

	result.Status = models.StatusFlagged
	result.Confidence = 1 - math.Min(1, closestSeverity)
	return result
}

// aggregateConfidence is the importance-weighted mean of claim confidences.
// A candidate with no weighable claims aggregates to zero: nothing was
// verified, so nothing vouches for it.
func (h *Handler) aggregateConfidence(results []models.VerificationResult) float64 {
	var weightedSum, totalWeight float64
	for _, r := range results {
		w := h.config.FieldImportance[r.Claim.FieldType]
		weightedSum += r.Confidence * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return weightedSum / totalWeight
}
