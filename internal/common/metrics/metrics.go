// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of recommendation runs completed",
		},
		[]string{"mode"},
	)

	PipelineRunsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_failed_total",
			Help: "Total number of recommendation runs failed",
		},
		[]string{"mode", "error_code"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of pipeline stage processing in seconds",
		},
		[]string{"stage"},
	)

	SourceQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_queries_total",
			Help: "Total number of authoritative source queries by outcome",
		},
		[]string{"source", "outcome"},
	)

	ClaimChecks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "claim_checks_total",
			Help: "Total number of claim verifications by resulting status",
		},
		[]string{"field_type", "status"},
	)

	SourceCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_cache_hits_total",
			Help: "Source record cache lookups by result",
		},
		[]string{"result"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_sessions_active",
			Help: "Number of recommendation sessions currently held in memory",
		},
	)
)
