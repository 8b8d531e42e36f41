package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes
const (
	OutcomeApplied = "applied"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

var (
	ResolutionsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolutions_generated_total",
			Help: "Total number of resolutions proposed by the resolver",
		},
		[]string{"action"},
	)

	ResolutionsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resolutions_submitted_total",
			Help: "Total number of resolutions sent to the Applications API",
		},
		[]string{"action", "outcome"},
	)

	SubmitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "resolution_submit_duration_seconds",
			Help:    "Duration of a session submission in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	ConflictSessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "conflict_sessions_active",
			Help: "Number of open conflict resolution sessions",
		},
	)
)
