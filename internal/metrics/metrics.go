// Package metrics holds the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabdrill_sessions_started_total",
			Help: "Study sessions started, by style and direction",
		},
		[]string{"style", "direction"},
	)

	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabdrill_sessions_completed_total",
			Help: "Study sessions that reached the summary, by style",
		},
		[]string{"style"},
	)

	AnswersChecked = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vocabdrill_answers_checked_total",
			Help: "Typed answers checked, by verdict",
		},
		[]string{"verdict"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vocabdrill_active_sessions",
			Help: "Study sessions currently held in memory",
		},
	)

	WordSourceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocabdrill_word_source_duration_seconds",
			Help:    "Time spent loading words, by source kind and outcome",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vocabdrill_http_request_duration_seconds",
			Help:    "HTTP request latency, by method and status",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "status"},
	)
)
