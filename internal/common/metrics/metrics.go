// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "build_executions_total",
			Help: "Total number of build executions by final status",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "build_stage_duration_seconds",
			Help: "Duration of pipeline stages in seconds",
		},
		[]string{"stage"},
	)

	StageFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "build_stage_failures_total",
			Help: "Total number of failed pipeline stage attempts",
		},
		[]string{"stage"},
	)

	GuardrailScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "guardrail_validation_score",
			Help:    "Scores produced by the guardrail validation engine",
			Buckets: prometheus.LinearBuckets(0, 10, 12),
		},
	)

	QueuePending = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "build_queue_pending",
			Help: "Number of build requirements waiting in the background queue",
		},
	)

	DrainCycles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "build_queue_drain_cycles_total",
			Help: "Total number of completed queue drain cycles",
		},
	)
)
