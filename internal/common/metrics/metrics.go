// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_requests_received_total",
			Help: "Total number of webhook requests accepted into the pipeline",
		},
	)

	RequestsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_requests_deduplicated_total",
			Help: "Total number of re-delivered requests acknowledged as no-ops",
		},
	)

	RequestsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_requests_completed_total",
			Help: "Total number of requests reaching REPORTED, by ticket status",
		},
		[]string{"status"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of each pipeline stage in seconds",
		},
		[]string{"stage"},
	)

	ExecutorAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_executor_attempts_total",
			Help: "Total handler attempts, by intent and outcome",
		},
		[]string{"intent", "outcome"},
	)

	ReportResends = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_report_resends_total",
			Help: "Total ticket update re-sends after a reporting failure",
		},
	)

	RunsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pipeline_runs_active",
			Help: "Number of requests currently inside the pipeline",
		},
	)
)
