// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	// RecordsGenerated counts records produced, by entry point (cli, http, worker).
	RecordsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_records_generated_total",
			Help: "Total number of mock records generated",
		},
		[]string{"source"},
	)

	BatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forge_batch_duration_seconds",
			Help:    "Time spent generating one batch",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"source"},
	)

	GenerationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_generation_failures_total",
			Help: "Batches rejected or aborted, by error code",
		},
		[]string{"source", "error_code"},
	)

	SinkDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_sink_deliveries_total",
			Help: "Records handed to a sink, by outcome",
		},
		[]string{"sink", "outcome"},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_http_requests_total",
			Help: "HTTP requests served, by route and status code",
		},
		[]string{"route", "code"},
	)
)

// ObserveSink records the outcome of one sink delivery.
func ObserveSink(sink string, delivered, failed int) {
	if delivered > 0 {
		SinkDeliveries.WithLabelValues(sink, "delivered").Add(float64(delivered))
	}
	if failed > 0 {
		SinkDeliveries.WithLabelValues(sink, "failed").Add(float64(failed))
	}
}
