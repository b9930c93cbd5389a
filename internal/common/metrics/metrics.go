// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BidsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_bids_extracted_total",
			Help: "Bids extracted from utterances, by command type",
		},
		[]string{"type"},
	)

	UtterancesUnrecognized = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_utterances_unrecognized_total",
			Help: "Utterances that produced no command, by outcome",
		},
		[]string{"outcome"},
	)

	MalformedEntities = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_malformed_entities_total",
			Help: "Classifier entities dropped because their value could not be used",
		},
	)

	ClassifierRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_classifier_request_duration_seconds",
			Help:    "Duration of classifier calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	ClassifierCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_classifier_cache_lookups_total",
			Help: "Classifier cache lookups by result",
		},
		[]string{"result"},
	)

	RelayForwards = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_relay_forwards_total",
			Help: "Messages forwarded by the relay, by target and status",
		},
		[]string{"target", "status"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_websocket_clients",
			Help: "Number of connected browser clients",
		},
	)

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
)

// Status labels shared by the counters above.
const (
	StatusOK    = "ok"
	StatusError = "error"
)
