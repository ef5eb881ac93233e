// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_requests_total",
			Help: "Total number of prediction calls by region and outcome",
		},
		[]string{"region", "outcome"},
	)

	PredictionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "prediction_duration_seconds",
			Help:    "Duration of a single prediction call in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"region"},
	)

	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "prediction_batches_total",
			Help: "Total number of batches by terminal status",
		},
		[]string{"status"},
	)

	BatchesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "prediction_batches_active",
			Help: "Number of batches currently running",
		},
	)

	SnapshotOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_operations_total",
			Help: "Total number of snapshot store operations by result",
		},
		[]string{"operation", "result"},
	)
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ResultLabel maps an error to the result label of SnapshotOperations.
func ResultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
