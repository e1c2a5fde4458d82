// Package metrics exposes Prometheus collectors for the classification
// service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "leaf"

var (
	// Requests counts /predict outcomes by result kind.
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predict_requests_total",
		Help:      "Prediction requests by outcome.",
	}, []string{"outcome"})

	// Labels counts successful predictions by label.
	Labels = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "predicted_labels_total",
		Help:      "Successful predictions by classifier label.",
	}, []string{"label"})

	// StageDuration tracks time spent in each pipeline stage.
	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Time spent in each pipeline stage.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
	}, []string{"stage"})

	// Artifacts is 1 for each artifact loaded at startup, 0 otherwise.
	Artifacts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "artifact_loaded",
		Help:      "Whether a startup artifact loaded (1) or not (0).",
	}, []string{"artifact"})

	// DatasetRecords is the number of reference records.
	DatasetRecords = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_records",
		Help:      "Number of records in the reference dataset.",
	})
)

// ObserveStage records the time since start for stage.
func ObserveStage(stage string, start time.Time) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// SetArtifact records whether an artifact is available.
func SetArtifact(name string, loaded bool) {
	v := 0.0
	if loaded {
		v = 1
	}
	Artifacts.WithLabelValues(name).Set(v)
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
