// Package metrics instruments pipeline runs with Prometheus collectors.
//
// Collectors live on a private registry. The CLI can write it out in the
// node_exporter textfile format after a run.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "liftmap"

// Recorder holds the pipeline collectors.
type Recorder struct {
	registry       *prometheus.Registry
	runs           *prometheus.CounterVec
	runDuration    *prometheus.HistogramVec
	exercises      *prometheus.CounterVec
	sourceAttempts *prometheus.CounterVec
	catalogSize    prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs by operation and result status.",
		}, []string{"operation", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of pipeline runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}, []string{"operation"}),
		exercises: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exercises_total",
			Help:      "Exercises processed by operation and outcome.",
		}, []string{"operation", "outcome"}),
		sourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_attempts_total",
			Help:      "Payload fetch attempts by source and result.",
		}, []string{"source", "result", "attempt"}),
		catalogSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "catalog_exercises",
			Help:      "Exercises stored after the last run.",
		}),
	}
	r.registry.MustRegister(r.runs, r.runDuration, r.exercises, r.sourceAttempts, r.catalogSize)
	return r
}

// Registry returns the registry holding the collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Run records a finished run.
func (r *Recorder) Run(operation, status string, d time.Duration) {
	r.runs.WithLabelValues(operation, status).Inc()
	r.runDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Exercises adds n exercises with the given outcome. Zero counts are ignored.
func (r *Recorder) Exercises(operation, outcome string, n int) {
	if n <= 0 {
		return
	}
	r.exercises.WithLabelValues(operation, outcome).Add(float64(n))
}

// SourceAttempt records one fetch attempt.
func (r *Recorder) SourceAttempt(source string, attempt int, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	r.sourceAttempts.WithLabelValues(source, result, strconv.Itoa(attempt)).Inc()
}

// CatalogSize sets the stored exercise count.
func (r *Recorder) CatalogSize(n int) {
	r.catalogSize.Set(float64(n))
}

// WriteTextfile writes every collector to path in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
