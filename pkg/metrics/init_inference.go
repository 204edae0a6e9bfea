package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initInferenceMetrics() {
	r.InferencePhaseDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "asrel_inference_phase_duration_seconds",
			Help:    "Duration of each inference phase",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"phase"},
	)

	r.InferencePhasePaths = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrel_inference_phase_paths_total",
			Help: "Paths processed by each inference phase",
		},
		[]string{"phase"},
	)

	r.InferenceEdges = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asrel_inference_edges",
			Help: "Directed edges labeled by the last run, by relationship",
		},
		[]string{"relationship"},
	)

	r.InferencePromotedEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_inference_promoted_edges",
			Help: "Edges relabeled peer-to-peer by the degree-ratio heuristic",
		},
	)

	r.InferenceRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrel_inference_runs_total",
			Help: "Inference runs, by variant and outcome",
		},
		[]string{"variant", "status"},
	)

	r.InferenceRunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asrel_inference_run_duration_seconds",
			Help:    "End-to-end duration of an inference run",
			Buckets: []float64{0.1, 1, 5, 15, 60, 300, 900},
		},
	)

	r.InferenceLastRun = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_inference_last_run_timestamp_seconds",
			Help: "Unix time at which the last run completed",
		},
	)
}
