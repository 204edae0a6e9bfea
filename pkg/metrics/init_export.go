package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initExportMetrics() {
	r.ExportRowsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrel_export_rows_total",
			Help: "Rows written to the results database, by table",
		},
		[]string{"table"},
	)

	r.ExportDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asrel_export_duration_seconds",
			Help:    "Time spent writing a run to the results database",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
	)
}
