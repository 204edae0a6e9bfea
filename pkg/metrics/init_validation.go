package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initValidationMetrics() {
	r.ValidationVerdictsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrel_validation_verdicts_total",
			Help: "Valley-free verdicts, by relationship source and verdict",
		},
		[]string{"mode", "verdict"},
	)

	r.ValidationNotValleyFree = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "asrel_validation_not_valley_free_ratio",
			Help: "Share of paths of the last run that are not valley-free",
		},
		[]string{"mode"},
	)
}
