package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initCorpusMetrics() {
	r.CorpusLinesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "asrel_corpus_lines_total",
			Help: "Corpus lines read, by outcome",
		},
		[]string{"status"},
	)

	r.CorpusPaths = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_corpus_paths",
			Help: "Paths in the loaded corpus",
		},
	)

	r.CorpusASes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_corpus_ases",
			Help: "Distinct ASes in the loaded corpus",
		},
	)

	r.CorpusLinks = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_corpus_links",
			Help: "Undirected AS links observed in paths of three or more ASes",
		},
	)

	r.CorpusLoadDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "asrel_corpus_load_duration_seconds",
			Help:    "Time spent reading and interning the corpus",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
	)
}
