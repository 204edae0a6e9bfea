package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the application
type Registry struct {
	// Corpus Metrics
	CorpusLinesTotal   *prometheus.CounterVec
	CorpusPaths        prometheus.Gauge
	CorpusASes         prometheus.Gauge
	CorpusLinks        prometheus.Gauge
	CorpusLoadDuration prometheus.Histogram

	// Inference Metrics
	InferencePhaseDuration *prometheus.HistogramVec
	InferencePhasePaths    *prometheus.CounterVec
	InferenceEdges         *prometheus.GaugeVec
	InferencePromotedEdges prometheus.Gauge
	InferenceRunsTotal     *prometheus.CounterVec
	InferenceRunDuration   prometheus.Histogram
	InferenceLastRun       prometheus.Gauge

	// Validation Metrics
	ValidationVerdictsTotal *prometheus.CounterVec
	ValidationNotValleyFree *prometheus.GaugeVec

	// Export Metrics
	ExportRowsTotal *prometheus.CounterVec
	ExportDuration  prometheus.Histogram

	// System Metrics
	GoRoutines       prometheus.Gauge
	MemoryAllocBytes prometheus.Gauge
	MemorySysBytes   prometheus.Gauge

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	r.initCorpusMetrics()
	r.initInferenceMetrics()
	r.initValidationMetrics()
	r.initExportMetrics()
	r.initSystemMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
