package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSystemMetrics() {
	r.GoRoutines = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_goroutines",
			Help: "Number of goroutines at the end of the run",
		},
	)

	r.MemoryAllocBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_memory_alloc_bytes",
			Help: "Bytes of allocated heap objects at the end of the run",
		},
	)

	r.MemorySysBytes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "asrel_memory_sys_bytes",
			Help: "Total bytes of memory obtained from the OS",
		},
	)
}
