package metrics

import (
	"runtime"
	"time"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

// Line outcomes for CorpusLinesTotal.
const (
	LineAccepted  = "accepted"
	LineBlank     = "blank"
	LineMalformed = "malformed"
)

// RecordCorpus records the shape of a freshly loaded corpus
func (r *Registry) RecordCorpus(accepted, blank, malformed int, c *asrel.Corpus, duration time.Duration) {
	r.CorpusLinesTotal.WithLabelValues(LineAccepted).Add(float64(accepted))
	r.CorpusLinesTotal.WithLabelValues(LineBlank).Add(float64(blank))
	r.CorpusLinesTotal.WithLabelValues(LineMalformed).Add(float64(malformed))
	r.CorpusPaths.Set(float64(c.Len()))
	r.CorpusASes.Set(float64(c.NodeCount()))
	r.CorpusLoadDuration.Observe(duration.Seconds())
}

// RecordPhase records one completed inference phase
func (r *Registry) RecordPhase(phase asrel.Phase, paths int, duration time.Duration) {
	r.InferencePhaseDuration.WithLabelValues(string(phase)).Observe(duration.Seconds())
	r.InferencePhasePaths.WithLabelValues(string(phase)).Add(float64(paths))
}

// RecordInference records the labels produced by a run
func (r *Registry) RecordInference(inf *asrel.Inference) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.CorpusLinks.Set(float64(inf.Neighbors.LinkCount()))
	counts := inf.Relationships.Counts()
	for _, rel := range asrel.Relationships {
		r.InferenceEdges.WithLabelValues(rel.String()).Set(float64(counts[rel]))
	}
	r.InferencePromotedEdges.Set(float64(inf.Promoted))
}

// RecordRun records the outcome of a whole run
func (r *Registry) RecordRun(variant, status string, duration time.Duration) {
	r.InferenceRunsTotal.WithLabelValues(variant, status).Inc()
	r.InferenceRunDuration.Observe(duration.Seconds())
	r.InferenceLastRun.Set(float64(time.Now().Unix()))
}

// RecordVerdicts records the valley-free verdicts of a run. mode is
// "inferred" or "ground_truth".
func (r *Registry) RecordVerdicts(mode string, verdicts []asrel.Verdict) {
	var red int
	for _, v := range verdicts {
		if v == asrel.Red {
			red++
		}
	}
	green := len(verdicts) - red
	r.ValidationVerdictsTotal.WithLabelValues(mode, asrel.Green.String()).Add(float64(green))
	r.ValidationVerdictsTotal.WithLabelValues(mode, asrel.Red.String()).Add(float64(red))

	ratio := 0.0
	if len(verdicts) > 0 {
		ratio = float64(red) / float64(len(verdicts))
	}
	r.ValidationNotValleyFree.WithLabelValues(mode).Set(ratio)
}

// RecordExport records rows written to the results database
func (r *Registry) RecordExport(rows map[string]int, duration time.Duration) {
	for table, n := range rows {
		r.ExportRowsTotal.WithLabelValues(table).Add(float64(n))
	}
	r.ExportDuration.Observe(duration.Seconds())
}

// UpdateSystemMetrics snapshots Go runtime metrics
func (r *Registry) UpdateSystemMetrics() {
	r.GoRoutines.Set(float64(runtime.NumGoroutine()))

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	r.MemoryAllocBytes.Set(float64(m.Alloc))
	r.MemorySysBytes.Set(float64(m.Sys))
}
