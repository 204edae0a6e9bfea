package metrics

import (
	"sync"
	"time"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
)

// PhaseRecorder adapts a Registry to asrel.PhaseObserver.
type PhaseRecorder struct {
	registry *Registry

	mu     sync.Mutex
	totals map[asrel.Phase]int
}

// NewPhaseRecorder creates an observer that records phase durations on r.
func NewPhaseRecorder(r *Registry) *PhaseRecorder {
	return &PhaseRecorder{registry: r, totals: make(map[asrel.Phase]int)}
}

func (p *PhaseRecorder) PhaseStarted(phase asrel.Phase, total int) {
	p.mu.Lock()
	p.totals[phase] = total
	p.mu.Unlock()
}

func (p *PhaseRecorder) PhaseProgress(asrel.Phase, int) {}

func (p *PhaseRecorder) PhaseFinished(phase asrel.Phase, elapsed time.Duration) {
	p.mu.Lock()
	total := p.totals[phase]
	p.mu.Unlock()
	p.registry.RecordPhase(phase, total, elapsed)
}
