package asrel

import "time"

// Phase names one full pass of the inference pipeline.
type Phase string

const (
	PhaseNeighbors  Phase = "neighbors"   // Phase 1
	PhaseTransit    Phase = "transit"     // Phase 2
	PhaseClassify   Phase = "classify"    // Phase 3
	PhaseNotPeering Phase = "not_peering" // Phase 4.1
	PhasePeering    Phase = "peering"     // Phase 4.2
	PhaseValleyFree Phase = "valley_free"
)

// PhaseObserver receives progress notifications while phases run.
// PhaseProgress reports the number of paths a chunk just finished; it is
// called from worker goroutines, so implementations must be safe for
// concurrent use.
type PhaseObserver interface {
	PhaseStarted(phase Phase, total int)
	PhaseProgress(phase Phase, done int)
	PhaseFinished(phase Phase, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) PhaseStarted(Phase, int)             {}
func (nopObserver) PhaseProgress(Phase, int)            {}
func (nopObserver) PhaseFinished(Phase, time.Duration) {}

// Observers fans notifications out to several observers.
type Observers []PhaseObserver

func (o Observers) PhaseStarted(phase Phase, total int) {
	for _, ob := range o {
		ob.PhaseStarted(phase, total)
	}
}

func (o Observers) PhaseProgress(phase Phase, done int) {
	for _, ob := range o {
		ob.PhaseProgress(phase, done)
	}
}

func (o Observers) PhaseFinished(phase Phase, elapsed time.Duration) {
	for _, ob := range o {
		ob.PhaseFinished(phase, elapsed)
	}
}
