package asrel

import (
	"context"
	"fmt"
	"time"

	"github.com/thalespaiva/bgphijack/pkg/parallel"
)

// ctxCheckInterval is how many paths a chunk processes between context checks.
const ctxCheckInterval = 1024

// phaseRunner executes one corpus pass split into chunks. Each phase returns
// only after every chunk finished, which makes phases strict barriers.
type phaseRunner struct {
	corpus   *Corpus
	workers  int
	observer PhaseObserver
}

func newPhaseRunner(c *Corpus, workers int, obs PhaseObserver) phaseRunner {
	if workers <= 0 {
		workers = 1
	}
	if obs == nil {
		obs = nopObserver{}
	}
	return phaseRunner{corpus: c, workers: workers, observer: obs}
}

// chunks returns the partition used by every phase of the run.
func (r phaseRunner) chunks() []parallel.Range {
	return parallel.Chunks(r.corpus.Len(), r.workers)
}

// run calls fn for every path index of every chunk. fn receives the chunk
// index so it can write into a private result slot.
func (r phaseRunner) run(ctx context.Context, phase Phase, chunks []parallel.Range, fn func(chunk, path int) error) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}

	r.observer.PhaseStarted(phase, r.corpus.Len())
	start := time.Now()

	err := parallel.ForEachChunk(ctx, chunks, r.workers, func(ctx context.Context, idx int, rg parallel.Range) error {
		for i := rg.Lo; i < rg.Hi; i++ {
			if (i-rg.Lo)%ctxCheckInterval == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := fn(idx, i); err != nil {
				return err
			}
		}
		r.observer.PhaseProgress(phase, rg.Len())
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", phase, err)
	}

	r.observer.PhaseFinished(phase, time.Since(start))
	return nil
}
