package parallel

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ChunksPerWorker controls how finely a corpus is split. More chunks than
// workers keeps workers busy when paths have uneven lengths.
const ChunksPerWorker = 4

// MaxWorkers is the maximum number of workers allowed for a phase.
const MaxWorkers = 1 << 12

// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
var ErrTooManyWorkers = errors.New("worker count exceeds maximum")

// ErrTaskPanic wraps a panic recovered from a chunk function.
var ErrTaskPanic = errors.New("chunk task panicked")

// Range is the half-open interval [Lo, Hi) of item indexes.
type Range struct {
	Lo, Hi int
}

// Len returns the number of items in the range.
func (r Range) Len() int {
	return r.Hi - r.Lo
}

// Workers resolves a configured worker count. Zero or negative means one
// worker per available CPU.
func Workers(requested int) (int, error) {
	if requested <= 0 {
		return runtime.GOMAXPROCS(0), nil
	}
	if requested > MaxWorkers {
		return 0, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, requested, MaxWorkers)
	}
	return requested, nil
}

// Chunks splits n items into contiguous ranges for the given worker count.
// The ranges cover [0, n) in order.
func Chunks(n, workers int) []Range {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}

	// Use int64 to prevent overflow in intermediate calculation
	count := int64(workers) * ChunksPerWorker
	if count > int64(n) {
		count = int64(n)
	}
	size := int((int64(n) + count - 1) / count)

	chunks := make([]Range, 0, count)
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		chunks = append(chunks, Range{Lo: lo, Hi: hi})
	}
	return chunks
}

// ForEachChunk calls fn for every chunk with at most workers calls in flight.
//
// The first error cancels the context passed to the remaining calls and is
// returned. Panics inside fn are recovered and reported as ErrTaskPanic.
// Callers write per-chunk results into slots indexed by idx and merge them
// after ForEachChunk returns, which keeps results independent of scheduling.
func ForEachChunk(ctx context.Context, chunks []Range, workers int, fn func(ctx context.Context, idx int, r Range) error) error {
	if workers <= 0 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, r := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("%w: chunk %d [%d,%d): %v", ErrTaskPanic, i, r.Lo, r.Hi, p)
				}
			}()
			return fn(gctx, i, r)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
