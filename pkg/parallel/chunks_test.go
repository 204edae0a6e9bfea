package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestChunksCoverAllItems(t *testing.T) {
	testCases := []struct {
		n, workers int
	}{
		{1, 1},
		{10, 1},
		{10, 3},
		{7, 16},
		{1000, 8},
		{1001, 7},
	}

	for _, tc := range testCases {
		chunks := Chunks(tc.n, tc.workers)
		next := 0
		for _, c := range chunks {
			if c.Lo != next {
				t.Fatalf("Chunks(%d, %d): gap at %d, chunk starts at %d", tc.n, tc.workers, next, c.Lo)
			}
			if c.Len() <= 0 {
				t.Fatalf("Chunks(%d, %d): empty chunk %+v", tc.n, tc.workers, c)
			}
			next = c.Hi
		}
		if next != tc.n {
			t.Errorf("Chunks(%d, %d) covers [0,%d), want [0,%d)", tc.n, tc.workers, next, tc.n)
		}
		if len(chunks) > tc.workers*ChunksPerWorker {
			t.Errorf("Chunks(%d, %d) produced %d chunks", tc.n, tc.workers, len(chunks))
		}
	}
}

func TestChunksEmpty(t *testing.T) {
	if got := Chunks(0, 4); got != nil {
		t.Errorf("Chunks(0, 4) = %v, want nil", got)
	}
}

func TestChunksZeroWorkers(t *testing.T) {
	chunks := Chunks(10, 0)
	if len(chunks) == 0 || chunks[len(chunks)-1].Hi != 10 {
		t.Errorf("Chunks(10, 0) = %v", chunks)
	}
}

func TestWorkers(t *testing.T) {
	if n, err := Workers(0); err != nil || n < 1 {
		t.Errorf("Workers(0) = %d, %v", n, err)
	}
	if n, err := Workers(3); err != nil || n != 3 {
		t.Errorf("Workers(3) = %d, %v", n, err)
	}
	if _, err := Workers(MaxWorkers + 1); !errors.Is(err, ErrTooManyWorkers) {
		t.Errorf("Workers(MaxWorkers+1) error = %v, want ErrTooManyWorkers", err)
	}
}

func TestForEachChunkVisitsEveryChunk(t *testing.T) {
	chunks := Chunks(1000, 4)
	results := make([]int, len(chunks))

	err := ForEachChunk(context.Background(), chunks, 4, func(ctx context.Context, idx int, r Range) error {
		sum := 0
		for i := r.Lo; i < r.Hi; i++ {
			sum += i
		}
		results[idx] = sum
		return nil
	})
	if err != nil {
		t.Fatalf("ForEachChunk failed: %v", err)
	}

	total := 0
	for _, s := range results {
		total += s
	}
	if want := 999 * 1000 / 2; total != want {
		t.Errorf("sum = %d, want %d", total, want)
	}
}

func TestForEachChunkPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	var calls int64

	err := ForEachChunk(context.Background(), Chunks(100, 1), 1, func(ctx context.Context, idx int, r Range) error {
		atomic.AddInt64(&calls, 1)
		if idx == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
}

func TestForEachChunkRecoversPanic(t *testing.T) {
	err := ForEachChunk(context.Background(), Chunks(4, 2), 2, func(ctx context.Context, idx int, r Range) error {
		if idx == 1 {
			panic("bad chunk")
		}
		return nil
	})
	if !errors.Is(err, ErrTaskPanic) {
		t.Fatalf("error = %v, want ErrTaskPanic", err)
	}
}

func TestForEachChunkCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int64
	err := ForEachChunk(ctx, Chunks(100, 4), 4, func(ctx context.Context, idx int, r Range) error {
		atomic.AddInt64(&calls, 1)
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls on canceled context, got %d", calls)
	}
}
