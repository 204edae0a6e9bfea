package asrel

import "context"

// TransitTable records how often traffic was inferred to flow from u toward
// v, keyed by the directed edge (u, v). In boolean mode every recorded edge
// holds 1. The table is read-only after Phase 2.
type TransitTable struct {
	counts  map[Edge]uint32
	counted bool
}

func newTransitTable(counted bool) *TransitTable {
	return &TransitTable{
		counts:  make(map[Edge]uint32),
		counted: counted,
	}
}

// Counted reports whether the table keeps observation counts rather than
// booleans.
func (t *TransitTable) Counted() bool {
	return t.counted
}

// Transits reports whether any transit from e.From() toward e.To() was seen.
func (t *TransitTable) Transits(e Edge) bool {
	return t.counts[e] > 0
}

// Count returns the number of transit observations for e, 0 when absent.
func (t *TransitTable) Count(e Edge) uint32 {
	return t.counts[e]
}

// Len returns the number of directed edges with transit recorded.
func (t *TransitTable) Len() int {
	return len(t.counts)
}

func (t *TransitTable) put(e Edge) {
	if t.counted {
		t.counts[e]++
		return
	}
	t.counts[e] = 1
}

// merge folds another partial table into t: a sum for counted tables and a
// logical OR for boolean ones.
func (t *TransitTable) merge(other *TransitTable) {
	for e, n := range other.counts {
		if t.counted {
			t.counts[e] += n
		} else {
			t.counts[e] = 1
		}
	}
}

// InferTransit runs Phase 2. For each eligible path the highest-degree node is
// taken as the peak: every edge before it transits left to right and every
// edge from it onward transits right to left, so traffic climbs toward the
// peak from both ends.
func InferTransit(ctx context.Context, c *Corpus, idx *NeighborIndex, counted bool, workers int, obs PhaseObserver) (*TransitTable, error) {
	runner := newPhaseRunner(c, workers, obs)
	chunks := runner.chunks()

	partial := make([]*TransitTable, len(chunks))
	for i := range partial {
		partial[i] = newTransitTable(counted)
	}

	err := runner.run(ctx, PhaseTransit, chunks, func(chunk, i int) error {
		if !c.Eligible(i) {
			return nil
		}
		recordTransit(partial[chunk], c.Path(i), idx.Peak(c.Path(i)))
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := newTransitTable(counted)
	for _, p := range partial {
		table.merge(p)
	}
	return table, nil
}

func recordTransit(t *TransitTable, path []NodeID, peak int) {
	for i := 0; i < peak; i++ {
		t.put(MakeEdge(path[i], path[i+1]))
	}
	for i := peak; i < len(path)-1; i++ {
		t.put(MakeEdge(path[i+1], path[i]))
	}
}
