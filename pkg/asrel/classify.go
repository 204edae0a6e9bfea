package asrel

import (
	"context"
	"slices"
)

// EdgeTable maps every directed edge observed in path order to the
// relationship of that direction.
type EdgeTable struct {
	labels map[Edge]Relationship
}

func newEdgeTable() *EdgeTable {
	return &EdgeTable{labels: make(map[Edge]Relationship)}
}

// Get returns the label stored for e exactly as observed, Undefined on miss.
func (t *EdgeTable) Get(e Edge) Relationship {
	return t.labels[e]
}

// Lookup returns the relationship of u toward v. When only (v, u) was
// observed its label is reversed.
func (t *EdgeTable) Lookup(u, v NodeID) Relationship {
	if r, ok := t.labels[MakeEdge(u, v)]; ok {
		return r
	}
	if r, ok := t.labels[MakeEdge(v, u)]; ok {
		return r.Reverse()
	}
	return Undefined
}

// Len returns the number of labeled directed edges.
func (t *EdgeTable) Len() int {
	return len(t.labels)
}

// Counts returns how many edges carry each label.
func (t *EdgeTable) Counts() map[Relationship]int {
	counts := make(map[Relationship]int)
	for _, r := range t.labels {
		counts[r]++
	}
	return counts
}

// Edges returns the labeled edges in ascending key order.
func (t *EdgeTable) Edges() []Edge {
	out := make([]Edge, 0, len(t.labels))
	for e := range t.labels {
		out = append(out, e)
	}
	slices.Sort(out)
	return out
}

func (t *EdgeTable) set(e Edge, r Relationship) {
	t.labels[e] = r
}

// ClassifyEdges runs Phase 3: every edge (u, v) observed consecutively in an
// eligible path is labeled from transit(u->v) and transit(v->u) using the
// strategy's rule. The label depends only on the finished transit table, so
// chunks can be classified independently.
func ClassifyEdges(ctx context.Context, c *Corpus, transit *TransitTable, strategy Strategy, workers int, obs PhaseObserver) (*EdgeTable, error) {
	runner := newPhaseRunner(c, workers, obs)
	chunks := runner.chunks()

	partial := make([]*EdgeTable, len(chunks))
	for i := range partial {
		partial[i] = newEdgeTable()
	}

	err := runner.run(ctx, PhaseClassify, chunks, func(chunk, i int) error {
		if !c.Eligible(i) {
			return nil
		}
		out := partial[chunk]
		path := c.Path(i)
		for j := 0; j < len(path)-1; j++ {
			e := MakeEdge(path[j], path[j+1])
			if _, done := out.labels[e]; done {
				continue
			}
			rel, err := strategy.Label(transit.Count(e), transit.Count(e.Reverse()))
			if err != nil {
				return &EdgeError{Phase: PhaseClassify, From: c.ASN(e.From()), To: c.ASN(e.To()), Cause: err}
			}
			out.set(e, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	table := newEdgeTable()
	for _, p := range partial {
		for e, r := range p.labels {
			table.set(e, r)
		}
	}
	return table, nil
}
