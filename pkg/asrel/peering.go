package asrel

import "context"

// DefaultPeeringRatio is the degree ratio bound R of the peering heuristic.
const DefaultPeeringRatio = 60.0

// NotPeeringSet holds the directed edges excluded from peering promotion.
type NotPeeringSet struct {
	edges map[Edge]struct{}
}

func newNotPeeringSet() *NotPeeringSet {
	return &NotPeeringSet{edges: make(map[Edge]struct{})}
}

// Contains reports whether e was marked as definitely not peering.
func (s *NotPeeringSet) Contains(e Edge) bool {
	_, ok := s.edges[e]
	return ok
}

// Len returns the number of marked edges.
func (s *NotPeeringSet) Len() int {
	return len(s.edges)
}

func (s *NotPeeringSet) put(e Edge) {
	s.edges[e] = struct{}{}
}

// MarkNotPeering runs Phase 4.1. Around each path's peak only the two edges
// touching the peak can be peering links; every other edge is excluded. Of the
// two candidates, the side whose neighbor has the lower degree is excluded as
// well unless either candidate is a sibling link.
//
// A peak at either end of the path has a single adjacent edge and no
// comparison is made for it.
func MarkNotPeering(ctx context.Context, c *Corpus, idx *NeighborIndex, edges *EdgeTable, workers int, obs PhaseObserver) (*NotPeeringSet, error) {
	runner := newPhaseRunner(c, workers, obs)
	chunks := runner.chunks()

	partial := make([]*NotPeeringSet, len(chunks))
	for i := range partial {
		partial[i] = newNotPeeringSet()
	}

	err := runner.run(ctx, PhaseNotPeering, chunks, func(chunk, i int) error {
		if !c.Eligible(i) {
			return nil
		}
		markPath(partial[chunk], c.Path(i), idx, edges)
		return nil
	})
	if err != nil {
		return nil, err
	}

	set := newNotPeeringSet()
	for _, p := range partial {
		for e := range p.edges {
			set.put(e)
		}
	}
	return set, nil
}

func markPath(set *NotPeeringSet, path []NodeID, idx *NeighborIndex, edges *EdgeTable) {
	n := len(path)
	peak := idx.Peak(path)

	for i := 0; i < peak-1; i++ {
		set.put(MakeEdge(path[i], path[i+1]))
	}
	for i := peak + 1; i < n-1; i++ {
		set.put(MakeEdge(path[i], path[i+1]))
	}

	if peak == 0 || peak == n-1 {
		return
	}

	top := path[peak]
	prev, next := path[peak-1], path[peak+1]
	before, after := MakeEdge(prev, top), MakeEdge(top, next)

	if edges.Get(before) == SiblingToSibling || edges.Get(after) == SiblingToSibling {
		return
	}
	if idx.Degree(prev) > idx.Degree(next) {
		set.put(after)
	} else {
		set.put(before)
	}
}

// PromotePeering runs Phase 4.2: every observed edge (u, v) not excluded in
// either direction whose degree ratio deg(u)/deg(v) lies strictly inside
// (1/R, R) is relabeled PeerToPeer. It returns the number of distinct edges
// relabeled.
//
// Promotion is a pure function of the finished neighbor index and exclusion
// set, so chunks only collect candidates and the overwrite happens after the
// barrier.
func PromotePeering(ctx context.Context, c *Corpus, idx *NeighborIndex, notPeering *NotPeeringSet, edges *EdgeTable, ratio float64, workers int, obs PhaseObserver) (int, error) {
	runner := newPhaseRunner(c, workers, obs)
	chunks := runner.chunks()

	partial := make([]map[Edge]struct{}, len(chunks))
	for i := range partial {
		partial[i] = make(map[Edge]struct{})
	}

	err := runner.run(ctx, PhasePeering, chunks, func(chunk, i int) error {
		if !c.Eligible(i) {
			return nil
		}
		path := c.Path(i)
		for j := 0; j < len(path)-1; j++ {
			u, v := path[j], path[j+1]
			e := MakeEdge(u, v)
			if notPeering.Contains(e) || notPeering.Contains(e.Reverse()) {
				continue
			}
			if comparableDegree(idx.Degree(u), idx.Degree(v), ratio) {
				partial[chunk][e] = struct{}{}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	promoted := make(map[Edge]struct{})
	for _, p := range partial {
		for e := range p {
			promoted[e] = struct{}{}
			edges.set(e, PeerToPeer)
		}
	}
	return len(promoted), nil
}

// comparableDegree reports whether 1/R < du/dv < R.
func comparableDegree(du, dv int, ratio float64) bool {
	if dv == 0 {
		return false
	}
	r := float64(du) / float64(dv)
	return 1/ratio < r && r < ratio
}
