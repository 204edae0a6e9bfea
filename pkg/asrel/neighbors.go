package asrel

import (
	"context"
	"slices"
)

// NeighborIndex is the undirected adjacency of every AS observed in an
// eligible path. It is symmetric and immutable once built.
type NeighborIndex struct {
	neighbors []map[NodeID]struct{} // indexed by NodeID, nil when never adjacent
	degree    []int
	links     int
}

// BuildNeighborIndex runs Phase 1: for every consecutive pair (u, v) of every
// path with at least MinGraphPathLen nodes, v becomes a neighbor of u and u a
// neighbor of v. This includes u == v.
func BuildNeighborIndex(ctx context.Context, c *Corpus, workers int, obs PhaseObserver) (*NeighborIndex, error) {
	runner := newPhaseRunner(c, workers, obs)
	chunks := runner.chunks()

	// Each chunk collects canonical undirected pairs; the union is taken after
	// the barrier.
	partial := make([]map[Edge]struct{}, len(chunks))
	for i := range partial {
		partial[i] = make(map[Edge]struct{})
	}

	err := runner.run(ctx, PhaseNeighbors, chunks, func(chunk, i int) error {
		if !c.Eligible(i) {
			return nil
		}
		seen := partial[chunk]
		path := c.Path(i)
		for j := 0; j < len(path)-1; j++ {
			seen[undirected(path[j], path[j+1])] = struct{}{}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	idx := &NeighborIndex{
		neighbors: make([]map[NodeID]struct{}, c.NodeCount()),
		degree:    make([]int, c.NodeCount()),
	}
	for _, pairs := range partial {
		for e := range pairs {
			idx.add(e.From(), e.To())
		}
	}
	for id, set := range idx.neighbors {
		idx.degree[id] = len(set)
	}

	return idx, nil
}

// undirected returns the canonical key of the unordered pair {u, v}.
func undirected(u, v NodeID) Edge {
	if u > v {
		u, v = v, u
	}
	return MakeEdge(u, v)
}

// add records the undirected pair {u, v}. A repeated AS (u == v, left by
// prepending) becomes its own neighbor and adds one to its degree.
func (n *NeighborIndex) add(u, v NodeID) {
	if n.Adjacent(u, v) {
		return
	}
	n.links++
	n.link(u, v)
	n.link(v, u)
}

func (n *NeighborIndex) link(u, v NodeID) {
	set := n.neighbors[u]
	if set == nil {
		set = make(map[NodeID]struct{})
		n.neighbors[u] = set
	}
	set[v] = struct{}{}
}

// Degree returns the number of distinct neighbors of id.
func (n *NeighborIndex) Degree(id NodeID) int {
	if int(id) >= len(n.degree) {
		return 0
	}
	return n.degree[id]
}

// Adjacent reports whether u and v were observed next to each other.
func (n *NeighborIndex) Adjacent(u, v NodeID) bool {
	if int(u) >= len(n.neighbors) {
		return false
	}
	_, ok := n.neighbors[u][v]
	return ok
}

// Neighbors returns the neighbors of id in ascending id order.
func (n *NeighborIndex) Neighbors(id NodeID) []NodeID {
	if int(id) >= len(n.neighbors) {
		return nil
	}
	out := make([]NodeID, 0, len(n.neighbors[id]))
	for v := range n.neighbors[id] {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// NodeCount returns the number of ASes with at least one neighbor.
func (n *NeighborIndex) NodeCount() int {
	count := 0
	for _, d := range n.degree {
		if d > 0 {
			count++
		}
	}
	return count
}

// LinkCount returns the number of undirected links, self-links included.
func (n *NeighborIndex) LinkCount() int {
	return n.links
}

// Peak returns the index of the highest-degree node of path. Ties go to the
// first such node scanning left to right.
func (n *NeighborIndex) Peak(path []NodeID) int {
	peak := 0
	best := -1
	for i, id := range path {
		if d := n.Degree(id); d > best {
			best = d
			peak = i
		}
	}
	return peak
}
