package asrel

import "context"

// RelationshipLookup answers the relationship of u toward v, Undefined when
// nothing is known about the pair.
type RelationshipLookup interface {
	Relationship(u, v ASN) Relationship
}

// CheckValleyFree applies the valley-free rule to the relationship sequence of
// a path's edges. After the first ProviderToCustomer edge no edge may be
// CustomerToProvider; after the first PeerToPeer edge no edge may be
// PeerToPeer or CustomerToProvider. Undefined entries impose no constraint.
//
// It returns true and -1 for a valley-free sequence, otherwise false and the
// index of the first offending edge.
func CheckValleyFree(rels []Relationship) (bool, int) {
	p2c, p2p := -1, -1
	for i, r := range rels {
		if r == ProviderToCustomer && p2c < 0 {
			p2c = i
		}
		if r == PeerToPeer && p2p < 0 {
			p2p = i
		}
	}

	if p2c >= 0 {
		for i := p2c + 1; i < len(rels); i++ {
			if rels[i] == CustomerToProvider {
				return false, i
			}
		}
	}
	if p2p >= 0 {
		for i := p2p + 1; i < len(rels); i++ {
			if rels[i] == PeerToPeer || rels[i] == CustomerToProvider {
				return false, i
			}
		}
	}
	return true, -1
}

// IsValleyFree reports whether rels describes a valley-free path.
func IsValleyFree(rels []Relationship) bool {
	ok, _ := CheckValleyFree(rels)
	return ok
}

// EdgeRelationships returns the relationship of every consecutive pair of
// path according to lookup.
func EdgeRelationships(path []ASN, lookup RelationshipLookup) []Relationship {
	if len(path) < 2 {
		return nil
	}
	rels := make([]Relationship, len(path)-1)
	for i := range rels {
		rels[i] = lookup.Relationship(path[i], path[i+1])
	}
	return rels
}

// ValleyFree classifies a path of AS identifiers against any relationship
// source: an inference result or a ground-truth table.
func ValleyFree(path []ASN, lookup RelationshipLookup) Verdict {
	if len(path) < 3 {
		return Green
	}
	return Verdict(IsValleyFree(EdgeRelationships(path, lookup)))
}

// ClassifyCorpus classifies every path of c against lookup and returns the
// verdicts in corpus order.
func ClassifyCorpus(ctx context.Context, c *Corpus, lookup RelationshipLookup, workers int, obs PhaseObserver) ([]Verdict, error) {
	runner := newPhaseRunner(c, workers, obs)
	verdicts := make([]Verdict, c.Len())

	err := runner.run(ctx, PhaseValleyFree, runner.chunks(), func(_, i int) error {
		verdicts[i] = ValleyFree(c.ASNs(i), lookup)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}
