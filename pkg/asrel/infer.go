package asrel

import (
	"context"
	"fmt"

	"github.com/thalespaiva/bgphijack/pkg/parallel"
	"github.com/thalespaiva/bgphijack/pkg/validation"
)

// InferenceOptions configures a classification run
type InferenceOptions struct {
	Variant          Variant
	TransitThreshold int     // L, refined and heuristic variants
	PeeringRatio     float64 // R, heuristic variant
	Workers          int     // 0 = one per CPU
	Observer         PhaseObserver
}

// DefaultInferenceOptions returns the heuristic variant with L = 1 and R = 60.
func DefaultInferenceOptions() InferenceOptions {
	return InferenceOptions{
		Variant:          VariantHeuristic,
		TransitThreshold: 1,
		PeeringRatio:     DefaultPeeringRatio,
	}
}

// Validate rejects options that would produce silently wrong classifications.
func (o InferenceOptions) Validate() error {
	cv := validation.NewConfigValidator("InferenceOptions").
		OneOf("Variant", o.Variant.String(), Variants).
		NonNegative("TransitThreshold", o.TransitThreshold).
		NonNegative("Workers", o.Workers).
		MaxInt("Workers", o.Workers, parallel.MaxWorkers).
		When(o.Variant == VariantHeuristic, func(cv *validation.ConfigValidator) {
			cv.GreaterThanFloat("PeeringRatio", o.PeeringRatio, 1)
		})
	if err := cv.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	return nil
}

// Inference holds every structure built by one run. All fields are read-only
// once Infer returns.
type Inference struct {
	Variant       Variant
	Corpus        *Corpus
	Neighbors     *NeighborIndex
	Transit       *TransitTable
	Relationships *EdgeTable
	NotPeering    *NotPeeringSet // nil unless the heuristic variant ran
	Promoted      int            // edges relabeled PeerToPeer in Phase 4.2

	workers  int
	observer PhaseObserver
}

// Infer runs every phase of the selected variant over the corpus. Phases are
// barriers; a canceled context aborts the run between or inside phases.
func Infer(ctx context.Context, c *Corpus, opts InferenceOptions) (*Inference, error) {
	strategy, err := NewStrategy(opts)
	if err != nil {
		return nil, err
	}
	workers, err := parallel.Workers(opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	obs := opts.Observer
	if obs == nil {
		obs = nopObserver{}
	}

	inf := &Inference{
		Variant:  strategy.Variant(),
		Corpus:   c,
		workers:  workers,
		observer: obs,
	}

	inf.Neighbors, err = BuildNeighborIndex(ctx, c, workers, obs)
	if err != nil {
		return nil, err
	}
	inf.Transit, err = InferTransit(ctx, c, inf.Neighbors, strategy.CountedTransit(), workers, obs)
	if err != nil {
		return nil, err
	}
	inf.Relationships, err = ClassifyEdges(ctx, c, inf.Transit, strategy, workers, obs)
	if err != nil {
		return nil, err
	}

	ratio, peering := strategy.PeeringRatio()
	if !peering {
		return inf, nil
	}
	inf.NotPeering, err = MarkNotPeering(ctx, c, inf.Neighbors, inf.Relationships, workers, obs)
	if err != nil {
		return nil, err
	}
	inf.Promoted, err = PromotePeering(ctx, c, inf.Neighbors, inf.NotPeering, inf.Relationships, ratio, workers, obs)
	if err != nil {
		return nil, err
	}
	return inf, nil
}

// Relationship implements RelationshipLookup over the inferred labels.
// ASes absent from the corpus are Undefined.
func (inf *Inference) Relationship(u, v ASN) Relationship {
	uid, ok := inf.Corpus.ID(u)
	if !ok {
		return Undefined
	}
	vid, ok := inf.Corpus.ID(v)
	if !ok {
		return Undefined
	}
	return inf.Relationships.Lookup(uid, vid)
}

// DegreeOf returns the number of distinct neighbors of asn.
func (inf *Inference) DegreeOf(asn ASN) int {
	id, ok := inf.Corpus.ID(asn)
	if !ok {
		return 0
	}
	return inf.Neighbors.Degree(id)
}

// NeighborsOf returns the neighbors of asn in corpus intern order.
func (inf *Inference) NeighborsOf(asn ASN) []ASN {
	id, ok := inf.Corpus.ID(asn)
	if !ok {
		return nil
	}
	ids := inf.Neighbors.Neighbors(id)
	out := make([]ASN, len(ids))
	for i, n := range ids {
		out[i] = inf.Corpus.ASN(n)
	}
	return out
}

// PathRelationships returns the inferred relationship of every edge of
// corpus path i.
func (inf *Inference) PathRelationships(i int) []Relationship {
	path := inf.Corpus.Path(i)
	if len(path) < 2 {
		return nil
	}
	rels := make([]Relationship, len(path)-1)
	for j := range rels {
		rels[j] = inf.Relationships.Lookup(path[j], path[j+1])
	}
	return rels
}

// Classify returns the valley-free verdict of every corpus path, in order.
func (inf *Inference) Classify(ctx context.Context) ([]Verdict, error) {
	c := inf.Corpus
	runner := newPhaseRunner(c, inf.workers, inf.observer)
	verdicts := make([]Verdict, c.Len())

	err := runner.run(ctx, PhaseValleyFree, runner.chunks(), func(_, i int) error {
		if !c.Eligible(i) {
			verdicts[i] = Green
			return nil
		}
		verdicts[i] = Verdict(IsValleyFree(inf.PathRelationships(i)))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verdicts, nil
}
