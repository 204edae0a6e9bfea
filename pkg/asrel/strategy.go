package asrel

import (
	"fmt"
	"strings"
)

// Variant selects a member of the classifier family.
type Variant int

const (
	// VariantBasic uses boolean transit and the basic labeling rule
	VariantBasic Variant = iota
	// VariantRefined counts transit and applies the threshold rule
	VariantRefined
	// VariantHeuristic is refined classification followed by peering detection
	VariantHeuristic
)

// Variants lists every variant name accepted by ParseVariant.
var Variants = []string{"basic", "refined", "heuristic"}

func (v Variant) String() string {
	switch v {
	case VariantBasic:
		return "basic"
	case VariantRefined:
		return "refined"
	case VariantHeuristic:
		return "heuristic"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

// ParseVariant converts a variant name into a Variant.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic":
		return VariantBasic, nil
	case "refined":
		return VariantRefined, nil
	case "heuristic", "":
		return VariantHeuristic, nil
	default:
		return 0, fmt.Errorf("%w: %q (want one of %v)", ErrUnknownVariant, s, Variants)
	}
}

// Strategy holds the rules that distinguish the classifier variants. All
// variants share the corpus, the neighbor index and the phase order.
type Strategy interface {
	// Variant identifies the strategy.
	Variant() Variant
	// CountedTransit reports whether Phase 2 counts observations.
	CountedTransit() bool
	// Label classifies an observed edge (u, v) from fwd = transit(u->v) and
	// bwd = transit(v->u). Phase 2 records at least one direction of every
	// observed edge, so fwd == bwd == 0 fails with ErrZeroTransit.
	Label(fwd, bwd uint32) (Relationship, error)
	// PeeringRatio returns the degree ratio bound R when the strategy runs
	// peering detection.
	PeeringRatio() (float64, bool)
}

// NewStrategy builds the strategy described by opts.
func NewStrategy(opts InferenceOptions) (Strategy, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	refined := refinedStrategy{threshold: uint32(opts.TransitThreshold)}
	switch opts.Variant {
	case VariantBasic:
		return basicStrategy{}, nil
	case VariantRefined:
		return refined, nil
	case VariantHeuristic:
		return heuristicStrategy{refinedStrategy: refined, ratio: opts.PeeringRatio}, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownVariant, opts.Variant)
	}
}

type basicStrategy struct{}

func (basicStrategy) Variant() Variant              { return VariantBasic }
func (basicStrategy) CountedTransit() bool          { return false }
func (basicStrategy) PeeringRatio() (float64, bool) { return 0, false }

func (basicStrategy) Label(fwd, bwd uint32) (Relationship, error) {
	switch {
	case fwd == 0 && bwd == 0:
		return Undefined, ErrZeroTransit
	case fwd > 0 && bwd > 0:
		return SiblingToSibling, nil
	case bwd > 0:
		return ProviderToCustomer, nil
	default:
		return CustomerToProvider, nil
	}
}

type refinedStrategy struct {
	threshold uint32 // L
}

func (refinedStrategy) Variant() Variant              { return VariantRefined }
func (refinedStrategy) CountedTransit() bool          { return true }
func (refinedStrategy) PeeringRatio() (float64, bool) { return 0, false }

func (s refinedStrategy) Label(fwd, bwd uint32) (Relationship, error) {
	if fwd == 0 && bwd == 0 {
		return Undefined, ErrZeroTransit
	}
	l := s.threshold
	switch {
	case (fwd > l && bwd > l) || (fwd > 0 && fwd <= l && bwd > 0 && bwd <= l):
		return SiblingToSibling, nil
	case bwd > l || fwd == 0:
		return ProviderToCustomer, nil
	default:
		// fwd > l or bwd == 0: every remaining case
		return CustomerToProvider, nil
	}
}

type heuristicStrategy struct {
	refinedStrategy
	ratio float64 // R
}

func (heuristicStrategy) Variant() Variant { return VariantHeuristic }

func (s heuristicStrategy) PeeringRatio() (float64, bool) { return s.ratio, true }
