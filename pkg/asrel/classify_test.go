package asrel

import (
	"context"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestBasicStrategy_Label(t *testing.T) {
	tests := []struct {
		fwd, bwd uint32
		want     Relationship
	}{
		{1, 1, SiblingToSibling},
		{0, 1, ProviderToCustomer},
		{1, 0, CustomerToProvider},
	}
	s := basicStrategy{}
	for _, tt := range tests {
		got, err := s.Label(tt.fwd, tt.bwd)
		if err != nil {
			t.Fatalf("Label(%d, %d): %v", tt.fwd, tt.bwd, err)
		}
		if got != tt.want {
			t.Errorf("Label(%d, %d) = %v, want %v", tt.fwd, tt.bwd, got, tt.want)
		}
	}

	if _, err := s.Label(0, 0); !errors.Is(err, ErrZeroTransit) {
		t.Errorf("Label(0, 0) error = %v, want ErrZeroTransit", err)
	}
}

func TestRefinedStrategy_Label(t *testing.T) {
	tests := []struct {
		name      string
		threshold uint32
		fwd, bwd  uint32
		want      Relationship
	}{
		{"both above L", 1, 2, 3, SiblingToSibling},
		{"both within L", 1, 1, 1, SiblingToSibling},
		{"only reverse transit", 1, 0, 2, ProviderToCustomer},
		{"reverse above L", 1, 1, 2, ProviderToCustomer},
		{"only forward transit", 1, 2, 0, CustomerToProvider},
		{"forward above L", 1, 2, 1, CustomerToProvider},
		{"single forward observation", 1, 1, 0, CustomerToProvider},
		{"single reverse observation", 1, 0, 1, ProviderToCustomer},
		{"L=3 both within", 3, 3, 2, SiblingToSibling},
		{"L=3 reverse above", 3, 2, 4, ProviderToCustomer},
		{"L=0 both seen", 0, 1, 1, SiblingToSibling},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := refinedStrategy{threshold: tt.threshold}
			got, err := s.Label(tt.fwd, tt.bwd)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Label(%d, %d) with L=%d = %v, want %v", tt.fwd, tt.bwd, tt.threshold, got, tt.want)
			}
		})
	}

	if _, err := (refinedStrategy{threshold: 1}).Label(0, 0); !errors.Is(err, ErrZeroTransit) {
		t.Errorf("Label(0, 0) error = %v, want ErrZeroTransit", err)
	}
}

func TestNewStrategy(t *testing.T) {
	for _, v := range []Variant{VariantBasic, VariantRefined, VariantHeuristic} {
		opts := DefaultInferenceOptions()
		opts.Variant = v
		s, err := NewStrategy(opts)
		if err != nil {
			t.Fatalf("NewStrategy(%v): %v", v, err)
		}
		if s.Variant() != v {
			t.Errorf("Variant() = %v, want %v", s.Variant(), v)
		}
		_, peering := s.PeeringRatio()
		if peering != (v == VariantHeuristic) {
			t.Errorf("%v: PeeringRatio enabled = %v", v, peering)
		}
		if s.CountedTransit() != (v != VariantBasic) {
			t.Errorf("%v: CountedTransit = %v", v, s.CountedTransit())
		}
	}

	opts := DefaultInferenceOptions()
	opts.Variant = Variant(9)
	if _, err := NewStrategy(opts); err == nil {
		t.Error("unknown variant should fail")
	}
}

func TestParseVariant(t *testing.T) {
	tests := map[string]Variant{
		"basic":     VariantBasic,
		"Refined":   VariantRefined,
		"heuristic": VariantHeuristic,
		"":          VariantHeuristic,
	}
	for in, want := range tests {
		got, err := ParseVariant(in)
		if err != nil || got != want {
			t.Errorf("ParseVariant(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseVariant("gao"); !errors.Is(err, ErrUnknownVariant) {
		t.Errorf("ParseVariant(gao) error = %v", err)
	}
}

func classify(t *testing.T, c *Corpus, opts InferenceOptions) *EdgeTable {
	t.Helper()
	strategy, err := NewStrategy(opts)
	if err != nil {
		t.Fatalf("NewStrategy: %v", err)
	}
	idx := buildIndex(t, c, 1)
	transit, err := InferTransit(context.Background(), c, idx, strategy.CountedTransit(), 1, nil)
	if err != nil {
		t.Fatalf("InferTransit: %v", err)
	}
	edges, err := ClassifyEdges(context.Background(), c, transit, strategy, 2, nil)
	if err != nil {
		t.Fatalf("ClassifyEdges: %v", err)
	}
	return edges
}

func TestClassifyEdges_RepeatedTransit(t *testing.T) {
	// Both paths peak at 5, so transit from 6 toward 5 is seen twice and
	// never the other way.
	c := CorpusFromStrings(
		[]string{"1", "5", "6"},
		[]string{"2", "5", "6"},
	)
	opts := DefaultInferenceOptions()
	opts.Variant = VariantRefined
	edges := classify(t, c, opts)

	if got := edges.Get(edgeOf(t, c, "5", "6")); got != ProviderToCustomer {
		t.Errorf("(5,6) = %v, want P2C", got)
	}
	if got := edges.Get(edgeOf(t, c, "1", "5")); got != CustomerToProvider {
		t.Errorf("(1,5) = %v, want C2P", got)
	}
	if edges.Len() != 3 {
		t.Errorf("Len() = %d, want 3", edges.Len())
	}
}

func TestClassifyEdges_OnlyObservedDirections(t *testing.T) {
	c := CorpusFromStrings([]string{"1", "2", "3"})
	opts := DefaultInferenceOptions()
	opts.Variant = VariantBasic
	edges := classify(t, c, opts)

	e12, e21 := edgeOf(t, c, "1", "2"), edgeOf(t, c, "2", "1")
	if edges.Get(e12) != CustomerToProvider {
		t.Errorf("(1,2) = %v, want C2P", edges.Get(e12))
	}
	if edges.Get(e21) != Undefined {
		t.Errorf("(2,1) was never observed, got %v", edges.Get(e21))
	}
	if got := edges.Lookup(e21.From(), e21.To()); got != ProviderToCustomer {
		t.Errorf("Lookup(2,1) = %v, want the reversed P2C", got)
	}
	if got := edges.Lookup(mustID(t, c, "1"), mustID(t, c, "3")); got != Undefined {
		t.Errorf("Lookup(1,3) = %v, want UNDEF", got)
	}

	counts := edges.Counts()
	if counts[CustomerToProvider] != 1 || counts[ProviderToCustomer] != 1 {
		t.Errorf("Counts() = %v", counts)
	}
	keys := edges.Edges()
	if len(keys) != 2 || keys[0] > keys[1] {
		t.Errorf("Edges() = %v, want two keys in ascending order", keys)
	}
}

func TestClassifyEdges_ZeroTransit(t *testing.T) {
	c := CorpusFromStrings([]string{"1", "2", "3"})

	for _, variant := range []Variant{VariantBasic, VariantRefined} {
		t.Run(variant.String(), func(t *testing.T) {
			strategy, err := NewStrategy(InferenceOptions{Variant: variant, TransitThreshold: 1})
			if err != nil {
				t.Fatal(err)
			}

			empty := newTransitTable(strategy.CountedTransit())
			_, err = ClassifyEdges(context.Background(), c, empty, strategy, 1, nil)
			if !errors.Is(err, ErrZeroTransit) {
				t.Fatalf("error = %v, want ErrZeroTransit", err)
			}
			var edgeErr *EdgeError
			if !errors.As(err, &edgeErr) || edgeErr.From != "1" || edgeErr.To != "2" {
				t.Errorf("error should name edge 1->2, got %v", err)
			}
		})
	}
}

func TestClassifyEdges_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	pathsGen := gen.SliceOf(gen.SliceOf(gen.IntRange(0, 10)))

	properties.Property("refined with L=0 labels like basic", prop.ForAll(
		func(paths [][]int) bool {
			c := corpusFromInts(paths)
			basic := classify(t, c, InferenceOptions{Variant: VariantBasic})
			refined := classify(t, c, InferenceOptions{Variant: VariantRefined, TransitThreshold: 0})
			if basic.Len() != refined.Len() {
				return false
			}
			for _, e := range basic.Edges() {
				if basic.Get(e) != refined.Get(e) {
					return false
				}
			}
			return true
		},
		pathsGen,
	))

	properties.Property("every observed edge of an eligible path is labeled", prop.ForAll(
		func(paths [][]int, threshold int) bool {
			c := corpusFromInts(paths)
			edges := classify(t, c, InferenceOptions{Variant: VariantRefined, TransitThreshold: threshold})
			for i := 0; i < c.Len(); i++ {
				if !c.Eligible(i) {
					continue
				}
				p := c.Path(i)
				for j := 0; j < len(p)-1; j++ {
					if edges.Get(MakeEdge(p[j], p[j+1])) == Undefined {
						return false
					}
				}
			}
			return true
		},
		pathsGen,
		gen.IntRange(0, 3),
	))

	properties.TestingRun(t)
}
