package asrel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingObserver collects phase notifications.
type recordingObserver struct {
	mu       sync.Mutex
	started  []Phase
	done     map[Phase]int
	finished []Phase
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{done: make(map[Phase]int)}
}

func (o *recordingObserver) PhaseStarted(phase Phase, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, phase)
}

func (o *recordingObserver) PhaseProgress(phase Phase, done int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.done[phase] += done
}

func (o *recordingObserver) PhaseFinished(phase Phase, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, phase)
}

// syntheticCorpus builds a layered topology: tier-1 cores, mid-tier
// transits and stubs, with paths climbing from a stub to a core and down.
func syntheticCorpus(n int) *Corpus {
	c := NewCorpus()
	for i := 0; i < n; i++ {
		src := fmt.Sprintf("%d", 1000+i%97)
		up := fmt.Sprintf("%d", 100+i%13)
		core := fmt.Sprintf("%d", 1+i%3)
		core2 := fmt.Sprintf("%d", 1+(i+1)%3)
		down := fmt.Sprintf("%d", 100+(i*7)%13)
		dst := fmt.Sprintf("%d", 1000+(i*31)%97)
		c.Append([]ASN{ASN(src), ASN(up), ASN(core), ASN(core2), ASN(down), ASN(dst)})
	}
	return c
}

func TestInfer_Phases(t *testing.T) {
	tests := []struct {
		variant Variant
		phases  []Phase
	}{
		{VariantBasic, []Phase{PhaseNeighbors, PhaseTransit, PhaseClassify}},
		{VariantRefined, []Phase{PhaseNeighbors, PhaseTransit, PhaseClassify}},
		{VariantHeuristic, []Phase{PhaseNeighbors, PhaseTransit, PhaseClassify, PhaseNotPeering, PhasePeering}},
	}
	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			c := syntheticCorpus(500)
			obs := newRecordingObserver()
			opts := DefaultInferenceOptions()
			opts.Variant = tt.variant
			opts.Workers = 4
			opts.Observer = obs

			inf, err := Infer(context.Background(), c, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.variant, inf.Variant)
			assert.Equal(t, tt.phases, obs.started)
			assert.Equal(t, tt.phases, obs.finished)
			for _, phase := range tt.phases {
				assert.Equal(t, c.Len(), obs.done[phase], "progress of %s", phase)
			}
			assert.Equal(t, tt.variant == VariantHeuristic, inf.NotPeering != nil)
		})
	}
}

func TestInfer_Deterministic(t *testing.T) {
	for _, variant := range []Variant{VariantBasic, VariantRefined, VariantHeuristic} {
		t.Run(variant.String(), func(t *testing.T) {
			c := syntheticCorpus(2000)
			run := func(workers int) (*Inference, []Verdict) {
				opts := DefaultInferenceOptions()
				opts.Variant = variant
				opts.Workers = workers
				inf, err := Infer(context.Background(), c, opts)
				require.NoError(t, err)
				verdicts, err := inf.Classify(context.Background())
				require.NoError(t, err)
				return inf, verdicts
			}

			one, v1 := run(1)
			many, v8 := run(8)

			require.Equal(t, one.Relationships.Edges(), many.Relationships.Edges())
			for _, e := range one.Relationships.Edges() {
				require.Equal(t, one.Relationships.Get(e), many.Relationships.Get(e))
			}
			assert.Equal(t, one.Promoted, many.Promoted)
			assert.Equal(t, v1, v8)
		})
	}
}

func TestInfer_PrependedPath(t *testing.T) {
	// 2 is prepended, so it counts itself as a neighbor and ties 3 for the
	// peak of the first path
	c := CorpusFromStrings(
		[]string{"1", "2", "2", "3"},
		[]string{"5", "3", "6"},
	)
	opts := DefaultInferenceOptions()
	opts.Variant = VariantBasic

	inf, err := Infer(context.Background(), c, opts)
	require.NoError(t, err)

	degrees := map[ASN]int{"1": 1, "2": 3, "3": 3, "5": 1, "6": 1}
	for asn, want := range degrees {
		assert.Equal(t, want, inf.Neighbors.Degree(mustID(t, c, asn)), "degree of %s", asn)
	}
	assert.Equal(t, 1, inf.Neighbors.Peak(c.Path(0)))

	assert.True(t, inf.Transit.Transits(edgeOf(t, c, "2", "2")))
	assert.True(t, inf.Transit.Transits(edgeOf(t, c, "3", "2")))
	assert.False(t, inf.Transit.Transits(edgeOf(t, c, "2", "3")))

	labels := map[[2]ASN]Relationship{
		{"1", "2"}: CustomerToProvider,
		{"2", "2"}: SiblingToSibling,
		{"2", "3"}: ProviderToCustomer,
		{"5", "3"}: CustomerToProvider,
		{"3", "6"}: ProviderToCustomer,
	}
	for pair, want := range labels {
		assert.Equal(t, want, inf.Relationships.Get(edgeOf(t, c, pair[0], pair[1])), "label of %s->%s", pair[0], pair[1])
	}
	assert.Equal(t, map[Relationship]int{
		CustomerToProvider: 2,
		ProviderToCustomer: 2,
		SiblingToSibling:   1,
	}, inf.Relationships.Counts())

	verdicts, err := inf.Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Verdict{Green, Green}, verdicts)
}

func TestInfer_InvalidOptions(t *testing.T) {
	c := CorpusFromStrings([]string{"1", "2", "3"})
	tests := []struct {
		name string
		opts InferenceOptions
	}{
		{"negative threshold", InferenceOptions{Variant: VariantRefined, TransitThreshold: -1}},
		{"ratio of one", InferenceOptions{Variant: VariantHeuristic, TransitThreshold: 1, PeeringRatio: 1}},
		{"ratio below one", InferenceOptions{Variant: VariantHeuristic, TransitThreshold: 1, PeeringRatio: 0.5}},
		{"negative workers", InferenceOptions{Variant: VariantBasic, Workers: -1}},
		{"too many workers", InferenceOptions{Variant: VariantBasic, Workers: 1 << 20}},
		{"unknown variant", InferenceOptions{Variant: Variant(7)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Infer(context.Background(), c, tt.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}

	// the peering ratio only matters to the heuristic variant
	_, err := Infer(context.Background(), c, InferenceOptions{Variant: VariantRefined, TransitThreshold: 1})
	assert.NoError(t, err)
}

func TestInfer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Infer(ctx, syntheticCorpus(10), DefaultInferenceOptions())
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestInference_Queries(t *testing.T) {
	c := CorpusFromStrings(
		[]string{"1", "2", "3"},
		[]string{"4", "2", "3"},
		[]string{"7"},
	)
	inf, err := Infer(context.Background(), c, InferenceOptions{Variant: VariantBasic})
	require.NoError(t, err)

	assert.Equal(t, CustomerToProvider, inf.Relationship("1", "2"))
	assert.Equal(t, ProviderToCustomer, inf.Relationship("2", "1"))
	assert.Equal(t, ProviderToCustomer, inf.Relationship("2", "3"))
	assert.Equal(t, Undefined, inf.Relationship("1", "3"))
	assert.Equal(t, Undefined, inf.Relationship("1", "99"))

	assert.Equal(t, 3, inf.DegreeOf("2"))
	assert.Equal(t, 0, inf.DegreeOf("7"))
	assert.Equal(t, 0, inf.DegreeOf("99"))
	assert.Equal(t, []ASN{"1", "3", "4"}, inf.NeighborsOf("2"))
	assert.Nil(t, inf.NeighborsOf("99"))

	assert.Equal(t, []Relationship{CustomerToProvider, ProviderToCustomer}, inf.PathRelationships(1))
	assert.Nil(t, inf.PathRelationships(2))

	verdicts, err := inf.Classify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Verdict{Green, Green, Green}, verdicts)
}
