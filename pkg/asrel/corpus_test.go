package asrel

import (
	"strconv"
	"testing"
)

// corpusFromInts builds a corpus from small integer paths, as generated by
// the property tests.
func corpusFromInts(paths [][]int) *Corpus {
	c := NewCorpus()
	for _, p := range paths {
		asns := make([]ASN, len(p))
		for i, n := range p {
			asns[i] = ASN(strconv.Itoa(n))
		}
		c.Append(asns)
	}
	return c
}

func TestCorpus_Interning(t *testing.T) {
	c := CorpusFromStrings(
		[]string{"10", "20", "30"},
		[]string{"30", "20"},
		[]string{"40"},
	)

	if c.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", c.Len())
	}
	if c.NodeCount() != 4 {
		t.Errorf("NodeCount() = %d, want 4", c.NodeCount())
	}

	// ids are assigned in first-appearance order
	for i, asn := range []ASN{"10", "20", "30", "40"} {
		id, ok := c.ID(asn)
		if !ok || id != NodeID(i) {
			t.Errorf("ID(%s) = %d, %v; want %d", asn, id, ok, i)
		}
		if c.ASN(id) != asn {
			t.Errorf("ASN(%d) = %s, want %s", id, c.ASN(id), asn)
		}
	}
	if _, ok := c.ID("99"); ok {
		t.Error("ID(99) should be unknown")
	}

	second := c.Path(1)
	if len(second) != 2 || second[0] != 2 || second[1] != 1 {
		t.Errorf("Path(1) = %v, want [2 1]", second)
	}
}

func TestCorpus_StringAndASNs(t *testing.T) {
	c := CorpusFromStrings([]string{"a", "b", "c"}, []string{"d"})

	if got := c.String(0); got != "a b c" {
		t.Errorf("String(0) = %q", got)
	}
	if got := c.String(1); got != "d" {
		t.Errorf("String(1) = %q", got)
	}
	asns := c.ASNs(0)
	if len(asns) != 3 || asns[2] != "c" {
		t.Errorf("ASNs(0) = %v", asns)
	}
}

func TestCorpus_AppendLine(t *testing.T) {
	c := NewCorpus()
	c.AppendLine([]ASN{"100", "65537"}, "0100 1.1")
	c.Append([]ASN{"100", "7"})

	if got := c.String(0); got != "0100 1.1" {
		t.Errorf("String(0) = %q, want the input line", got)
	}
	if got := c.String(1); got != "100 7" {
		t.Errorf("String(1) = %q", got)
	}
	if c.NodeCount() != 3 {
		t.Errorf("NodeCount() = %d, want 3", c.NodeCount())
	}
}

func TestCorpus_Eligible(t *testing.T) {
	c := CorpusFromStrings(
		[]string{"1"},
		[]string{"1", "2"},
		[]string{"1", "2", "3"},
		[]string{},
	)

	want := []bool{false, false, true, false}
	for i, w := range want {
		if got := c.Eligible(i); got != w {
			t.Errorf("Eligible(%d) = %v, want %v", i, got, w)
		}
	}
	if got := c.Degenerate(); got != 3 {
		t.Errorf("Degenerate() = %d, want 3", got)
	}
}
