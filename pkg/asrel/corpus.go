package asrel

import "strings"

// MinGraphPathLen is the shortest path that contributes edges to the graph.
// Shorter paths are kept for classification but carry no adjacency
// information.
const MinGraphPathLen = 3

// Corpus is the ordered, in-memory collection of paths for one run.
//
// Tokens are interned into dense NodeIDs in first-appearance order, so the
// same input always yields the same ids. A Corpus is built once by Append
// calls and must not be modified after the first phase starts.
type Corpus struct {
	names []ASN
	ids   map[ASN]NodeID
	paths [][]NodeID
	texts []string // input line per path, "" when built from tokens
}

// NewCorpus creates an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{
		ids: make(map[ASN]NodeID),
	}
}

// CorpusFromStrings builds a corpus from token slices.
func CorpusFromStrings(paths ...[]string) *Corpus {
	c := NewCorpus()
	for _, p := range paths {
		asns := make([]ASN, len(p))
		for i, tok := range p {
			asns[i] = ASN(tok)
		}
		c.Append(asns)
	}
	return c
}

// Append adds a path and returns its index.
func (c *Corpus) Append(path []ASN) int {
	return c.AppendLine(path, "")
}

// AppendLine adds a path parsed from text. String returns text unchanged, so
// results echo the input even when tokens were canonicalized.
func (c *Corpus) AppendLine(path []ASN, text string) int {
	ids := make([]NodeID, len(path))
	for i, asn := range path {
		ids[i] = c.intern(asn)
	}
	c.paths = append(c.paths, ids)
	c.texts = append(c.texts, text)
	return len(c.paths) - 1
}

func (c *Corpus) intern(asn ASN) NodeID {
	if id, ok := c.ids[asn]; ok {
		return id
	}
	id := NodeID(len(c.names))
	c.names = append(c.names, asn)
	c.ids[asn] = id
	return id
}

// Len returns the number of paths.
func (c *Corpus) Len() int {
	return len(c.paths)
}

// NodeCount returns the number of distinct ASes seen in any path.
func (c *Corpus) NodeCount() int {
	return len(c.names)
}

// Path returns the interned path at index i. Callers must not modify it.
func (c *Corpus) Path(i int) []NodeID {
	return c.paths[i]
}

// ASNs returns the path at index i as AS identifiers.
func (c *Corpus) ASNs(i int) []ASN {
	p := c.paths[i]
	out := make([]ASN, len(p))
	for j, id := range p {
		out[j] = c.names[id]
	}
	return out
}

// String returns the input line of path i, or its tokens joined with single
// spaces when it was added without one.
func (c *Corpus) String(i int) string {
	if text := c.texts[i]; text != "" {
		return text
	}
	var b strings.Builder
	for j, id := range c.paths[i] {
		if j > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(c.names[id]))
	}
	return b.String()
}

// ASN returns the identifier for an interned node.
func (c *Corpus) ASN(id NodeID) ASN {
	return c.names[id]
}

// ID returns the interned id of asn, if it occurs in the corpus.
func (c *Corpus) ID(asn ASN) (NodeID, bool) {
	id, ok := c.ids[asn]
	return id, ok
}

// Eligible reports whether path i contributes edges to the graph.
func (c *Corpus) Eligible(i int) bool {
	return len(c.paths[i]) >= MinGraphPathLen
}

// Degenerate returns the number of paths too short to contribute edges.
func (c *Corpus) Degenerate() int {
	n := 0
	for i := range c.paths {
		if !c.Eligible(i) {
			n++
		}
	}
	return n
}
