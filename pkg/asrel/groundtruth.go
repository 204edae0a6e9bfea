package asrel

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Ground-truth relationship codes: "AS1|AS2|code".
const (
	CodeProviderToCustomer = -1
	CodePeerToPeer         = 0
	CodeSiblingToSibling   = 1
)

type asPair struct {
	a, b ASN
}

// GroundTruthGraph is an authoritative table of AS-pair relationships. Each
// pair is stored in the direction it was listed; lookups in the other
// direction reverse the label. It is immutable after loading.
type GroundTruthGraph struct {
	pairs map[asPair]Relationship
}

// GroundTruthOptions configures LoadGroundTruth.
type GroundTruthOptions struct {
	Source       string // name used in parse errors
	NumericASNs  bool   // canonicalize asplain/asdot identifiers
	MaxLineBytes int
}

// NewGroundTruthGraph creates an empty table.
func NewGroundTruthGraph() *GroundTruthGraph {
	return &GroundTruthGraph{pairs: make(map[asPair]Relationship)}
}

// Add records the relationship of a toward b. A later entry for the same
// ordered pair replaces the earlier one.
func (g *GroundTruthGraph) Add(a, b ASN, rel Relationship) {
	g.pairs[asPair{a, b}] = rel
}

// Len returns the number of stored pairs.
func (g *GroundTruthGraph) Len() int {
	return len(g.pairs)
}

// Lookup returns the relationship of u toward v and whether the table knows
// the pair at all.
func (g *GroundTruthGraph) Lookup(u, v ASN) (Relationship, bool) {
	if r, ok := g.pairs[asPair{u, v}]; ok {
		return r, true
	}
	if r, ok := g.pairs[asPair{v, u}]; ok {
		return r.Reverse(), true
	}
	return Undefined, false
}

// Relationship implements RelationshipLookup. Unknown pairs are Undefined.
func (g *GroundTruthGraph) Relationship(u, v ASN) Relationship {
	r, _ := g.Lookup(u, v)
	return r
}

// RelationshipFromCode maps a ground-truth code to a Relationship.
func RelationshipFromCode(code string) (Relationship, error) {
	switch strings.TrimSpace(code) {
	case "-1":
		return ProviderToCustomer, nil
	case "0":
		return PeerToPeer, nil
	case "1":
		return SiblingToSibling, nil
	default:
		return Undefined, fmt.Errorf("%w: %q", ErrUnknownRelationship, code)
	}
}

// LoadGroundTruth parses "AS1|AS2|code" lines. A fourth source column, blank
// lines and '#' comments are accepted. Any other malformed line fails the
// load: the table is authoritative and partial tables give silently wrong
// verdicts.
func LoadGroundTruth(r io.Reader, opts GroundTruthOptions) (*GroundTruthGraph, error) {
	g := NewGroundTruthGraph()

	scanner := bufio.NewScanner(r)
	if opts.MaxLineBytes > 0 {
		scanner.Buffer(make([]byte, 0, 64*1024), opts.MaxLineBytes)
	}

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}

		a, b, rel, err := parseGroundTruthLine(text, opts.NumericASNs)
		if err != nil {
			return nil, &ParseError{Source: opts.Source, Line: line, Text: text, Cause: err}
		}
		g.Add(a, b, rel)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ground truth %s: %w", opts.Source, err)
	}

	return g, nil
}

func parseGroundTruthLine(text string, numeric bool) (ASN, ASN, Relationship, error) {
	fields := strings.Split(text, "|")
	if len(fields) < 3 {
		return "", "", Undefined, fmt.Errorf("%w: want AS1|AS2|code, got %d fields", ErrMalformedLine, len(fields))
	}

	a, err := ParseASN(strings.TrimSpace(fields[0]), numeric)
	if err != nil {
		return "", "", Undefined, err
	}
	b, err := ParseASN(strings.TrimSpace(fields[1]), numeric)
	if err != nil {
		return "", "", Undefined, err
	}
	rel, err := RelationshipFromCode(fields[2])
	if err != nil {
		return "", "", Undefined, err
	}
	return a, b, rel, nil
}
