package asrel

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ASN is an autonomous-system identifier as it appears in a path.
// It is treated as an opaque key: only equality and hashing are used.
type ASN string

// NodeID is the dense identifier a Corpus assigns to each distinct ASN.
type NodeID uint32

// Edge is a directed pair (u, v) as observed in path order.
type Edge uint64

// MakeEdge packs the directed pair (u, v).
func MakeEdge(u, v NodeID) Edge {
	return Edge(uint64(u)<<32 | uint64(v))
}

// From returns the first node of the pair.
func (e Edge) From() NodeID {
	return NodeID(e >> 32)
}

// To returns the second node of the pair.
func (e Edge) To() NodeID {
	return NodeID(e & 0xffffffff)
}

// Reverse returns (v, u) for an edge (u, v).
func (e Edge) Reverse() Edge {
	return MakeEdge(e.To(), e.From())
}

// Relationship is the commercial relationship of a directed edge.
// For (u, v) labeled ProviderToCustomer, u is the provider and v the customer.
type Relationship uint8

const (
	// Undefined means no relationship is known for the edge
	Undefined Relationship = iota
	// ProviderToCustomer means traffic flows down from provider to customer
	ProviderToCustomer
	// CustomerToProvider means traffic flows up from customer to provider
	CustomerToProvider
	// PeerToPeer is settlement-free peering between comparable networks
	PeerToPeer
	// SiblingToSibling is a mutual-transit relationship
	SiblingToSibling
)

// Relationships lists the defined labels in reporting order.
var Relationships = []Relationship{ProviderToCustomer, CustomerToProvider, PeerToPeer, SiblingToSibling}

// String returns the short label used in reports.
func (r Relationship) String() string {
	switch r {
	case ProviderToCustomer:
		return "P2C"
	case CustomerToProvider:
		return "C2P"
	case PeerToPeer:
		return "P2P"
	case SiblingToSibling:
		return "S2S"
	default:
		return "UNDEF"
	}
}

// ParseRelationship converts a short label back into a Relationship.
func ParseRelationship(s string) (Relationship, error) {
	switch strings.ToUpper(s) {
	case "P2C":
		return ProviderToCustomer, nil
	case "C2P":
		return CustomerToProvider, nil
	case "P2P":
		return PeerToPeer, nil
	case "S2S":
		return SiblingToSibling, nil
	case "UNDEF", "":
		return Undefined, nil
	default:
		return Undefined, fmt.Errorf("unknown relationship %q", s)
	}
}

// Reverse returns the label of the same link seen in the opposite direction.
// Peering and sibling links are symmetric.
func (r Relationship) Reverse() Relationship {
	switch r {
	case ProviderToCustomer:
		return CustomerToProvider
	case CustomerToProvider:
		return ProviderToCustomer
	default:
		return r
	}
}

// Verdict is the valley-free classification of a path.
type Verdict bool

const (
	// Red marks a path that violates the valley-free rule
	Red Verdict = false
	// Green marks a valley-free path
	Green Verdict = true
)

func (v Verdict) String() string {
	if v == Green {
		return "GREEN"
	}
	return "RED"
}

// ParseASN validates a path token and returns it as an ASN.
//
// Tokens must be non-empty and free of whitespace, control characters, and
// the ',' and '|' separators used by the output and ground-truth formats.
// When numeric is set the token must be an asplain or asdot number and is
// canonicalized to asplain decimal.
func ParseASN(token string, numeric bool) (ASN, error) {
	if token == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidASN)
	}
	for _, r := range token {
		if r == ',' || r == '|' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return "", fmt.Errorf("%w: %q contains %q", ErrInvalidASN, token, r)
		}
	}
	if !numeric {
		return ASN(token), nil
	}

	high, low, dotted := strings.Cut(token, ".")
	if !dotted {
		n, err := strconv.ParseUint(token, 10, 32)
		if err != nil {
			return "", fmt.Errorf("%w: %q is not a 32-bit AS number", ErrInvalidASN, token)
		}
		return ASN(strconv.FormatUint(n, 10)), nil
	}

	hi, err := strconv.ParseUint(high, 10, 16)
	if err != nil {
		return "", fmt.Errorf("%w: %q has an invalid asdot high part", ErrInvalidASN, token)
	}
	lo, err := strconv.ParseUint(low, 10, 16)
	if err != nil {
		return "", fmt.Errorf("%w: %q has an invalid asdot low part", ErrInvalidASN, token)
	}
	return ASN(strconv.FormatUint(hi<<16|lo, 10)), nil
}
