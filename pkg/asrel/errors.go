package asrel

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	ErrInvalidASN          = errors.New("invalid AS identifier")
	ErrInvalidOptions      = errors.New("invalid inference options")
	ErrZeroTransit         = errors.New("observed edge has no transit in either direction")
	ErrMalformedLine       = errors.New("malformed line")
	ErrUnknownRelationship = errors.New("unknown relationship code")
	ErrUnknownVariant      = errors.New("unknown inference variant")
)

// ParseError reports a line of textual input that could not be parsed.
type ParseError struct {
	Source string // Input name (file, URI, "stdin")
	Line   int    // 1-based line number
	Text   string // Offending line content
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %q: %v", e.Source, e.Line, e.Text, e.Cause)
	}
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// EdgeError reports a failure tied to a specific directed edge.
type EdgeError struct {
	Phase Phase
	From  ASN
	To    ASN
	Cause error
}

func (e *EdgeError) Error() string {
	return fmt.Sprintf("%s: edge %s->%s: %v", e.Phase, e.From, e.To, e.Cause)
}

func (e *EdgeError) Unwrap() error {
	return e.Cause
}
