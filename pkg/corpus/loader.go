package corpus

import (
	"bufio"
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode"

	"golang.org/x/crypto/blake2b"

	"github.com/thalespaiva/bgphijack/pkg/asrel"
	"github.com/thalespaiva/bgphijack/pkg/logging"
)

// DefaultMaxLineBytes is the longest accepted corpus line.
const DefaultMaxLineBytes = 1 << 20

// LoadOptions configures Load.
type LoadOptions struct {
	Source       string // name used in logs and parse errors
	NumericASNs  bool
	MaxLineBytes int

	// OnMalformed is called for every skipped line. The default logs it at
	// WARN.
	OnMalformed func(err *asrel.ParseError)
}

// LoadStats summarizes one Load call.
type LoadStats struct {
	Lines      int // lines read, including blank and malformed ones
	Paths      int // paths added to the corpus
	Degenerate int // accepted paths with fewer than three ASes
	Malformed  int
	Blank      int
	Digest     string // hex BLAKE2b-256 of the raw input, set when the load completes
}

// ParseLine splits a space-separated path line into ASNs.
func ParseLine(text string, numeric bool) ([]asrel.ASN, error) {
	tokens := strings.Split(text, " ")
	path := make([]asrel.ASN, len(tokens))
	for i, tok := range tokens {
		asn, err := asrel.ParseASN(tok, numeric)
		if err != nil {
			return nil, fmt.Errorf("%w: token %d: %w", asrel.ErrMalformedLine, i+1, err)
		}
		path[i] = asn
	}
	return path, nil
}

// Load reads newline-delimited paths into a fresh corpus. Malformed lines
// are reported and skipped; only read failures and cancellation abort.
func Load(ctx context.Context, r io.Reader, opts LoadOptions, logger logging.Logger) (*asrel.Corpus, LoadStats, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	maxLine := opts.MaxLineBytes
	if maxLine <= 0 {
		maxLine = DefaultMaxLineBytes
	}
	onMalformed := opts.OnMalformed
	if onMalformed == nil {
		onMalformed = func(err *asrel.ParseError) {
			logger.Warn("skipping malformed path",
				logging.Source(err.Source),
				logging.Line(err.Line),
				logging.String("text", err.Text),
				logging.Error(err.Cause))
		}
	}

	c := asrel.NewCorpus()
	var stats LoadStats

	digest, err := blake2b.New256(nil)
	if err != nil {
		return nil, stats, err
	}
	scanner := bufio.NewScanner(io.TeeReader(r, digest))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)

	for scanner.Scan() {
		stats.Lines++
		if stats.Lines%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, stats, err
			}
		}

		text := strings.TrimRightFunc(scanner.Text(), unicode.IsSpace)
		if text == "" {
			stats.Blank++
			continue
		}

		path, err := ParseLine(text, opts.NumericASNs)
		if err != nil {
			stats.Malformed++
			onMalformed(&asrel.ParseError{Source: opts.Source, Line: stats.Lines, Text: text, Cause: err})
			continue
		}

		c.AppendLine(path, text)
		stats.Paths++
		if len(path) < asrel.MinGraphPathLen {
			stats.Degenerate++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("read corpus %s: %w", opts.Source, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}
	stats.Digest = hex.EncodeToString(digest.Sum(nil))
	return c, stats, nil
}

// LoadSource opens uri and loads it.
func LoadSource(ctx context.Context, uri string, src SourceOptions, opts LoadOptions, logger logging.Logger) (*asrel.Corpus, LoadStats, error) {
	rc, err := Open(ctx, uri, src)
	if err != nil {
		return nil, LoadStats{}, err
	}
	defer rc.Close()

	if opts.Source == "" {
		opts.Source = DisplayName(uri)
	}
	return Load(ctx, rc, opts, logger)
}

// DisplayName names a source in logs.
func DisplayName(uri string) string {
	if uri == "" || uri == "-" {
		return "stdin"
	}
	return uri
}
