package corpus

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang/snappy"
	"golang.org/x/exp/mmap"
)

var (
	// ErrUnsupportedSource is returned for a source URI with an unknown scheme
	ErrUnsupportedSource = errors.New("unsupported corpus source")
	// ErrInvalidSource is returned for a malformed source URI
	ErrInvalidSource = errors.New("invalid corpus source")
)

// Source URI schemes.
const (
	SchemeS3        = "s3://"
	SchemeNNGTCP    = "nng+tcp://"
	SchemeNNGIPC    = "nng+ipc://"
	SchemeNNGInproc = "nng+inproc://"
)

// DefaultRecvTimeout bounds the wait for each collector message.
const DefaultRecvTimeout = 30 * time.Second

// S3Options configures the object-storage source.
type S3Options struct {
	Region          string
	Endpoint        string // S3-compatible endpoint; empty for AWS
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// SourceOptions configures how Open reaches a source.
type SourceOptions struct {
	S3          S3Options
	RecvTimeout time.Duration // NNG sources

	// Stdin replaces os.Stdin for "-" sources.
	Stdin io.Reader
	// Objects replaces the S3 client built from S3Options.
	Objects ObjectGetter
}

// Open returns a reader over the named source:
//
//	"" or "-"            standard input
//	s3://bucket/key      object storage
//	nng+tcp://host:port  collector PULL socket (also nng+ipc://, nng+inproc://)
//	anything else        local file, memory-mapped
//
// Names ending in .sz or .snappy are decoded as snappy framed streams.
func Open(ctx context.Context, uri string, opts SourceOptions) (io.ReadCloser, error) {
	rc, err := openRaw(ctx, uri, opts)
	if err != nil {
		return nil, err
	}
	if IsSnappy(uri) {
		return &snappyReadCloser{Reader: snappy.NewReader(rc), closer: rc}, nil
	}
	return rc, nil
}

func openRaw(ctx context.Context, uri string, opts SourceOptions) (io.ReadCloser, error) {
	switch {
	case uri == "" || uri == "-":
		in := opts.Stdin
		if in == nil {
			in = os.Stdin
		}
		return io.NopCloser(in), nil
	case strings.HasPrefix(uri, SchemeS3):
		return openS3(ctx, uri, opts)
	case strings.HasPrefix(uri, SchemeNNGTCP),
		strings.HasPrefix(uri, SchemeNNGIPC),
		strings.HasPrefix(uri, SchemeNNGInproc):
		return openNNG(uri, opts.RecvTimeout)
	case strings.Contains(uri, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, uri)
	default:
		return openFile(uri)
	}
}

// IsSnappy reports whether a source name selects snappy decoding.
func IsSnappy(uri string) bool {
	return strings.HasSuffix(uri, ".sz") || strings.HasSuffix(uri, ".snappy")
}

// mappedFile reads a memory-mapped local file sequentially.
type mappedFile struct {
	*io.SectionReader
	m *mmap.ReaderAt
}

func (f *mappedFile) Close() error {
	return f.m.Close()
}

func openFile(path string) (io.ReadCloser, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus file: %w", err)
	}
	return &mappedFile{SectionReader: io.NewSectionReader(m, 0, int64(m.Len())), m: m}, nil
}

type snappyReadCloser struct {
	*snappy.Reader
	closer io.Closer
}

func (s *snappyReadCloser) Close() error {
	return s.closer.Close()
}
