package corpus

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"

	// Register all transports
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// pullReader exposes the messages of a PULL socket as one byte stream.
// Each message holds one or more newline-separated lines; an empty message
// ends the stream.
type pullReader struct {
	sock mangos.Socket
	buf  []byte
	done bool
}

// NNGAddress converts an nng+<transport>:// source into a mangos address.
func NNGAddress(uri string) (string, error) {
	addr, ok := strings.CutPrefix(uri, "nng+")
	if !ok || strings.HasSuffix(addr, "://") {
		return "", fmt.Errorf("%w: %s", ErrInvalidSource, uri)
	}
	return addr, nil
}

func openNNG(uri string, recvTimeout time.Duration) (io.ReadCloser, error) {
	addr, err := NNGAddress(uri)
	if err != nil {
		return nil, err
	}
	if recvTimeout <= 0 {
		recvTimeout = DefaultRecvTimeout
	}

	sock, err := pull.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create pull socket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionRecvDeadline, recvTimeout); err != nil {
		sock.Close()
		return nil, fmt.Errorf("set recv deadline: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	return &pullReader{sock: sock}, nil
}

func (r *pullReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if r.done {
			return 0, io.EOF
		}
		msg, err := r.sock.Recv()
		if errors.Is(err, mangos.ErrClosed) {
			return 0, io.ErrUnexpectedEOF
		}
		if err != nil {
			return 0, fmt.Errorf("collector feed: %w", err)
		}
		if len(msg) == 0 {
			r.done = true
			continue
		}
		// Messages need not end in a newline; keep lines from merging.
		if msg[len(msg)-1] != '\n' {
			msg = append(msg, '\n')
		}
		r.buf = msg
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

func (r *pullReader) Close() error {
	return r.sock.Close()
}
