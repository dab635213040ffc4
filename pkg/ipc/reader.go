package ipc

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/metrics"
)

// readerState is the explicit two-state machine of a channel: either a
// validated header is pending, or the sentinel has been observed and
// the channel is finished. Every operation pattern-matches on this
// state instead of consulting scattered flags.
type readerState int

const (
	statePending readerState = iota
	stateFinished
)

// ReaderOption configures a MessageReader.
type ReaderOption func(*MessageReader)

// WithLogger attaches a logger to the reader. The default is a no-op
// logger.
func WithLogger(log *zap.Logger) ReaderOption {
	return func(r *MessageReader) { r.log = log }
}

// WithMaxHeaderBytes bounds a single header payload; larger declared
// lengths are treated as protocol corruption.
func WithMaxHeaderBytes(n int) ReaderOption {
	return func(r *MessageReader) { r.maxHeader = uint32(n) }
}

// MessageReader consumes a length-framed message stream with
// one-message lookahead: at most one already-validated header is held
// in memory, established eagerly at construction and after every
// consumption.
//
// A MessageReader supports exactly one logical reader. Each read is a
// suspension point driven by the supplied context; cancelling a read
// mid-flight leaves the channel's position undefined and the channel
// must not be used afterward.
type MessageReader struct {
	src       io.Reader
	state     readerState
	pending   []byte   // raw bytes of the validated pending header
	msg       *Message // parsed view of pending
	maxHeader uint32
	lenBuf    [lenPrefixSize]byte
	log       *zap.Logger
}

// NewMessageReader constructs a reader and eagerly loads the first
// header. A stream whose first frame is already the sentinel yields a
// reader that is immediately finished.
func NewMessageReader(ctx context.Context, src io.Reader, opts ...ReaderOption) (*MessageReader, error) {
	r := &MessageReader{
		src:       src,
		maxHeader: 1 << 20,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.loadNext(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

// loadNext reads, parses, and validates the next header, or observes
// the sentinel and finishes the channel.
func (r *MessageReader) loadNext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return verrors.Wrap(err, verrors.ErrorTypeIO, "reading message header")
	}

	if _, err := io.ReadFull(r.src, r.lenBuf[:]); err != nil {
		return verrors.Wrap(err, verrors.ErrorTypeIO, "reading message length prefix")
	}
	metrics.BytesRead.WithLabelValues(metrics.SectionHeader).Add(lenPrefixSize)

	length := binary.LittleEndian.Uint32(r.lenBuf[:])
	if length == endOfStream {
		r.state = stateFinished
		r.pending = nil
		r.msg = nil
		r.log.Debug("message stream finished")
		return nil
	}
	if length > r.maxHeader {
		return verrors.Newf(verrors.ErrorTypeProtocol,
			"header length %d exceeds limit %d", length, r.maxHeader)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r.src, payload); err != nil {
		return verrors.Wrap(err, verrors.ErrorTypeIO, "reading message header")
	}
	metrics.BytesRead.WithLabelValues(metrics.SectionHeader).Add(float64(length))

	// Validate immediately: byte alignment cannot be recovered once a
	// corrupt header goes unnoticed.
	msg, err := DecodeMessage(payload)
	if err != nil {
		return err
	}

	r.pending = payload
	r.msg = msg
	r.state = statePending
	return nil
}

// Peek returns the pending header without consuming it, or nil once the
// sentinel has been observed.
func (r *MessageReader) Peek() *Message {
	if r.state == stateFinished {
		return nil
	}
	return r.msg
}

// Next consumes the pending header and eagerly loads the one after it.
// Calling Next on a finished channel is a caller bug and panics; check
// Peek first.
func (r *MessageReader) Next(ctx context.Context) (*Message, error) {
	msg, _, err := r.consume(ctx)
	return msg, err
}

// NextRaw is Next, but returns the header's exact wire bytes instead of
// a parsed view, for consumers that forward bytes verbatim.
func (r *MessageReader) NextRaw(ctx context.Context) ([]byte, error) {
	_, raw, err := r.consume(ctx)
	return raw, err
}

func (r *MessageReader) consume(ctx context.Context) (*Message, []byte, error) {
	if r.state == stateFinished {
		panic("ipc: message reader is finished - should have checked Peek")
	}
	msg, raw := r.msg, r.pending
	if err := r.loadNext(ctx); err != nil {
		return nil, nil, err
	}
	metrics.MessagesRead.WithLabelValues(string(msg.Kind)).Inc()
	r.log.Debug("consumed message",
		zap.String("kind", string(msg.Kind)),
		zap.String("encoding", msg.Encoding),
		zap.Int("header_bytes", len(raw)))
	return msg, raw, nil
}

// ReadInto fills the caller-supplied buffers, in order, directly from
// the stream. Buffer sizes come from a just-consumed header's buffer
// table, so body bytes move in bulk instead of buffer-by-buffer round
// trips. When the transport exposes a file descriptor the read is
// vectorized with readv; otherwise the buffers are filled sequentially.
//
// Unlike Next, ReadInto stays legal after the channel is finished:
// body buffers of the last consumed header may still be pending.
func (r *MessageReader) ReadInto(ctx context.Context, buffers [][]byte) ([][]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, verrors.Wrap(err, verrors.ErrorTypeIO, "reading body buffers")
	}

	var total int
	for _, b := range buffers {
		total += len(b)
	}

	if sc, ok := r.src.(syscall.Conn); ok {
		if err := r.readv(ctx, sc, buffers); err != nil {
			return nil, err
		}
	} else {
		for _, b := range buffers {
			if _, err := io.ReadFull(r.src, b); err != nil {
				return nil, verrors.Wrap(err, verrors.ErrorTypeIO, "reading body buffer")
			}
		}
	}

	metrics.BytesRead.WithLabelValues(metrics.SectionBody).Add(float64(total))
	r.log.Debug("read body buffers", zap.Int("buffers", len(buffers)), zap.Int("bytes", total))
	return buffers, nil
}

// maxIovec bounds one readv call; IOV_MAX on Linux is 1024.
const maxIovec = 1024

// readv fills the buffers with vectored reads on the transport's file
// descriptor.
func (r *MessageReader) readv(ctx context.Context, sc syscall.Conn, buffers [][]byte) error {
	raw, err := sc.SyscallConn()
	if err != nil {
		return verrors.Wrap(err, verrors.ErrorTypeIO, "acquiring raw connection")
	}

	remaining := make([][]byte, 0, len(buffers))
	for _, b := range buffers {
		if len(b) > 0 {
			remaining = append(remaining, b)
		}
	}

	for len(remaining) > 0 {
		if err := ctx.Err(); err != nil {
			return verrors.Wrap(err, verrors.ErrorTypeIO, "reading body buffers")
		}

		batch := remaining
		if len(batch) > maxIovec {
			batch = batch[:maxIovec]
		}

		var n int
		var readErr error
		waitErr := raw.Read(func(fd uintptr) bool {
			n, readErr = unix.Readv(int(fd), batch)
			// EAGAIN means not yet readable: park until the poller
			// reports readiness.
			return readErr != unix.EAGAIN
		})
		if waitErr != nil {
			return verrors.Wrap(waitErr, verrors.ErrorTypeIO, "reading body buffers")
		}
		if readErr != nil {
			return verrors.Wrap(readErr, verrors.ErrorTypeIO, "readv")
		}
		if n == 0 {
			return verrors.Wrap(io.ErrUnexpectedEOF, verrors.ErrorTypeIO, "reading body buffers")
		}

		for n > 0 {
			if n >= len(remaining[0]) {
				n -= len(remaining[0])
				remaining = remaining[1:]
			} else {
				remaining[0] = remaining[0][n:]
				n = 0
			}
		}
	}
	return nil
}

// String describes the channel state for diagnostics.
func (r *MessageReader) String() string {
	switch r.state {
	case stateFinished:
		return "MessageReader(finished)"
	default:
		return fmt.Sprintf("MessageReader(pending %s)", r.msg.Kind)
	}
}
