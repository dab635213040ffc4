package ipc

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

// frame prepends the length prefix to a header payload.
func frame(t *testing.T, payload []byte) []byte {
	t.Helper()
	out := make([]byte, lenPrefixSize, lenPrefixSize+len(payload))
	binary.LittleEndian.PutUint32(out, uint32(len(payload)))
	return append(out, payload...)
}

func sentinel() []byte {
	out := make([]byte, lenPrefixSize)
	binary.LittleEndian.PutUint32(out, endOfStream)
	return out
}

func encodeHeader(t *testing.T, m *Message) []byte {
	t.Helper()
	payload, err := EncodeMessage(m)
	require.NoError(t, err)
	return payload
}

func TestReaderEmptyStream(t *testing.T) {
	r, err := NewMessageReader(context.Background(), bytes.NewReader(sentinel()))
	require.NoError(t, err)

	assert.Nil(t, r.Peek())
	assert.Panics(t, func() { r.Next(context.Background()) })
	assert.Equal(t, "MessageReader(finished)", r.String())
}

func TestReaderEnumeratesMessages(t *testing.T) {
	h1 := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindSchema})
	h2 := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindArray, Encoding: "vortex.roaring_int", Length: 4})

	var stream bytes.Buffer
	stream.Write(frame(t, h1))
	stream.Write(frame(t, h2))
	stream.Write(sentinel())

	ctx := context.Background()
	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	// Peek is idempotent.
	require.NotNil(t, r.Peek())
	assert.Equal(t, KindSchema, r.Peek().Kind)
	assert.Equal(t, KindSchema, r.Peek().Kind)

	m1, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindSchema, m1.Kind)

	require.NotNil(t, r.Peek())
	m2, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindArray, m2.Kind)
	assert.Equal(t, "vortex.roaring_int", m2.Encoding)

	assert.Nil(t, r.Peek())
	assert.Panics(t, func() { r.Next(ctx) })
}

func TestReaderNextRawVerbatim(t *testing.T) {
	h := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindSchema})

	var stream bytes.Buffer
	stream.Write(frame(t, h))
	stream.Write(sentinel())

	ctx := context.Background()
	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	raw, err := r.NextRaw(ctx)
	require.NoError(t, err)
	assert.Equal(t, h, raw)
}

func TestReaderMalformedHeader(t *testing.T) {
	_, err := NewMessageReader(context.Background(), bytes.NewReader(frame(t, []byte(`{"version":42,"kind":"schema"}`))))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestReaderTruncatedStream(t *testing.T) {
	h := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindSchema})
	framed := frame(t, h)

	// Cut the payload short.
	_, err := NewMessageReader(context.Background(), bytes.NewReader(framed[:len(framed)-2]))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeIO))

	// No bytes at all: even the prefix is missing.
	_, err = NewMessageReader(context.Background(), bytes.NewReader(nil))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeIO))
}

func TestReaderHeaderLimit(t *testing.T) {
	h := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindSchema})

	var stream bytes.Buffer
	stream.Write(frame(t, h))
	stream.Write(sentinel())

	_, err := NewMessageReader(context.Background(), &stream, WithMaxHeaderBytes(8))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestReaderCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewMessageReader(ctx, bytes.NewReader(sentinel()))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeIO))
}

func TestReadIntoSequential(t *testing.T) {
	body := []byte("abcdefghij")
	h := encodeHeader(t, &Message{
		Version: CurrentVersion,
		Kind:    KindArray,
		Length:  10,
		Buffers: []BufferDescriptor{{Length: 4}, {Length: 6}},
	})

	var stream bytes.Buffer
	stream.Write(frame(t, h))
	stream.Write(body)
	stream.Write(sentinel())

	ctx := context.Background()
	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	msg := r.Peek()
	require.NotNil(t, msg)
	assert.Equal(t, uint64(10), msg.BodyLength())

	bufs := make([][]byte, len(msg.Buffers))
	for i, d := range msg.Buffers {
		bufs[i] = make([]byte, d.Length)
	}
	got, err := r.ReadInto(ctx, bufs)
	require.NoError(t, err)
	assert.Equal(t, []byte("abcd"), got[0])
	assert.Equal(t, []byte("efghij"), got[1])

	_, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, r.Peek())
}

// Body buffers of the last consumed header may still be pending after
// the sentinel is observed; ReadInto must stay legal on a finished
// channel.
func TestReadIntoAfterFinished(t *testing.T) {
	body := []byte("xyzw")
	h := encodeHeader(t, &Message{
		Version: CurrentVersion,
		Kind:    KindArray,
		Length:  4,
		Buffers: []BufferDescriptor{{Length: 4}},
	})

	var stream bytes.Buffer
	stream.Write(frame(t, h))
	stream.Write(sentinel())
	stream.Write(body)

	ctx := context.Background()
	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	msg, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, r.Peek())

	bufs := [][]byte{make([]byte, msg.Buffers[0].Length)}
	got, err := r.ReadInto(ctx, bufs)
	require.NoError(t, err)
	assert.Equal(t, body, got[0])
}

func TestReadIntoShortBody(t *testing.T) {
	h := encodeHeader(t, &Message{
		Version: CurrentVersion,
		Kind:    KindArray,
		Length:  4,
		Buffers: []BufferDescriptor{{Length: 8}},
	})

	var stream bytes.Buffer
	stream.Write(frame(t, h))
	stream.Write([]byte("abc"))

	ctx := context.Background()
	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	_, err = r.ReadInto(ctx, [][]byte{make([]byte, 8)})
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeIO))
}
