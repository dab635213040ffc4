package ipc

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

func TestWriterReaderRoundTrip(t *testing.T) {
	ctx := context.Background()
	var stream bytes.Buffer
	w := NewMessageWriter(&stream)

	schema := &Message{Version: CurrentVersion, Kind: KindSchema}
	require.NoError(t, w.WriteMessage(ctx, schema))

	body := []byte("0123456789abcdef")
	arr := &Message{
		Version:  CurrentVersion,
		Kind:     KindArray,
		Encoding: "fastlanes.for",
		Length:   4,
		Buffers:  []BufferDescriptor{{Length: 16}},
	}
	require.NoError(t, w.WriteMessage(ctx, arr))
	require.NoError(t, w.WriteBuffers(ctx, body))
	require.NoError(t, w.Close())

	r, err := NewMessageReader(ctx, &stream)
	require.NoError(t, err)

	m1, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, KindSchema, m1.Kind)

	m2 := r.Peek()
	require.NotNil(t, m2)
	assert.Equal(t, arr.Encoding, m2.Encoding)

	bufs, err := r.ReadInto(ctx, [][]byte{make([]byte, 16)})
	require.NoError(t, err)
	assert.Equal(t, body, bufs[0])

	_, err = r.Next(ctx)
	require.NoError(t, err)
	assert.Nil(t, r.Peek())
}

func TestWriterRawForwarding(t *testing.T) {
	ctx := context.Background()
	h := encodeHeader(t, &Message{Version: CurrentVersion, Kind: KindSchema})

	var upstream bytes.Buffer
	upstream.Write(frame(t, h))
	upstream.Write(sentinel())

	src, err := NewMessageReader(ctx, &upstream)
	require.NoError(t, err)

	var downstream bytes.Buffer
	w := NewMessageWriter(&downstream)
	raw, err := src.NextRaw(ctx)
	require.NoError(t, err)
	require.NoError(t, w.WriteRaw(ctx, raw))
	require.NoError(t, w.Close())

	// Forwarded bytes reproduce the original framing exactly.
	want := append(frame(t, h), sentinel()...)
	assert.Equal(t, want, downstream.Bytes())
}

func TestWriterRejectsInvalidMessage(t *testing.T) {
	w := NewMessageWriter(&bytes.Buffer{})
	err := w.WriteMessage(context.Background(), &Message{Version: 99, Kind: KindSchema})
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestWriterCloseIdempotent(t *testing.T) {
	var stream bytes.Buffer
	w := NewMessageWriter(&stream)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
	assert.Equal(t, sentinel(), stream.Bytes())
}

func TestWriterPanicsAfterClose(t *testing.T) {
	w := NewMessageWriter(&bytes.Buffer{})
	require.NoError(t, w.Close())
	assert.Panics(t, func() { w.WriteRaw(context.Background(), []byte("x")) })
	assert.Panics(t, func() { w.WriteBuffers(context.Background(), []byte("x")) })
}

func TestWriterSkipsEmptyBuffers(t *testing.T) {
	var stream bytes.Buffer
	w := NewMessageWriter(&stream)
	require.NoError(t, w.WriteBuffers(context.Background(), nil, []byte("ab"), nil))
	assert.Equal(t, []byte("ab"), stream.Bytes())
}

func TestWriterCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := NewMessageWriter(&bytes.Buffer{})
	err := w.WriteRaw(ctx, []byte("x"))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeIO))
}
