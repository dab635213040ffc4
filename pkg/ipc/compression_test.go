package ipc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

func TestCompressionRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("vortex body buffer "), 64)

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4, CompressionSnappy} {
		compressed, err := CompressBuffer(c, data)
		require.NoError(t, err, "codec %q", c)

		out, err := DecompressBuffer(c, compressed, uint64(len(data)))
		require.NoError(t, err, "codec %q", c)
		assert.Equal(t, data, out, "codec %q", c)
	}
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte{7}, 1<<12)
	compressed, err := CompressBuffer(CompressionZstd, data)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(data))
}

func TestDecompressLengthMismatch(t *testing.T) {
	data := bytes.Repeat([]byte("x"), 256)
	compressed, err := CompressBuffer(CompressionSnappy, data)
	require.NoError(t, err)

	_, err = DecompressBuffer(CompressionSnappy, compressed, 255)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestDecompressCorruptPayload(t *testing.T) {
	_, err := DecompressBuffer(CompressionZstd, []byte("not a zstd frame"), 16)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestUnknownCodec(t *testing.T) {
	_, err := CompressBuffer("brotli", []byte("x"))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeValidation))

	_, err = DecompressBuffer("brotli", []byte("x"), 1)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}
