package ipc

import (
	"bytes"
	"io"
	"sync"

	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

// Compression names the codec applied to body buffers. The framing
// layer is unaffected: headers always declare the on-wire buffer sizes.
type Compression string

const (
	// CompressionNone sends buffers verbatim.
	CompressionNone Compression = ""
	// CompressionZstd uses zstandard.
	CompressionZstd Compression = "zstd"
	// CompressionLZ4 uses the lz4 frame format.
	CompressionLZ4 Compression = "lz4"
	// CompressionSnappy uses snappy block encoding.
	CompressionSnappy Compression = "snappy"
)

func (c Compression) valid() bool {
	switch c {
	case CompressionNone, CompressionZstd, CompressionLZ4, CompressionSnappy:
		return true
	}
	return false
}

var (
	zstdEncOnce sync.Once
	zstdEnc     *zstd.Encoder
	zstdDecOnce sync.Once
	zstdDec     *zstd.Decoder
)

func zstdEncoder() *zstd.Encoder {
	zstdEncOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil)
	})
	return zstdEnc
}

func zstdDecoder() *zstd.Decoder {
	zstdDecOnce.Do(func() {
		zstdDec, _ = zstd.NewReader(nil)
	})
	return zstdDec
}

// CompressBuffer encodes one body buffer with the given codec.
func CompressBuffer(c Compression, data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		return zstdEncoder().EncodeAll(data, nil), nil
	case CompressionSnappy:
		return snappy.Encode(nil, data), nil
	case CompressionLZ4:
		var buf bytes.Buffer
		w := lz4.NewWriter(&buf)
		if _, err := w.Write(data); err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeInternal, "lz4 compression")
		}
		if err := w.Close(); err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeInternal, "lz4 compression")
		}
		return buf.Bytes(), nil
	default:
		return nil, verrors.Newf(verrors.ErrorTypeValidation, "unknown compression codec %q", c)
	}
}

// DecompressBuffer decodes one body buffer. uncompressedLen is the size
// declared in the header; a mismatch with the decoded output is a
// protocol error.
func DecompressBuffer(c Compression, data []byte, uncompressedLen uint64) ([]byte, error) {
	var out []byte
	switch c {
	case CompressionNone:
		return data, nil
	case CompressionZstd:
		var err error
		out, err = zstdDecoder().DecodeAll(data, make([]byte, 0, uncompressedLen))
		if err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeProtocol, "zstd decompression")
		}
	case CompressionSnappy:
		var err error
		out, err = snappy.Decode(nil, data)
		if err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeProtocol, "snappy decompression")
		}
	case CompressionLZ4:
		r := lz4.NewReader(bytes.NewReader(data))
		var buf bytes.Buffer
		buf.Grow(int(uncompressedLen))
		if _, err := io.Copy(&buf, r); err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeProtocol, "lz4 decompression")
		}
		out = buf.Bytes()
	default:
		return nil, verrors.Newf(verrors.ErrorTypeProtocol, "unknown compression codec %q", c)
	}
	if uint64(len(out)) != uncompressedLen {
		return nil, verrors.Newf(verrors.ErrorTypeProtocol,
			"decompressed %d bytes, header declared %d", len(out), uncompressedLen)
	}
	return out, nil
}
