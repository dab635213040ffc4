package ipc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

func TestMessageRoundTrip(t *testing.T) {
	m := &Message{
		Version:  CurrentVersion,
		Kind:     KindArray,
		Encoding: "fastlanes.for",
		Length:   128,
		Buffers: []BufferDescriptor{
			{Length: 512},
			{Length: 40, UncompressedLength: 100},
		},
		Compression: CompressionZstd,
		Metadata:    map[string]interface{}{"shift": float64(3)},
	}

	payload, err := EncodeMessage(m)
	require.NoError(t, err)

	got, err := DecodeMessage(payload)
	require.NoError(t, err)
	assert.Equal(t, m, got)
	assert.Equal(t, uint64(552), got.BodyLength())
}

func TestValidateRejections(t *testing.T) {
	valid := func() *Message {
		return &Message{Version: CurrentVersion, Kind: KindSchema}
	}

	m := valid()
	m.Version = 99
	assert.True(t, verrors.IsType(m.Validate(), verrors.ErrorTypeProtocol))

	m = valid()
	m.Kind = "tensor"
	assert.True(t, verrors.IsType(m.Validate(), verrors.ErrorTypeProtocol))

	m = valid()
	m.Length = -1
	assert.True(t, verrors.IsType(m.Validate(), verrors.ErrorTypeProtocol))

	m = valid()
	m.Compression = "brotli"
	assert.True(t, verrors.IsType(m.Validate(), verrors.ErrorTypeProtocol))

	m = valid()
	m.DType = &WireDType{Kind: "primitive", PType: "u128"}
	assert.True(t, verrors.IsType(m.Validate(), verrors.ErrorTypeProtocol))

	assert.NoError(t, valid().Validate())
}

func TestDecodeMalformedPayload(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"version": `))
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}

func TestWireDTypeRoundTrip(t *testing.T) {
	cases := []dtype.DType{
		dtype.NewPrimitive(dtype.U8, dtype.NonNullable),
		dtype.NewPrimitive(dtype.F64, dtype.Nullable),
		dtype.NewStruct(
			[]string{"id", "nested"},
			[]dtype.DType{
				dtype.NewPrimitive(dtype.U32, dtype.NonNullable),
				dtype.NewStruct(
					[]string{"v"},
					[]dtype.DType{dtype.NewPrimitive(dtype.I64, dtype.Nullable)},
				),
			},
		),
	}
	for _, dt := range cases {
		got, err := WireFromDType(dt).DType()
		require.NoError(t, err)
		assert.True(t, dt.Equal(got), "round trip of %s", dt)
	}
}

func TestWireDTypeMalformed(t *testing.T) {
	_, err := (&WireDType{Kind: "list"}).DType()
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))

	_, err = (&WireDType{
		Kind:   "struct",
		Names:  []string{"a"},
		Fields: nil,
	}).DType()
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))

	// Duplicate field names arriving off the wire must fail cleanly.
	_, err = (&WireDType{
		Kind:  "struct",
		Names: []string{"a", "a"},
		Fields: []*WireDType{
			{Kind: "primitive", PType: "u8"},
			{Kind: "primitive", PType: "u8"},
		},
	}).DType()
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeProtocol))
}
