package fastlanes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XinyuZeng/vortex/pkg/array"
	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

func TestTryNewRejectsNullReference(t *testing.T) {
	child := array.PrimitiveFromUint32([]uint32{1, 2}, nil)
	_, err := TryNew(child, scalar.Null(dtype.NewPrimitive(dtype.I32, dtype.NonNullable)), 0)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeData))
}

func TestTryNewValidatesChildWidth(t *testing.T) {
	// i32 target needs u32 offsets; u16 offsets are a mismatch.
	child := array.PrimitiveFromUint16([]uint16{1, 2}, nil)
	_, err := TryNew(child, scalar.Int32(10), 0)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeValidation))

	_, err = TryNew(array.PrimitiveFromUint32([]uint32{1}, nil), scalar.Int32(10), 32)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeValidation))
}

func TestReferenceCastToChildNullability(t *testing.T) {
	child := array.PrimitiveFromUint32([]uint32{1, 2}, []bool{true, true})
	a, err := TryNew(child, scalar.Int32(10), 0)
	require.NoError(t, err)
	assert.Equal(t, dtype.Nullability(true), a.Reference().DType().Nullability())
	assert.Equal(t, dtype.Nullability(true), a.DType().Nullability())
}

func TestScalarAtDecodes(t *testing.T) {
	// value = (offset << 2) + 100
	child := array.PrimitiveFromUint32([]uint32{0, 1, 5}, nil)
	a, err := TryNew(child, scalar.Int32(100), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, a.Len())
	want := []int32{100, 104, 120}
	for i, w := range want {
		s, err := a.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, scalar.Int32(w), s)
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	values := []int64{-12, -4, 4, 20, 60}
	p := array.PrimitiveFromInt64(values, nil)

	a, err := Encode(p, scalar.Int64(-12), 3)
	require.NoError(t, err)

	for i, want := range values {
		s, err := a.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, scalar.Int64(want), s)
	}

	c, err := a.IntoCanonical()
	require.NoError(t, err)
	decoded, ok := c.Primitive()
	require.True(t, ok)
	for i, want := range values {
		s, err := decoded.ScalarAt(i)
		require.NoError(t, err)
		assert.Equal(t, scalar.Int64(want), s)
	}
}

func TestEncodeRejectsLossyShift(t *testing.T) {
	// 5 - 0 = 5 has bits under shift 2.
	p := array.PrimitiveFromInt32([]int32{4, 5}, nil)
	_, err := Encode(p, scalar.Int32(0), 2)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeData))
}

func TestDecodeWrapsAtTargetWidth(t *testing.T) {
	// 200 + 100 wraps modulo 256: bit pattern 0x2C, i.e. 44 as i8
	// under two's-complement reinterpretation.
	child := array.PrimitiveFromUint8([]uint8{200}, nil)
	a, err := TryNew(child, scalar.Int8(100), 0)
	require.NoError(t, err)

	s, err := a.ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, scalar.Int8(44), s)
}

func TestSignedReinterpretation(t *testing.T) {
	// Offset 0xFF decodes to bit pattern 0xFF, which is -1 as i8.
	child := array.PrimitiveFromUint8([]uint8{0xFF}, nil)
	a, err := TryNew(child, scalar.Int8(0), 0)
	require.NoError(t, err)

	s, err := a.ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, scalar.Int8(-1), s)
}

func TestValidityDelegatesToChild(t *testing.T) {
	child := array.PrimitiveFromUint32([]uint32{1, 2, 3}, []bool{true, false, true})
	a, err := TryNew(child, scalar.Int32(0), 0)
	require.NoError(t, err)

	assert.True(t, a.IsValid(0))
	assert.False(t, a.IsValid(1))
	assert.Equal(t, 2, a.LogicalValidity().CountValid())

	s, err := a.ScalarAt(1)
	require.NoError(t, err)
	assert.True(t, s.IsNull())

	c, err := a.IntoCanonical()
	require.NoError(t, err)
	p, _ := c.Primitive()
	assert.False(t, p.IsValid(1))
}

func TestSliceKeepsParameters(t *testing.T) {
	child := array.PrimitiveFromUint32([]uint32{0, 1, 2, 3}, nil)
	a, err := TryNew(child, scalar.Int32(10), 1)
	require.NoError(t, err)

	s, err := a.Slice(1, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())

	got, err := s.ScalarAt(0)
	require.NoError(t, err)
	assert.Equal(t, scalar.Int32(12), got)

	_, err = a.Slice(2, 5)
	assert.True(t, verrors.IsType(err, verrors.ErrorTypeRange))
}

func TestNBytesCountsChildOnly(t *testing.T) {
	child := array.PrimitiveFromUint16([]uint16{1, 2, 3}, nil)
	a, err := TryNew(child, scalar.Int16(5), 0)
	require.NoError(t, err)
	assert.Equal(t, child.NBytes(), a.NBytes())
}

func TestIterArrowMatchesCanonical(t *testing.T) {
	values := []uint64{100, 108, 116}
	p := array.PrimitiveFromUint64(values, nil)
	a, err := Encode(p, scalar.Uint64(100), 2)
	require.NoError(t, err)

	it := a.IterArrow()
	require.True(t, it.Next())
	assert.Equal(t, 3, it.Chunk().Len())
	assert.False(t, it.Next())
	require.NoError(t, it.Err())
}
