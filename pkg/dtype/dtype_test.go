package dtype

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/stretchr/testify/assert"
)

func TestPTypeWidths(t *testing.T) {
	assert.Equal(t, 1, U8.ByteWidth())
	assert.Equal(t, 2, I16.ByteWidth())
	assert.Equal(t, 4, F32.ByteWidth())
	assert.Equal(t, 8, U64.ByteWidth())
	assert.Equal(t, 32, I32.BitWidth())
}

func TestPTypeClasses(t *testing.T) {
	assert.True(t, U16.IsUnsignedInt())
	assert.False(t, U16.IsSignedInt())
	assert.True(t, I64.IsSignedInt())
	assert.True(t, I64.IsInt())
	assert.True(t, F64.IsFloat())
	assert.False(t, F64.IsInt())
}

func TestPTypeToUnsigned(t *testing.T) {
	assert.Equal(t, U8, I8.ToUnsigned())
	assert.Equal(t, U64, I64.ToUnsigned())
	assert.Equal(t, U32, U32.ToUnsigned())
	assert.Equal(t, I16, U16.ToSigned())

	assert.Panics(t, func() { F32.ToUnsigned() })
}

func TestPTypeStringRoundTrip(t *testing.T) {
	for _, p := range []PType{U8, U16, U32, U64, I8, I16, I32, I64, F32, F64} {
		parsed, ok := ParsePType(p.String())
		assert.True(t, ok)
		assert.Equal(t, p, parsed)
	}

	_, ok := ParsePType("u128")
	assert.False(t, ok)
}

func TestPrimitiveEqual(t *testing.T) {
	a := NewPrimitive(I32, NonNullable)
	assert.True(t, a.Equal(NewPrimitive(I32, NonNullable)))
	assert.False(t, a.Equal(NewPrimitive(I32, Nullable)))
	assert.False(t, a.Equal(NewPrimitive(U32, NonNullable)))
}

func TestStructFieldOrderIsIdentity(t *testing.T) {
	i32 := NewPrimitive(I32, NonNullable)
	u64 := NewPrimitive(U64, NonNullable)

	ab := NewStruct([]string{"a", "b"}, []DType{i32, u64})
	ba := NewStruct([]string{"b", "a"}, []DType{u64, i32})

	assert.True(t, ab.Equal(NewStruct([]string{"a", "b"}, []DType{i32, u64})))
	assert.False(t, ab.Equal(ba))
}

func TestStructConstructionInvariants(t *testing.T) {
	i32 := NewPrimitive(I32, NonNullable)

	assert.Panics(t, func() {
		NewStruct([]string{"a"}, []DType{i32, i32})
	})
	assert.Panics(t, func() {
		NewStruct([]string{"a", "a"}, []DType{i32, i32})
	})
}

func TestArrowConversion(t *testing.T) {
	assert.True(t, arrow.TypeEqual(arrow.PrimitiveTypes.Int64, NewPrimitive(I64, NonNullable).Arrow()))

	st := NewStruct(
		[]string{"id", "score"},
		[]DType{NewPrimitive(U32, NonNullable), NewPrimitive(F64, Nullable)},
	)
	at, ok := st.Arrow().(*arrow.StructType)
	assert.True(t, ok)
	assert.Equal(t, 2, at.NumFields())
	assert.Equal(t, "id", at.Field(0).Name)
	assert.False(t, at.Field(0).Nullable)
	assert.True(t, at.Field(1).Nullable)
}
