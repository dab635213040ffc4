// Package scalar defines the tagged value type produced by random
// access reads on arrays. A scalar carries its own logical type and
// nullability, so a value decoded from a compressed encoding is
// indistinguishable from one read out of canonical storage.
package scalar

import (
	"fmt"
	"math"

	"github.com/XinyuZeng/vortex/pkg/dtype"
)

// Scalar is one logical value together with its type.
type Scalar interface {
	DType() dtype.DType
	IsNull() bool
	String() string
}

// Primitive is a fixed-width scalar. The value is stored as a raw bit
// pattern of the declared width, which keeps signed/unsigned
// reinterpretation and modular arithmetic exact.
type Primitive struct {
	dt   dtype.Primitive
	null bool
	bits uint64
}

// FromBits builds a primitive scalar from a raw bit pattern. Bits above
// the declared width are discarded.
func FromBits(dt dtype.Primitive, bits uint64) Primitive {
	return Primitive{dt: dt, bits: truncate(bits, dt.PType())}
}

// Null builds the null scalar of the given primitive type. The type is
// forced nullable: a null value of a non-nullable type cannot exist.
func Null(dt dtype.Primitive) Primitive {
	return Primitive{dt: dt.WithNullability(dtype.Nullable), null: true}
}

// Uint8 builds a non-nullable u8 scalar.
func Uint8(v uint8) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.U8, dtype.NonNullable), uint64(v))
}

// Uint16 builds a non-nullable u16 scalar.
func Uint16(v uint16) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.U16, dtype.NonNullable), uint64(v))
}

// Uint32 builds a non-nullable u32 scalar.
func Uint32(v uint32) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.U32, dtype.NonNullable), uint64(v))
}

// Uint64 builds a non-nullable u64 scalar.
func Uint64(v uint64) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.U64, dtype.NonNullable), v)
}

// Int8 builds a non-nullable i8 scalar.
func Int8(v int8) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.I8, dtype.NonNullable), uint64(v))
}

// Int16 builds a non-nullable i16 scalar.
func Int16(v int16) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.I16, dtype.NonNullable), uint64(v))
}

// Int32 builds a non-nullable i32 scalar.
func Int32(v int32) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.I32, dtype.NonNullable), uint64(v))
}

// Int64 builds a non-nullable i64 scalar.
func Int64(v int64) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.I64, dtype.NonNullable), uint64(v))
}

// Float32 builds a non-nullable f32 scalar.
func Float32(v float32) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.F32, dtype.NonNullable), uint64(math.Float32bits(v)))
}

// Float64 builds a non-nullable f64 scalar.
func Float64(v float64) Primitive {
	return FromBits(dtype.NewPrimitive(dtype.F64, dtype.NonNullable), math.Float64bits(v))
}

// Primitive returns the concrete primitive logical type.
func (s Primitive) Primitive() dtype.Primitive { return s.dt }

// PType returns the physical width class.
func (s Primitive) PType() dtype.PType { return s.dt.PType() }

func (s Primitive) DType() dtype.DType { return s.dt }

func (s Primitive) IsNull() bool { return s.null }

// WithNullability casts the scalar's type to the given nullability.
// Casting a null scalar to non-nullable is a construction bug and
// panics.
func (s Primitive) WithNullability(n dtype.Nullability) Primitive {
	if s.null && n == dtype.NonNullable {
		panic("scalar: cannot cast null scalar to a non-nullable type")
	}
	s.dt = s.dt.WithNullability(n)
	return s
}

// Bits returns the raw bit pattern, zero-extended to 64 bits. Panics on
// a null scalar.
func (s Primitive) Bits() uint64 {
	if s.null {
		panic("scalar: Bits on null scalar")
	}
	return s.bits
}

// AsUint64 returns the value zero-extended to uint64. Panics on a null
// or non-unsigned scalar.
func (s Primitive) AsUint64() uint64 {
	if !s.dt.PType().IsUnsignedInt() {
		panic(fmt.Sprintf("scalar: AsUint64 on %s scalar", s.dt.PType()))
	}
	return s.Bits()
}

// AsInt64 returns the value sign-extended from its declared width.
// Panics on a null or non-signed scalar.
func (s Primitive) AsInt64() int64 {
	if !s.dt.PType().IsSignedInt() {
		panic(fmt.Sprintf("scalar: AsInt64 on %s scalar", s.dt.PType()))
	}
	return signExtend(s.Bits(), s.dt.PType())
}

// AsFloat64 returns the floating point value. Panics on a null or
// non-float scalar.
func (s Primitive) AsFloat64() float64 {
	switch s.dt.PType() {
	case dtype.F32:
		return float64(math.Float32frombits(uint32(s.Bits())))
	case dtype.F64:
		return math.Float64frombits(s.Bits())
	default:
		panic(fmt.Sprintf("scalar: AsFloat64 on %s scalar", s.dt.PType()))
	}
}

func (s Primitive) String() string {
	if s.null {
		return "null"
	}
	p := s.dt.PType()
	switch {
	case p.IsSignedInt():
		return fmt.Sprintf("%d_%s", s.AsInt64(), p)
	case p.IsFloat():
		return fmt.Sprintf("%g_%s", s.AsFloat64(), p)
	default:
		return fmt.Sprintf("%d_%s", s.bits, p)
	}
}

// truncate discards bits above the width of p.
func truncate(bits uint64, p dtype.PType) uint64 {
	if w := p.BitWidth(); w < 64 {
		return bits & (1<<w - 1)
	}
	return bits
}

// signExtend reinterprets the low bits of v as a two's-complement value
// of p's width.
func signExtend(v uint64, p dtype.PType) int64 {
	shift := 64 - p.BitWidth()
	return int64(v<<shift) >> shift
}
