package dtype

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// PType identifies the physical width class of a primitive value.
type PType int

const (
	U8 PType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	F32
	F64
)

// ByteWidth returns the storage size of one value in bytes.
func (p PType) ByteWidth() int {
	switch p {
	case U8, I8:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	default:
		panic(fmt.Sprintf("dtype: unknown ptype %d", p))
	}
}

// BitWidth returns the storage size of one value in bits.
func (p PType) BitWidth() int {
	return p.ByteWidth() * 8
}

// IsUnsignedInt reports whether p is one of the unsigned integer classes.
func (p PType) IsUnsignedInt() bool {
	switch p {
	case U8, U16, U32, U64:
		return true
	}
	return false
}

// IsSignedInt reports whether p is one of the signed integer classes.
func (p PType) IsSignedInt() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// IsInt reports whether p is an integer class of either signedness.
func (p PType) IsInt() bool {
	return p.IsUnsignedInt() || p.IsSignedInt()
}

// IsFloat reports whether p is a floating point class.
func (p PType) IsFloat() bool {
	return p == F32 || p == F64
}

// ToUnsigned returns the unsigned counterpart of the same width.
// Float classes have no unsigned counterpart and panic.
func (p PType) ToUnsigned() PType {
	switch p {
	case U8, U16, U32, U64:
		return p
	case I8:
		return U8
	case I16:
		return U16
	case I32:
		return U32
	case I64:
		return U64
	default:
		panic(fmt.Sprintf("dtype: no unsigned counterpart for %s", p))
	}
}

// ToSigned returns the signed counterpart of the same width.
// Float classes have no signed counterpart and panic.
func (p PType) ToSigned() PType {
	switch p {
	case I8, I16, I32, I64:
		return p
	case U8:
		return I8
	case U16:
		return I16
	case U32:
		return I32
	case U64:
		return I64
	default:
		panic(fmt.Sprintf("dtype: no signed counterpart for %s", p))
	}
}

// MaxUnsigned returns the largest value representable by an unsigned
// class, as a uint64. Panics for signed and float classes.
func (p PType) MaxUnsigned() uint64 {
	switch p {
	case U8:
		return 1<<8 - 1
	case U16:
		return 1<<16 - 1
	case U32:
		return 1<<32 - 1
	case U64:
		return 1<<64 - 1
	default:
		panic(fmt.Sprintf("dtype: %s is not an unsigned integer type", p))
	}
}

func (p PType) String() string {
	switch p {
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("ptype(%d)", int(p))
	}
}

// ParsePType is the inverse of String. It reports false for unknown names.
func ParsePType(s string) (PType, bool) {
	switch s {
	case "u8":
		return U8, true
	case "u16":
		return U16, true
	case "u32":
		return U32, true
	case "u64":
		return U64, true
	case "i8":
		return I8, true
	case "i16":
		return I16, true
	case "i32":
		return I32, true
	case "i64":
		return I64, true
	case "f32":
		return F32, true
	case "f64":
		return F64, true
	}
	return 0, false
}

// Arrow returns the Arrow data type corresponding to this width class.
func (p PType) Arrow() arrow.DataType {
	switch p {
	case U8:
		return arrow.PrimitiveTypes.Uint8
	case U16:
		return arrow.PrimitiveTypes.Uint16
	case U32:
		return arrow.PrimitiveTypes.Uint32
	case U64:
		return arrow.PrimitiveTypes.Uint64
	case I8:
		return arrow.PrimitiveTypes.Int8
	case I16:
		return arrow.PrimitiveTypes.Int16
	case I32:
		return arrow.PrimitiveTypes.Int32
	case I64:
		return arrow.PrimitiveTypes.Int64
	case F32:
		return arrow.PrimitiveTypes.Float32
	case F64:
		return arrow.PrimitiveTypes.Float64
	default:
		panic(fmt.Sprintf("dtype: unknown ptype %d", p))
	}
}
