package array

import (
	"fmt"
	"math"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
)

// arrowBitsAt reads the raw bit pattern of a non-null element from an
// Arrow primitive array.
func arrowBitsAt(a arrow.Array, i int) uint64 {
	switch v := a.(type) {
	case *arrowarray.Uint8:
		return uint64(v.Value(i))
	case *arrowarray.Uint16:
		return uint64(v.Value(i))
	case *arrowarray.Uint32:
		return uint64(v.Value(i))
	case *arrowarray.Uint64:
		return v.Value(i)
	case *arrowarray.Int8:
		return uint64(uint8(v.Value(i)))
	case *arrowarray.Int16:
		return uint64(uint16(v.Value(i)))
	case *arrowarray.Int32:
		return uint64(uint32(v.Value(i)))
	case *arrowarray.Int64:
		return uint64(v.Value(i))
	case *arrowarray.Float32:
		return uint64(math.Float32bits(v.Value(i)))
	case *arrowarray.Float64:
		return math.Float64bits(v.Value(i))
	default:
		panic(fmt.Sprintf("array: unsupported arrow array type %T", a))
	}
}

// PrimitiveFromBits builds a canonical primitive array from raw bit
// patterns of the declared width. A nil valid mask means no nulls.
// Decompression paths use this to materialize decoded values without
// per-width append code at every call site.
func PrimitiveFromBits(dt dtype.Primitive, bits []uint64, valid []bool) *Primitive {
	if valid != nil && len(valid) != len(bits) {
		panic(fmt.Sprintf("array: %d values with validity mask of length %d", len(bits), len(valid)))
	}
	b := arrowarray.NewBuilder(memory.DefaultAllocator, dt.PType().Arrow())
	defer b.Release()
	for i, v := range bits {
		if valid != nil && !valid[i] {
			b.AppendNull()
			continue
		}
		appendBits(b, v)
	}
	return NewPrimitive(dt, b.NewArray())
}

func appendBits(b arrowarray.Builder, bits uint64) {
	switch bb := b.(type) {
	case *arrowarray.Uint8Builder:
		bb.Append(uint8(bits))
	case *arrowarray.Uint16Builder:
		bb.Append(uint16(bits))
	case *arrowarray.Uint32Builder:
		bb.Append(uint32(bits))
	case *arrowarray.Uint64Builder:
		bb.Append(bits)
	case *arrowarray.Int8Builder:
		bb.Append(int8(bits))
	case *arrowarray.Int16Builder:
		bb.Append(int16(bits))
	case *arrowarray.Int32Builder:
		bb.Append(int32(bits))
	case *arrowarray.Int64Builder:
		bb.Append(int64(bits))
	case *arrowarray.Float32Builder:
		bb.Append(math.Float32frombits(uint32(bits)))
	case *arrowarray.Float64Builder:
		bb.Append(math.Float64frombits(bits))
	default:
		panic(fmt.Sprintf("array: unsupported builder type %T", b))
	}
}

// FromArrow wraps an Arrow array as the canonical encoding for the
// given logical type: primitive arrays become Primitive, struct arrays
// become Struct over canonical fields.
func FromArrow(dt dtype.DType, data arrow.Array) (Array, error) {
	switch t := dt.(type) {
	case dtype.Primitive:
		if !arrow.TypeEqual(data.DataType(), t.PType().Arrow()) {
			return nil, verrors.Newf(verrors.ErrorTypeValidation,
				"arrow type %s does not match logical type %s", data.DataType(), dt)
		}
		return NewPrimitive(t, data), nil
	case dtype.Struct:
		sa, ok := data.(*arrowarray.Struct)
		if !ok || sa.NumField() != t.NumFields() {
			return nil, verrors.Newf(verrors.ErrorTypeValidation,
				"arrow array %s does not match struct type %s", data.DataType(), dt)
		}
		fields := make([]Array, t.NumFields())
		for i := range fields {
			f, err := FromArrow(t.Field(i), sa.Field(i))
			if err != nil {
				return nil, err
			}
			fields[i] = f
		}
		return NewStruct(t.Names(), fields), nil
	default:
		return nil, verrors.Newf(verrors.ErrorTypeValidation, "unsupported logical type %s", dt)
	}
}
