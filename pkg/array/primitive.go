package array

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	arrowarray "github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// Primitive is the canonical fixed-width encoding: values live in an
// Arrow primitive array of the matching width, with Arrow's validity
// bitmap tracking nulls.
type Primitive struct {
	dt   dtype.Primitive
	data arrow.Array
}

// NewPrimitive wraps an Arrow array as a canonical primitive array. The
// Arrow type must match the declared width class; a mismatch is a
// construction bug and panics.
func NewPrimitive(dt dtype.Primitive, data arrow.Array) *Primitive {
	if !arrow.TypeEqual(data.DataType(), dt.PType().Arrow()) {
		panic(fmt.Sprintf("array: arrow type %s does not match ptype %s", data.DataType(), dt.PType()))
	}
	if dt.Nullability() == dtype.NonNullable && data.NullN() > 0 {
		panic(fmt.Sprintf("array: %d nulls in non-nullable primitive array", data.NullN()))
	}
	return &Primitive{dt: dt, data: data}
}

// PrimitiveFromUint8 builds a u8 array. A nil valid mask means all
// values are non-null; otherwise the array is nullable and valid[i]
// marks value i present.
func PrimitiveFromUint8(values []uint8, valid []bool) *Primitive {
	b := arrowarray.NewUint8Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.U8, valid), b.NewArray())
}

// PrimitiveFromUint16 builds a u16 array.
func PrimitiveFromUint16(values []uint16, valid []bool) *Primitive {
	b := arrowarray.NewUint16Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.U16, valid), b.NewArray())
}

// PrimitiveFromUint32 builds a u32 array.
func PrimitiveFromUint32(values []uint32, valid []bool) *Primitive {
	b := arrowarray.NewUint32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.U32, valid), b.NewArray())
}

// PrimitiveFromUint64 builds a u64 array.
func PrimitiveFromUint64(values []uint64, valid []bool) *Primitive {
	b := arrowarray.NewUint64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.U64, valid), b.NewArray())
}

// PrimitiveFromInt8 builds an i8 array.
func PrimitiveFromInt8(values []int8, valid []bool) *Primitive {
	b := arrowarray.NewInt8Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.I8, valid), b.NewArray())
}

// PrimitiveFromInt16 builds an i16 array.
func PrimitiveFromInt16(values []int16, valid []bool) *Primitive {
	b := arrowarray.NewInt16Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.I16, valid), b.NewArray())
}

// PrimitiveFromInt32 builds an i32 array.
func PrimitiveFromInt32(values []int32, valid []bool) *Primitive {
	b := arrowarray.NewInt32Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.I32, valid), b.NewArray())
}

// PrimitiveFromInt64 builds an i64 array.
func PrimitiveFromInt64(values []int64, valid []bool) *Primitive {
	b := arrowarray.NewInt64Builder(memory.DefaultAllocator)
	defer b.Release()
	b.AppendValues(values, valid)
	return NewPrimitive(primitiveDType(dtype.I64, valid), b.NewArray())
}

func primitiveDType(p dtype.PType, valid []bool) dtype.Primitive {
	if valid == nil {
		return dtype.NewPrimitive(p, dtype.NonNullable)
	}
	return dtype.NewPrimitive(p, dtype.Nullable)
}

// Primitive returns the concrete primitive logical type.
func (p *Primitive) Primitive() dtype.Primitive { return p.dt }

// Data returns the backing Arrow array.
func (p *Primitive) Data() arrow.Array { return p.data }

func (p *Primitive) Len() int { return p.data.Len() }

func (p *Primitive) IsEmpty() bool { return p.Len() == 0 }

func (p *Primitive) DType() dtype.DType { return p.dt }

func (p *Primitive) ScalarAt(index int) (scalar.Scalar, error) {
	checkIndexBounds(p.Len(), index)
	if p.data.IsNull(index) {
		return scalar.Null(p.dt), nil
	}
	return scalar.FromBits(p.dt, arrowBitsAt(p.data, index)), nil
}

func (p *Primitive) IterArrow() ChunkIterator {
	return NewChunkSeq(p.data)
}

func (p *Primitive) Slice(start, stop int) (Array, error) {
	if err := CheckSliceBounds(p.Len(), start, stop); err != nil {
		return nil, err
	}
	// Arrow buffers are immutable and reference counted, so the slice
	// owns its data independently of the receiver.
	return NewPrimitive(p.dt, arrowarray.NewSlice(p.data, int64(start), int64(stop))), nil
}

func (p *Primitive) IntoCanonical() (Canonical, error) {
	return CanonicalPrimitive(p), nil
}

func (p *Primitive) IsValid(index int) bool {
	checkIndexBounds(p.Len(), index)
	return p.data.IsValid(index)
}

func (p *Primitive) LogicalValidity() Validity {
	switch p.data.NullN() {
	case 0:
		return AllValid(p.Len())
	case p.Len():
		return AllInvalid(p.Len())
	}
	mask := make([]bool, p.Len())
	for i := range mask {
		mask[i] = p.data.IsValid(i)
	}
	return ValidityFromMask(mask)
}

func (p *Primitive) NBytes() int {
	n := p.dt.PType().ByteWidth() * p.Len()
	if p.data.NullN() > 0 {
		n += (p.Len() + 7) / 8
	}
	return n
}
