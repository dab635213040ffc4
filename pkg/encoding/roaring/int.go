// Package roaring implements the bitmap-compressed unsigned integer
// encoding: a compressed roaring bitmap of set values plus the physical
// width of the reconstructed scalars. Logical index i maps to the i-th
// smallest value in the bitmap, retrieved by select-by-rank, which
// gives random access without decompressing the array. The natural fit
// is sparse or monotonic unsigned columns such as dictionary codes and
// selection vectors.
package roaring

import (
	"fmt"

	roaringbitmap "github.com/RoaringBitmap/roaring/v2"
	"github.com/apache/arrow-go/v18/arrow"

	"github.com/XinyuZeng/vortex/pkg/array"
	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/metrics"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// EncodingID identifies this encoding in message headers.
const EncodingID = "vortex.roaring_int"

// IntArray is a bitmap-compressed array of distinct unsigned integers
// in ascending order.
type IntArray struct {
	bitmap *roaringbitmap.Bitmap
	ptype  dtype.PType
	length int
}

// TryNew builds a bitmap-compressed integer array. The declared ptype
// must be an unsigned class wide enough for every stored value; access
// paths assume this invariant and do not re-validate it.
func TryNew(bitmap *roaringbitmap.Bitmap, ptype dtype.PType) (*IntArray, error) {
	if !ptype.IsUnsignedInt() {
		return nil, verrors.Newf(verrors.ErrorTypeValidation,
			"bitmap-compressed integers require an unsigned type, got %s", ptype)
	}
	if !bitmap.IsEmpty() && uint64(bitmap.Maximum()) > ptype.MaxUnsigned() {
		return nil, verrors.Newf(verrors.ErrorTypeValidation,
			"bitmap maximum %d does not fit in %s", bitmap.Maximum(), ptype)
	}
	// Clone so the array exclusively owns its bitmap.
	bitmap = bitmap.Clone()
	return &IntArray{bitmap: bitmap, ptype: ptype, length: int(bitmap.GetCardinality())}, nil
}

// FromValues builds a bitmap-compressed array from a set of values.
// Duplicates collapse; the logical order is always ascending.
func FromValues(values []uint32, ptype dtype.PType) (*IntArray, error) {
	bm := roaringbitmap.New()
	bm.AddMany(values)
	return TryNew(bm, ptype)
}

// Bitmap returns a copy of the underlying bitmap.
func (a *IntArray) Bitmap() *roaringbitmap.Bitmap { return a.bitmap.Clone() }

// PType returns the physical width of reconstructed scalars.
func (a *IntArray) PType() dtype.PType { return a.ptype }

func (a *IntArray) Len() int { return a.length }

func (a *IntArray) IsEmpty() bool { return a.length == 0 }

func (a *IntArray) DType() dtype.DType {
	return dtype.NewPrimitive(a.ptype, dtype.NonNullable)
}

// ScalarAt selects the value whose rank among set values equals index.
func (a *IntArray) ScalarAt(index int) (scalar.Scalar, error) {
	if index < 0 || index >= a.length {
		panic(fmt.Sprintf("roaring: index %d out of range for array of length %d", index, a.length))
	}
	v, err := a.bitmap.Select(uint32(index))
	if err != nil {
		// The bounds check above makes a failed select impossible.
		panic(fmt.Sprintf("roaring: select(%d) failed on bitmap of cardinality %d: %v", index, a.length, err))
	}
	switch a.ptype {
	case dtype.U8:
		return scalar.Uint8(uint8(v)), nil
	case dtype.U16:
		return scalar.Uint16(uint16(v)), nil
	case dtype.U32:
		return scalar.Uint32(v), nil
	case dtype.U64:
		return scalar.Uint64(uint64(v)), nil
	default:
		// TryNew disallows signed and float classes.
		panic(fmt.Sprintf("roaring: impossible ptype %s", a.ptype))
	}
}

func (a *IntArray) IterArrow() array.ChunkIterator {
	return array.NewDeferredChunks(func() ([]arrow.Array, error) {
		c, err := a.IntoCanonical()
		if err != nil {
			return nil, err
		}
		p, _ := c.Primitive()
		return []arrow.Array{p.Data()}, nil
	})
}

// Slice materializes the rank window [start, stop) into a new bitmap.
func (a *IntArray) Slice(start, stop int) (array.Array, error) {
	if err := array.CheckSliceBounds(a.length, start, stop); err != nil {
		return nil, err
	}
	out := roaringbitmap.New()
	if start < stop {
		first, err := a.bitmap.Select(uint32(start))
		if err != nil {
			return nil, verrors.Wrap(err, verrors.ErrorTypeInternal, "selecting slice start")
		}
		it := a.bitmap.Iterator()
		it.AdvanceIfNeeded(first)
		for i := start; i < stop; i++ {
			out.Add(it.Next())
		}
	}
	return TryNew(out, a.ptype)
}

// IntoCanonical materializes every value into a canonical primitive
// array of the declared width.
func (a *IntArray) IntoCanonical() (array.Canonical, error) {
	timer := metrics.NewDecodeTimer(EncodingID)
	defer timer.Stop()

	values := a.bitmap.ToArray()
	bits := make([]uint64, len(values))
	for i, v := range values {
		bits[i] = uint64(v)
	}
	dt := dtype.NewPrimitive(a.ptype, dtype.NonNullable)
	return array.CanonicalPrimitive(array.PrimitiveFromBits(dt, bits, nil)), nil
}

// Every position held by the bitmap is a present value; the encoding
// cannot represent nulls.
func (a *IntArray) IsValid(index int) bool {
	if index < 0 || index >= a.length {
		panic(fmt.Sprintf("roaring: index %d out of range for array of length %d", index, a.length))
	}
	return true
}

func (a *IntArray) LogicalValidity() array.Validity { return array.AllValid(a.length) }

func (a *IntArray) NBytes() int { return int(a.bitmap.GetSizeInBytes()) }
