package array

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// Struct is the composite struct-of-columns encoding: named,
// equal-length child arrays, one per logical column. The children are
// exclusively owned by the struct; the whole array forms a tree.
type Struct struct {
	names  []string
	fields []Array
}

// NewStruct builds a struct array. All fields must share one length;
// unequal lengths indicate a construction bug upstream and panic. This
// is asserted once here and not re-checked per operation.
func NewStruct(names []string, fields []Array) *Struct {
	if len(names) != len(fields) {
		panic(fmt.Sprintf("array: struct has %d names but %d fields", len(names), len(fields)))
	}
	for i := 1; i < len(fields); i++ {
		if fields[i].Len() != fields[0].Len() {
			panic(fmt.Sprintf("array: struct field %q has length %d, want %d",
				names[i], fields[i].Len(), fields[0].Len()))
		}
	}
	return &Struct{
		names:  append([]string(nil), names...),
		fields: append([]Array(nil), fields...),
	}
}

// NumFields returns the number of columns.
func (s *Struct) NumFields() int { return len(s.fields) }

// Name returns the name of column i.
func (s *Struct) Name(i int) string { return s.names[i] }

// Field returns column i.
func (s *Struct) Field(i int) Array { return s.fields[i] }

// FieldByName returns the named column.
func (s *Struct) FieldByName(name string) (Array, bool) {
	for i, n := range s.names {
		if n == name {
			return s.fields[i], true
		}
	}
	return nil, false
}

func (s *Struct) Len() int {
	if len(s.fields) == 0 {
		return 0
	}
	return s.fields[0].Len()
}

func (s *Struct) IsEmpty() bool { return s.Len() == 0 }

func (s *Struct) DType() dtype.DType {
	fields := make([]dtype.DType, len(s.fields))
	for i, f := range s.fields {
		fields[i] = f.DType()
	}
	return dtype.NewStruct(s.names, fields)
}

// ScalarAt decodes a struct scalar by decoding every field at the same
// index, in field order. The first failing field short-circuits.
func (s *Struct) ScalarAt(index int) (scalar.Scalar, error) {
	checkIndexBounds(s.Len(), index)
	values := make([]scalar.Scalar, len(s.fields))
	for i, f := range s.fields {
		v, err := f.ScalarAt(index)
		if err != nil {
			return nil, verrors.Wrapf(err, verrors.ErrorTypeData,
				"decoding struct field %q at index %d", s.names[i], index)
		}
		values[i] = v
	}
	return scalar.NewStruct(s.names, values), nil
}

// IterArrow produces struct batches whose boundaries are realigned
// across the per-field chunk sequences; see alignedIterator.
func (s *Struct) IterArrow() ChunkIterator {
	iters := make([]ChunkIterator, len(s.fields))
	for i, f := range s.fields {
		iters[i] = f.IterArrow()
	}
	return newAlignedIterator(s.names, iters)
}

func (s *Struct) Slice(start, stop int) (Array, error) {
	// Bounds are checked once at the struct level; field lengths are
	// equal by construction, so each child slice is well-defined.
	if err := CheckSliceBounds(s.Len(), start, stop); err != nil {
		return nil, err
	}
	fields := make([]Array, len(s.fields))
	for i, f := range s.fields {
		sliced, err := f.Slice(start, stop)
		if err != nil {
			return nil, err
		}
		fields[i] = sliced
	}
	return NewStruct(s.names, fields), nil
}

// IntoCanonical canonicalizes every field. Fields are independent
// immutable arrays, so they decompress concurrently.
func (s *Struct) IntoCanonical() (Canonical, error) {
	fields := make([]Array, len(s.fields))
	var g errgroup.Group
	for i, f := range s.fields {
		g.Go(func() error {
			c, err := f.IntoCanonical()
			if err != nil {
				return verrors.Wrapf(err, verrors.ErrorTypeData,
					"canonicalizing struct field %q", s.names[i])
			}
			fields[i] = c.Array()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Canonical{}, err
	}
	return CanonicalStruct(NewStruct(s.names, fields)), nil
}

// Struct arrays have no validity of their own; null tracking belongs to
// the individual fields.
func (s *Struct) IsValid(index int) bool {
	checkIndexBounds(s.Len(), index)
	return true
}

func (s *Struct) LogicalValidity() Validity { return AllValid(s.Len()) }

func (s *Struct) NBytes() int {
	n := 0
	for _, f := range s.fields {
		n += f.NBytes()
	}
	return n
}
