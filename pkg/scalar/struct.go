package scalar

import (
	"fmt"
	"strings"

	"github.com/XinyuZeng/vortex/pkg/dtype"
)

// Struct is a composite scalar: one value per field of a struct array,
// positionally aligned with the field names.
type Struct struct {
	names  []string
	values []Scalar
}

// NewStruct builds a struct scalar. Names and values must be aligned; a
// mismatch is a construction bug and panics.
func NewStruct(names []string, values []Scalar) Struct {
	if len(names) != len(values) {
		panic(fmt.Sprintf("scalar: struct has %d names but %d values", len(names), len(values)))
	}
	return Struct{names: names, values: values}
}

// NumFields returns the number of field values.
func (s Struct) NumFields() int { return len(s.values) }

// Field returns the value of field i.
func (s Struct) Field(i int) Scalar { return s.values[i] }

// FieldByName returns the value of the named field.
func (s Struct) FieldByName(name string) (Scalar, bool) {
	for i, n := range s.names {
		if n == name {
			return s.values[i], true
		}
	}
	return nil, false
}

func (s Struct) DType() dtype.DType {
	fields := make([]dtype.DType, len(s.values))
	for i, v := range s.values {
		fields[i] = v.DType()
	}
	return dtype.NewStruct(s.names, fields)
}

// Struct scalars are never null themselves; nullness lives in the
// individual field values.
func (s Struct) IsNull() bool { return false }

func (s Struct) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, v := range s.values {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", s.names[i], v)
	}
	b.WriteString("}")
	return b.String()
}
