// Package dtype defines the logical type system shared by every array
// encoding: a physical width class (PType) for primitive values, a
// nullability flag, and composite struct types built from named fields.
// Logical types are encoding-independent; the same DType may be backed
// by a canonical, compressed, or composite physical representation.
package dtype

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// Nullability says whether a type admits null values.
type Nullability bool

const (
	NonNullable Nullability = false
	Nullable    Nullability = true
)

// DType is a logical type. It is a closed set: Primitive and Struct.
type DType interface {
	// Nullability reports whether values of this type may be null.
	Nullability() Nullability
	// Equal reports structural equality. For struct types, field order
	// is part of type identity.
	Equal(other DType) bool
	// Arrow returns the canonical interchange representation of this type.
	Arrow() arrow.DataType
	String() string
}

// Primitive is a fixed-width scalar logical type.
type Primitive struct {
	ptype    PType
	nullable Nullability
}

// NewPrimitive builds a primitive logical type.
func NewPrimitive(p PType, n Nullability) Primitive {
	return Primitive{ptype: p, nullable: n}
}

// PType returns the physical width class.
func (p Primitive) PType() PType { return p.ptype }

func (p Primitive) Nullability() Nullability { return p.nullable }

// WithNullability returns the same width class under a different
// nullability.
func (p Primitive) WithNullability(n Nullability) Primitive {
	return Primitive{ptype: p.ptype, nullable: n}
}

func (p Primitive) Equal(other DType) bool {
	o, ok := other.(Primitive)
	return ok && o == p
}

func (p Primitive) Arrow() arrow.DataType { return p.ptype.Arrow() }

func (p Primitive) String() string {
	if p.nullable {
		return p.ptype.String() + "?"
	}
	return p.ptype.String()
}

// Struct is a composite logical type: an ordered list of uniquely named
// child types. Field order is part of type identity.
type Struct struct {
	names  []string
	fields []DType
}

// NewStruct builds a struct logical type. The names and fields must be
// positionally aligned; a length mismatch or duplicate name is a
// construction bug and panics.
func NewStruct(names []string, fields []DType) Struct {
	if len(names) != len(fields) {
		panic(fmt.Sprintf("dtype: struct has %d names but %d fields", len(names), len(fields)))
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			panic(fmt.Sprintf("dtype: duplicate struct field name %q", n))
		}
		seen[n] = struct{}{}
	}
	return Struct{
		names:  append([]string(nil), names...),
		fields: append([]DType(nil), fields...),
	}
}

// NumFields returns the number of fields.
func (s Struct) NumFields() int { return len(s.fields) }

// Name returns the name of field i.
func (s Struct) Name(i int) string { return s.names[i] }

// Field returns the logical type of field i.
func (s Struct) Field(i int) DType { return s.fields[i] }

// Names returns a copy of the field names in declaration order.
func (s Struct) Names() []string { return append([]string(nil), s.names...) }

// Struct types carry no nullability of their own; null tracking belongs
// to individual fields.
func (s Struct) Nullability() Nullability { return NonNullable }

func (s Struct) Equal(other DType) bool {
	o, ok := other.(Struct)
	if !ok || len(o.fields) != len(s.fields) {
		return false
	}
	for i := range s.fields {
		if o.names[i] != s.names[i] || !o.fields[i].Equal(s.fields[i]) {
			return false
		}
	}
	return true
}

func (s Struct) Arrow() arrow.DataType {
	fields := make([]arrow.Field, len(s.fields))
	for i, f := range s.fields {
		fields[i] = arrow.Field{
			Name:     s.names[i],
			Type:     f.Arrow(),
			Nullable: bool(f.Nullability()),
		}
	}
	return arrow.StructOf(fields...)
}

func (s Struct) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i := range s.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %s", s.names[i], s.fields[i])
	}
	b.WriteString("}")
	return b.String()
}
