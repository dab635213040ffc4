package array

// Canonical wraps an array known to be fully decompressed: the
// universal "give me the real data" escape hatch for algorithms that
// cannot operate on compressed state. Only the canonical encodings
// (Primitive, Struct over canonical fields) appear inside.
type Canonical struct {
	arr Array
}

// CanonicalPrimitive wraps a canonical primitive array.
func CanonicalPrimitive(p *Primitive) Canonical {
	return Canonical{arr: p}
}

// CanonicalStruct wraps a struct whose fields are all canonical.
func CanonicalStruct(s *Struct) Canonical {
	return Canonical{arr: s}
}

// Array returns the canonical array under the capability interface.
func (c Canonical) Array() Array { return c.arr }

// Primitive returns the inner primitive array, if that is what this
// canonical value holds.
func (c Canonical) Primitive() (*Primitive, bool) {
	p, ok := c.arr.(*Primitive)
	return p, ok
}

// Struct returns the inner struct array, if that is what this canonical
// value holds.
func (c Canonical) Struct() (*Struct, bool) {
	s, ok := c.arr.(*Struct)
	return s, ok
}
