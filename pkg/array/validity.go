package array

// Validity is the logical validity of an array: uniformly valid,
// uniformly invalid, or a per-element mask.
type Validity struct {
	length   int
	allValid bool
	mask     []bool // nil unless mixed
}

// AllValid describes an array of n entirely non-null values.
func AllValid(n int) Validity {
	return Validity{length: n, allValid: true}
}

// AllInvalid describes an array of n entirely null values.
func AllInvalid(n int) Validity {
	return Validity{length: n}
}

// ValidityFromMask builds a validity from a per-element mask, collapsing
// to the uniform representations when possible.
func ValidityFromMask(mask []bool) Validity {
	valid := 0
	for _, v := range mask {
		if v {
			valid++
		}
	}
	switch valid {
	case len(mask):
		return AllValid(len(mask))
	case 0:
		return AllInvalid(len(mask))
	}
	return Validity{length: len(mask), mask: append([]bool(nil), mask...)}
}

// Len returns the number of entries covered.
func (v Validity) Len() int { return v.length }

// IsValid reports whether entry i is non-null.
func (v Validity) IsValid(i int) bool {
	checkIndexBounds(v.length, i)
	if v.mask == nil {
		return v.allValid
	}
	return v.mask[i]
}

// AnyInvalid reports whether at least one entry is null.
func (v Validity) AnyInvalid() bool {
	return !(v.mask == nil && v.allValid) && v.length > 0
}

// CountValid returns the number of non-null entries.
func (v Validity) CountValid() int {
	if v.mask == nil {
		if v.allValid {
			return v.length
		}
		return 0
	}
	n := 0
	for _, ok := range v.mask {
		if ok {
			n++
		}
	}
	return n
}
