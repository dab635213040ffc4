package fastlanes

import (
	"github.com/XinyuZeng/vortex/pkg/array"
	"github.com/XinyuZeng/vortex/pkg/dtype"
	verrors "github.com/XinyuZeng/vortex/pkg/errors"
	"github.com/XinyuZeng/vortex/pkg/scalar"
)

// Encode compresses a canonical primitive array against a caller-chosen
// reference and shift. Choosing good parameters (typically reference =
// minimum value, shift = common trailing-zero count) is the caller's
// concern; Encode only verifies the choice is lossless.
//
// Each offset is (value - reference) >> shift in the target width's
// modular arithmetic. A value whose delta has non-zero bits below the
// shift cannot be represented and fails with a data error.
func Encode(p *array.Primitive, reference scalar.Primitive, shift uint8) (*FoRArray, error) {
	if reference.IsNull() {
		return nil, verrors.New(verrors.ErrorTypeData, "frame-of-reference value cannot be null")
	}
	target := p.Primitive().PType()
	if reference.PType() != target {
		return nil, verrors.Newf(verrors.ErrorTypeValidation,
			"reference type %s does not match array type %s", reference.PType(), target)
	}
	if !target.IsInt() {
		return nil, verrors.Newf(verrors.ErrorTypeValidation,
			"frame-of-reference requires an integer type, got %s", target)
	}
	if int(shift) >= target.BitWidth() {
		return nil, verrors.Newf(verrors.ErrorTypeValidation,
			"shift %d exceeds %s bit width", shift, target)
	}

	n := p.Len()
	width := uint(target.BitWidth())
	var widthMask uint64 = ^uint64(0)
	if width < 64 {
		widthMask = 1<<width - 1
	}
	lowMask := uint64(1)<<shift - 1

	offsets := make([]uint64, n)
	var valid []bool
	validity := p.LogicalValidity()
	if validity.AnyInvalid() {
		valid = make([]bool, n)
	}
	for i := 0; i < n; i++ {
		if valid != nil {
			valid[i] = validity.IsValid(i)
			if !valid[i] {
				continue
			}
		}
		s, err := p.ScalarAt(i)
		if err != nil {
			return nil, err
		}
		delta := (s.(scalar.Primitive).Bits() - reference.Bits()) & widthMask
		if delta&lowMask != 0 {
			return nil, verrors.Newf(verrors.ErrorTypeData,
				"value at index %d is not representable with shift %d", i, shift)
		}
		offsets[i] = delta >> shift
	}

	childDT := dtype.NewPrimitive(target.ToUnsigned(), p.Primitive().Nullability())
	return TryNew(array.PrimitiveFromBits(childDT, offsets, valid), reference, shift)
}
