package abi

import "math/bits"

// PointerSize is the native pointer width of the host in bytes
// (4 on 32-bit targets, 8 on 64-bit targets).
const PointerSize = bits.UintSize / 8

type Kind uint8

const (
	KindVoid Kind = iota
	KindS8
	KindS16
	KindS32
	KindS64
	KindU8
	KindU16
	KindU32
	KindU64
	KindF32
	KindF64
	KindNInt
	KindNUInt
	KindNFloat
	KindPtr
	KindFuncPtr
	KindAggregate
	KindReference
)

var kindNames = [...]string{
	KindVoid:      "void",
	KindS8:        "s8",
	KindS16:       "s16",
	KindS32:       "s32",
	KindS64:       "s64",
	KindU8:        "u8",
	KindU16:       "u16",
	KindU32:       "u32",
	KindU64:       "u64",
	KindF32:       "f32",
	KindF64:       "f64",
	KindNInt:      "nint",
	KindNUInt:     "nuint",
	KindNFloat:    "nfloat",
	KindPtr:       "ptr",
	KindFuncPtr:   "funcptr",
	KindAggregate: "aggregate",
	KindReference: "reference",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsPrimitive reports whether the kind is a fixed-width or native-width
// scalar (everything below pointers).
func (k Kind) IsPrimitive() bool {
	return k >= KindS8 && k <= KindNFloat
}

// IsSigned reports whether the kind is a signed integer.
func (k Kind) IsSigned() bool {
	switch k {
	case KindS8, KindS16, KindS32, KindS64, KindNInt:
		return true
	}
	return false
}

// IsFloat reports whether the kind is a floating point type.
func (k Kind) IsFloat() bool {
	switch k {
	case KindF32, KindF64, KindNFloat:
		return true
	}
	return false
}

// IsAddress reports whether the kind occupies a single native-width
// address slot (pointers, function pointers, and reference handles).
func (k Kind) IsAddress() bool {
	switch k {
	case KindPtr, KindFuncPtr, KindReference:
		return true
	}
	return false
}

// FixedSize returns the intrinsic size of a non-aggregate kind in bytes,
// or 0 when the kind has no intrinsic size (void, aggregate).
func (k Kind) FixedSize() uint32 {
	switch k {
	case KindS8, KindU8:
		return 1
	case KindS16, KindU16:
		return 2
	case KindS32, KindU32, KindF32:
		return 4
	case KindS64, KindU64, KindF64:
		return 8
	case KindNInt, KindNUInt, KindNFloat, KindPtr, KindFuncPtr, KindReference:
		return PointerSize
	default:
		return 0
	}
}
