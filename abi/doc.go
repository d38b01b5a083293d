// Package abi defines type descriptors and computes their binary layout.
//
// A Type describes the shape of a native value the way the host
// language's type resolution sees it. The Calculator turns a descriptor
// into a Layout: size, alignment, and field offsets.
//
// # Layout Rules
//
//	Kind            Size          Alignment
//	─────────────────────────────────────────
//	s8/u8           1             1
//	s16/u16         2             2
//	s32/u32/f32     4             4
//	s64/u64/f64     8             8
//	nint/nuint      PointerSize   PointerSize
//	nfloat          PointerSize   PointerSize
//	ptr/funcptr     PointerSize   PointerSize
//	reference       PointerSize   PointerSize
//	aggregate       field walk    max field align (or override)
//
// Aggregates walk declared fields in order; each field's offset is the
// running cursor rounded up to the field's alignment, and the total size
// is the final cursor rounded up to the aggregate's alignment. An
// explicit alignment override on the aggregate is honored verbatim as
// long as it is a power of two, including overrides below the natural
// alignment (packed layouts).
//
// References are always a single native-width slot regardless of the
// referenced type, so handles flatten uniformly into argument buffers.
//
// Constness wraps a descriptor without changing its layout; it only
// constrains assignability (see CanAssign).
//
// # Failure
//
// Void and unknown kinds have no layout and fail with unresolved_type.
// An aggregate whose field graph contains itself by value, directly or
// transitively through anything but a pointer or reference field, fails
// with cyclic_type at first detection rather than recursing.
package abi
