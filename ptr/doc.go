// Package ptr provides typed native pointers and raw memory access.
//
// A Ptr is a raw address tagged with an element kind. The tag buys
// element-scaled arithmetic (Add, Index) and reinterpretation to another
// element kind, implemented as a single table lookup rather than
// per-type code:
//
//	p := ptr.Int(addr)          // s32 elements
//	third := p.Index(2)         // addr + 2*4
//	d, err := p.Reinterpret(abi.KindF64)
//
// Raw access is generic and unchecked:
//
//	ptr.Store[int32](addr, 42)
//	v := ptr.Load[int32](addr)
//
// The LoadInt32/StoreFloat64 style helpers on Ptr check the element tag
// first, so a mistagged pointer fails instead of reading through the
// wrong width.
//
// Callers own validity: addresses must come from a live allocation and
// satisfy the element's alignment. Nothing in this package retains or
// releases memory.
package ptr
