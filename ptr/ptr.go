package ptr

import (
	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/errors"
)

// elemSizes is the single reinterpretation table: element size per kind.
// A zero entry means the kind is not a valid pointer element.
var elemSizes = [...]uintptr{
	abi.KindS8:        1,
	abi.KindU8:        1,
	abi.KindS16:       2,
	abi.KindU16:       2,
	abi.KindS32:       4,
	abi.KindU32:       4,
	abi.KindF32:       4,
	abi.KindS64:       8,
	abi.KindU64:       8,
	abi.KindF64:       8,
	abi.KindNInt:      abi.PointerSize,
	abi.KindNUInt:     abi.PointerSize,
	abi.KindNFloat:    abi.PointerSize,
	abi.KindPtr:       abi.PointerSize,
	abi.KindFuncPtr:   abi.PointerSize,
	abi.KindReference: abi.PointerSize,
}

// ElemSize returns the element size for a pointer of the given kind, or
// 0 when the kind is not a valid pointer element.
func ElemSize(kind abi.Kind) uintptr {
	if int(kind) >= len(elemSizes) {
		return 0
	}
	return elemSizes[kind]
}

// Ptr is a typed native pointer: a raw address tagged with an element
// kind. The tag adds element-scaled arithmetic and reinterpretation; it
// carries no other state.
type Ptr struct {
	addr kwire.Address
	kind abi.Kind
}

// To builds a typed pointer over addr with the given element kind.
func To(addr kwire.Address, kind abi.Kind) Ptr {
	return Ptr{addr: addr, kind: kind}
}

// Typed constructors for the common element kinds.

func Byte(addr kwire.Address) Ptr   { return To(addr, abi.KindU8) }
func Short(addr kwire.Address) Ptr  { return To(addr, abi.KindS16) }
func Int(addr kwire.Address) Ptr    { return To(addr, abi.KindS32) }
func Long(addr kwire.Address) Ptr   { return To(addr, abi.KindS64) }
func Float(addr kwire.Address) Ptr  { return To(addr, abi.KindF32) }
func Double(addr kwire.Address) Ptr { return To(addr, abi.KindF64) }
func Addr(addr kwire.Address) Ptr   { return To(addr, abi.KindPtr) }

// Address returns the raw address.
func (p Ptr) Address() kwire.Address {
	return p.addr
}

// Kind returns the element kind tag.
func (p Ptr) Kind() abi.Kind {
	return p.kind
}

// IsNull reports whether the pointer is the canonical null.
func (p Ptr) IsNull() bool {
	return p.addr.IsNull()
}

// ElemSize returns the size of one element.
func (p Ptr) ElemSize() uintptr {
	return ElemSize(p.kind)
}

// Add returns the pointer advanced by n elements (n may be negative).
func (p Ptr) Add(n int) Ptr {
	return Ptr{
		addr: p.addr + kwire.Address(n)*kwire.Address(ElemSize(p.kind)),
		kind: p.kind,
	}
}

// Sub returns the pointer moved back by n elements.
func (p Ptr) Sub(n int) Ptr {
	return p.Add(-n)
}

// Index returns the address of the i-th element.
func (p Ptr) Index(i int) kwire.Address {
	return p.Add(i).addr
}

// Reinterpret returns a pointer to the same address with a different
// element kind. The target must be a valid pointer element; aggregate,
// void, and unknown kinds fail with an unknown_pointer_kind error.
func (p Ptr) Reinterpret(kind abi.Kind) (Ptr, error) {
	if ElemSize(kind) == 0 {
		return Ptr{}, errors.UnknownPointerKind(kind.String())
	}
	return Ptr{addr: p.addr, kind: kind}, nil
}

func (p Ptr) checkKind(want abi.Kind) error {
	if p.kind != want {
		return errors.InvalidInput(errors.PhasePointer,
			"pointer tagged %s accessed as %s", p.kind, want)
	}
	return nil
}

// Kind-checked element access. Each helper verifies the element tag
// before touching memory, so a mistagged pointer fails instead of
// reading through the wrong width.

func (p Ptr) LoadInt32() (int32, error) {
	if err := p.checkKind(abi.KindS32); err != nil {
		return 0, err
	}
	return Load[int32](p.addr), nil
}

func (p Ptr) LoadInt64() (int64, error) {
	if err := p.checkKind(abi.KindS64); err != nil {
		return 0, err
	}
	return Load[int64](p.addr), nil
}

func (p Ptr) LoadFloat32() (float32, error) {
	if err := p.checkKind(abi.KindF32); err != nil {
		return 0, err
	}
	return Load[float32](p.addr), nil
}

func (p Ptr) LoadFloat64() (float64, error) {
	if err := p.checkKind(abi.KindF64); err != nil {
		return 0, err
	}
	return Load[float64](p.addr), nil
}

func (p Ptr) LoadAddr() (kwire.Address, error) {
	if err := p.checkKind(abi.KindPtr); err != nil {
		return kwire.Null, err
	}
	return Load[kwire.Address](p.addr), nil
}

func (p Ptr) StoreInt32(v int32) error {
	if err := p.checkKind(abi.KindS32); err != nil {
		return err
	}
	Store(p.addr, v)
	return nil
}

func (p Ptr) StoreInt64(v int64) error {
	if err := p.checkKind(abi.KindS64); err != nil {
		return err
	}
	Store(p.addr, v)
	return nil
}

func (p Ptr) StoreFloat64(v float64) error {
	if err := p.checkKind(abi.KindF64); err != nil {
		return err
	}
	Store(p.addr, v)
	return nil
}

func (p Ptr) StoreAddr(v kwire.Address) error {
	if err := p.checkKind(abi.KindPtr); err != nil {
		return err
	}
	Store(p.addr, v)
	return nil
}
