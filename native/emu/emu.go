package emu

import (
	"math"
	"sync"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/dispatch"
	"github.com/karmakrafts/kWire-sub000/errors"
	"github.com/karmakrafts/kWire-sub000/ptr"
)

// targetBase offsets synthetic targets away from low addresses so a
// misrouted real pointer fails the table lookup instead of aliasing a
// registered function.
const targetBase kwire.Address = 0x10000

type hostFunc struct {
	sig *dispatch.Signature
	fn  func(args []uint64) uint64
}

// Host is an in-process call primitive. Registered Go functions receive
// flattened argument slots the way a native callee would see them and
// return raw result bits. Safe for concurrent use.
type Host struct {
	mu      sync.Mutex
	calc    *abi.Calculator
	targets map[kwire.Address]hostFunc
	next    kwire.Address
}

// NewHost creates an empty host function table.
func NewHost() *Host {
	return &Host{
		calc:    abi.NewCalculator(),
		targets: make(map[kwire.Address]hostFunc),
		next:    targetBase,
	}
}

// Register adds fn under a fresh synthetic target address. The function
// receives one uint64 slot per signature parameter: integers
// sign-extended or zero-extended to 64 bits, floats as IEEE-754 bit
// patterns, addresses verbatim, and aggregates as the address of their
// staged copy.
func (h *Host) Register(sig *dispatch.Signature, fn func(args []uint64) uint64) kwire.Address {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next += kwire.Address(abi.PointerSize)
	target := h.next
	h.targets[target] = hostFunc{sig: sig, fn: fn}
	return target
}

// Trampoline resolves a registered target. The argument loaders are
// precomputed here so the returned trampoline only walks buffer memory.
func (h *Host) Trampoline(target kwire.Address, sig *dispatch.Signature) (dispatch.Trampoline, error) {
	h.mu.Lock()
	entry, ok := h.targets[target]
	h.mu.Unlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseNative, "no host function at %#x", uintptr(target))
	}
	if len(entry.sig.Params) != len(sig.Params) {
		return nil, errors.New(errors.PhaseNative, errors.KindSignatureMismatch).
			Detail("target registered with %d parameters, called with %d",
				len(entry.sig.Params), len(sig.Params)).
			Build()
	}

	loaders := make([]argLoader, len(sig.Params))
	var off uintptr
	for i, p := range sig.Params {
		load, size, err := h.loaderFor(p)
		if err != nil {
			return nil, err
		}
		fieldOff := off
		loaders[i] = func(base kwire.Address) uint64 {
			return load(base + kwire.Address(fieldOff))
		}
		off += size
	}

	fn := entry.fn
	return func(argBase kwire.Address) (uint64, error) {
		args := make([]uint64, len(loaders))
		for i, ld := range loaders {
			args[i] = ld(argBase)
		}
		return fn(args), nil
	}, nil
}

type argLoader func(base kwire.Address) uint64

// loaderFor returns the flattening load for one parameter descriptor
// plus its footprint in the packed argument region.
func (h *Host) loaderFor(t *abi.Type) (func(kwire.Address) uint64, uintptr, error) {
	if t == nil {
		return nil, 0, errors.InvalidInput(errors.PhaseNative, "nil parameter descriptor")
	}
	switch t.Kind {
	case abi.KindS8:
		return func(a kwire.Address) uint64 { return uint64(int64(ptr.Load[int8](a))) }, 1, nil
	case abi.KindS16:
		return func(a kwire.Address) uint64 { return uint64(int64(ptr.Load[int16](a))) }, 2, nil
	case abi.KindS32:
		return func(a kwire.Address) uint64 { return uint64(int64(ptr.Load[int32](a))) }, 4, nil
	case abi.KindS64:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[int64](a)) }, 8, nil
	case abi.KindU8:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint8](a)) }, 1, nil
	case abi.KindU16:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint16](a)) }, 2, nil
	case abi.KindU32:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint32](a)) }, 4, nil
	case abi.KindU64:
		return func(a kwire.Address) uint64 { return ptr.Load[uint64](a) }, 8, nil
	case abi.KindF32:
		return func(a kwire.Address) uint64 { return uint64(math.Float32bits(ptr.Load[float32](a))) }, 4, nil
	case abi.KindF64:
		return func(a kwire.Address) uint64 { return math.Float64bits(ptr.Load[float64](a)) }, 8, nil
	case abi.KindNInt:
		return func(a kwire.Address) uint64 { return uint64(int64(ptr.Load[int](a))) }, abi.PointerSize, nil
	case abi.KindNUInt:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint](a)) }, abi.PointerSize, nil
	case abi.KindNFloat:
		if abi.PointerSize == 8 {
			return func(a kwire.Address) uint64 { return math.Float64bits(ptr.Load[float64](a)) }, 8, nil
		}
		return func(a kwire.Address) uint64 { return uint64(math.Float32bits(ptr.Load[float32](a))) }, 4, nil
	case abi.KindPtr, abi.KindFuncPtr, abi.KindReference:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uintptr](a)) }, abi.PointerSize, nil
	case abi.KindAggregate:
		layout, err := h.calc.Calculate(t)
		if err != nil {
			return nil, 0, err
		}
		return func(a kwire.Address) uint64 { return uint64(a) }, uintptr(layout.Size), nil
	default:
		return nil, 0, errors.InvalidInput(errors.PhaseNative, "cannot flatten parameter kind %s", t.Kind)
	}
}
