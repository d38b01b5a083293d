package dispatch

import (
	"math"
	"strings"
	"sync"

	"go.uber.org/zap"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/argbuf"
	"github.com/karmakrafts/kWire-sub000/errors"
)

// Convention names the calling convention a signature targets. The tag
// travels to the call primitive verbatim; the dispatcher itself never
// interprets it.
type Convention uint8

const (
	Cdecl Convention = iota
	Stdcall
	Thiscall
	Fastcall
)

var conventionNames = [...]string{
	Cdecl:    "cdecl",
	Stdcall:  "stdcall",
	Thiscall: "thiscall",
	Fastcall: "fastcall",
}

func (c Convention) String() string {
	if int(c) < len(conventionNames) {
		return conventionNames[c]
	}
	return "unknown"
}

// Signature describes one callable native function: parameter
// descriptors in declaration order, a result descriptor (nil or Void for
// procedures), and the target convention.
type Signature struct {
	Params     []*abi.Type
	Result     *abi.Type
	Convention Convention
}

// String renders the signature for diagnostics.
func (s *Signature) String() string {
	var b strings.Builder
	b.WriteString(s.Convention.String())
	b.WriteByte('(')
	for i, p := range s.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
	}
	b.WriteByte(')')
	if s.Result != nil && s.Result.Kind != abi.KindVoid {
		b.WriteString(" -> ")
		b.WriteString(s.Result.Name)
	}
	return b.String()
}

// Trampoline invokes a fixed native target with arguments staged at
// argBase and returns the raw result bits. Narrow results occupy the low
// bits; float results are their IEEE-754 bit patterns.
type Trampoline func(argBase kwire.Address) (uint64, error)

// Primitive produces trampolines for call targets. Implementations own
// the mechanics of the actual invocation.
type Primitive interface {
	Trampoline(target kwire.Address, sig *Signature) (Trampoline, error)
}

// Dispatcher verifies staged arguments against a signature and routes
// calls through its primitive, resolving at most one trampoline per
// target. Safe for concurrent use.
type Dispatcher struct {
	primitive Primitive

	mu    sync.RWMutex
	cache map[kwire.Address]Trampoline
}

// NewDispatcher creates a dispatcher backed by the given call primitive.
func NewDispatcher(p Primitive) *Dispatcher {
	return &Dispatcher{
		primitive: p,
		cache:     make(map[kwire.Address]Trampoline),
	}
}

// Call verifies the buffer's committed arguments against sig, resolves
// the target's trampoline, invokes it, and decodes the raw result bits
// per the result descriptor. Verification failures surface before the
// primitive is touched.
func (d *Dispatcher) Call(target kwire.Address, sig *Signature, buf *argbuf.Buffer) (any, error) {
	if sig == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil signature")
	}
	if buf == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil argument buffer")
	}
	if sig.Result != nil && sig.Result.Kind == abi.KindAggregate {
		return nil, errors.InvalidInput(errors.PhaseDispatch,
			"aggregate result %q cannot be returned as raw bits; use an out-pointer", sig.Result.Name)
	}
	if err := verify(sig, buf.Types()); err != nil {
		return nil, err
	}
	tramp, err := d.trampoline(target, sig)
	if err != nil {
		return nil, err
	}
	bits, err := tramp(buf.Base())
	if err != nil {
		return nil, err
	}
	return decodeResult(sig.Result, bits)
}

// trampoline returns the cached trampoline for target, resolving it
// through the primitive on first use.
func (d *Dispatcher) trampoline(target kwire.Address, sig *Signature) (Trampoline, error) {
	d.mu.RLock()
	tramp, ok := d.cache[target]
	d.mu.RUnlock()
	if ok {
		return tramp, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if tramp, ok := d.cache[target]; ok {
		return tramp, nil
	}
	tramp, err := d.primitive.Trampoline(target, sig)
	if err != nil {
		return nil, err
	}
	Logger().Debug("resolved trampoline",
		zap.Uint64("target", uint64(target)),
		zap.String("signature", sig.String()))
	d.cache[target] = tramp
	return tramp, nil
}

// verify checks the committed argument list against the signature's
// parameters element for element. Address kinds are interchangeable
// because each occupies one native-width slot; aggregates must name the
// same descriptor.
func verify(sig *Signature, committed []*abi.Type) error {
	if len(committed) != len(sig.Params) {
		return errors.SignatureMismatch("have %d committed arguments, signature wants %d",
			len(committed), len(sig.Params))
	}
	for i, want := range sig.Params {
		got := committed[i]
		if got == nil || want == nil {
			return errors.SignatureMismatch("argument %d has no descriptor", i)
		}
		if got.Kind.IsAddress() && want.Kind.IsAddress() {
			continue
		}
		if got.Kind != want.Kind {
			return errors.SignatureMismatch("argument %d is %s, signature wants %s",
				i, got.Name, want.Name)
		}
		if got.Kind == abi.KindAggregate && got.Unqualified().Name != want.Unqualified().Name {
			return errors.SignatureMismatch("argument %d is aggregate %q, signature wants %q",
				i, got.Name, want.Name)
		}
	}
	return nil
}

// decodeResult converts raw result bits into a Go value per the result
// descriptor. Void and nil descriptors decode to nil.
func decodeResult(t *abi.Type, bits uint64) (any, error) {
	if t == nil {
		return nil, nil
	}
	switch t.Kind {
	case abi.KindVoid:
		return nil, nil
	case abi.KindS8:
		return int8(bits), nil
	case abi.KindS16:
		return int16(bits), nil
	case abi.KindS32:
		return int32(bits), nil
	case abi.KindS64:
		return int64(bits), nil
	case abi.KindU8:
		return uint8(bits), nil
	case abi.KindU16:
		return uint16(bits), nil
	case abi.KindU32:
		return uint32(bits), nil
	case abi.KindU64:
		return bits, nil
	case abi.KindF32:
		return math.Float32frombits(uint32(bits)), nil
	case abi.KindF64:
		return math.Float64frombits(bits), nil
	case abi.KindNInt:
		if abi.PointerSize == 8 {
			return int(int64(bits)), nil
		}
		return int(int32(bits)), nil
	case abi.KindNUInt:
		if abi.PointerSize == 8 {
			return uint(bits), nil
		}
		return uint(uint32(bits)), nil
	case abi.KindNFloat:
		if abi.PointerSize == 8 {
			return math.Float64frombits(bits), nil
		}
		return float64(math.Float32frombits(uint32(bits))), nil
	case abi.KindPtr, abi.KindFuncPtr, abi.KindReference:
		return kwire.Address(uintptr(bits)), nil
	default:
		return nil, errors.InvalidInput(errors.PhaseDispatch,
			"cannot decode result kind %s", t.Kind)
	}
}
