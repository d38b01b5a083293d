package wazerocall

import (
	"context"
	"math"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/dispatch"
	"github.com/karmakrafts/kWire-sub000/errors"
	"github.com/karmakrafts/kWire-sub000/ptr"
)

// targetBase keeps wazero-backed targets in a distinct synthetic range.
const targetBase kwire.Address = 0x20000

// Config holds configuration for engine creation.
type Config struct {
	// MemoryLimitPages sets the maximum memory per instance in pages
	// (64KB each). 0 means the wazero default.
	MemoryLimitPages uint32
}

// Engine is a sandboxed call primitive backed by a wazero runtime.
// Each exported function of a loaded module is assigned a synthetic
// target address; dispatching to that address runs the guest function.
// Safe for concurrent use.
type Engine struct {
	runtime wazero.Runtime

	mu      sync.Mutex
	exports map[kwire.Address]api.Function
	next    kwire.Address
}

// NewEngine creates an engine with default configuration.
func NewEngine(ctx context.Context) *Engine {
	return NewEngineWithConfig(ctx, nil)
}

// NewEngineWithConfig creates an engine with custom configuration.
func NewEngineWithConfig(ctx context.Context, cfg *Config) *Engine {
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg != nil && cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return &Engine{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		exports: make(map[kwire.Address]api.Function),
		next:    targetBase,
	}
}

// LoadModule compiles and instantiates a module and returns the target
// address of every exported function, keyed by export name.
func (e *Engine) LoadModule(ctx context.Context, wasmBytes []byte) (map[string]kwire.Address, error) {
	compiled, err := e.runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		return nil, errors.New(errors.PhaseNative, errors.KindInvalidInput).
			Detail("compile module").
			Cause(err).
			Build()
	}
	mod, err := e.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig())
	if err != nil {
		return nil, errors.New(errors.PhaseNative, errors.KindInvalidInput).
			Detail("instantiate module").
			Cause(err).
			Build()
	}

	targets := make(map[string]kwire.Address)
	e.mu.Lock()
	for name := range mod.ExportedFunctionDefinitions() {
		fn := mod.ExportedFunction(name)
		if fn == nil {
			continue
		}
		e.next += kwire.Address(abi.PointerSize)
		e.exports[e.next] = fn
		targets[name] = e.next
	}
	e.mu.Unlock()

	Logger().Debug("loaded module",
		zap.String("name", mod.Name()),
		zap.Int("exports", len(targets)))
	return targets, nil
}

// Trampoline resolves an exported guest function. Argument encoders are
// precomputed so the trampoline only walks buffer memory and calls into
// the sandbox.
func (e *Engine) Trampoline(target kwire.Address, sig *dispatch.Signature) (dispatch.Trampoline, error) {
	e.mu.Lock()
	fn, ok := e.exports[target]
	e.mu.Unlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseNative, "no guest export at %#x", uintptr(target))
	}
	if want := len(fn.Definition().ParamTypes()); want != len(sig.Params) {
		return nil, errors.New(errors.PhaseNative, errors.KindSignatureMismatch).
			Detail("guest %q takes %d parameters, signature has %d",
				fn.Definition().DebugName(), want, len(sig.Params)).
			Build()
	}

	encoders := make([]argEncoder, len(sig.Params))
	var off uintptr
	for i, p := range sig.Params {
		encode, size, err := encoderFor(p)
		if err != nil {
			return nil, err
		}
		fieldOff := off
		encoders[i] = func(base kwire.Address) uint64 {
			return encode(base + kwire.Address(fieldOff))
		}
		off += size
	}

	return func(argBase kwire.Address) (uint64, error) {
		flat := make([]uint64, len(encoders))
		for i, enc := range encoders {
			flat[i] = enc(argBase)
		}
		results, err := fn.Call(context.Background(), flat...)
		if err != nil {
			return 0, errors.New(errors.PhaseNative, errors.KindInvalidInput).
				Detail("guest call trapped").
				Cause(err).
				Build()
		}
		if len(results) == 0 {
			return 0, nil
		}
		return results[0], nil
	}, nil
}

// Close tears down the runtime and invalidates every issued target.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	e.exports = make(map[kwire.Address]api.Function)
	e.mu.Unlock()
	return e.runtime.Close(ctx)
}

type argEncoder func(base kwire.Address) uint64

// encoderFor returns the wasm core-value encoding for one parameter.
// Narrow integers zero-extend into an i32 slot and floats encode as
// their bit patterns, matching wazero's uint64 call convention.
// Aggregates have no core-value representation and are rejected.
func encoderFor(t *abi.Type) (func(kwire.Address) uint64, uintptr, error) {
	if t == nil {
		return nil, 0, errors.InvalidInput(errors.PhaseNative, "nil parameter descriptor")
	}
	switch t.Kind {
	case abi.KindS8:
		return func(a kwire.Address) uint64 { return uint64(uint32(int32(ptr.Load[int8](a)))) }, 1, nil
	case abi.KindS16:
		return func(a kwire.Address) uint64 { return uint64(uint32(int32(ptr.Load[int16](a)))) }, 2, nil
	case abi.KindS32:
		return func(a kwire.Address) uint64 { return uint64(uint32(ptr.Load[int32](a))) }, 4, nil
	case abi.KindU8:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint8](a)) }, 1, nil
	case abi.KindU16:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint16](a)) }, 2, nil
	case abi.KindU32:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[uint32](a)) }, 4, nil
	case abi.KindS64:
		return func(a kwire.Address) uint64 { return uint64(ptr.Load[int64](a)) }, 8, nil
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
	default:
		return nil, 0, errors.InvalidInput(errors.PhaseNative,
			"parameter kind %s has no core-value representation", t.Kind)
	}
}
