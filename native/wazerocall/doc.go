// Package wazerocall provides a sandboxed call primitive backed by a
// wazero WebAssembly runtime.
//
// An Engine loads modules and hands out one synthetic target address
// per exported function; the Engine itself is a dispatch.Primitive, so
// those targets dispatch like any other native call:
//
//	eng := wazerocall.NewEngine(ctx)
//	defer eng.Close(ctx)
//
//	targets, _ := eng.LoadModule(ctx, wasmBytes)
//	d := dispatch.NewDispatcher(eng)
//	result, err := d.Call(targets["add"], sig, buf)
//
// Trampolines translate the packed argument region into wasm core
// values: narrow integers widen into i32 slots, 64-bit integers pass
// through, and floats encode as their IEEE-754 bit patterns. Aggregates
// have no core-value representation and fail at resolution; pass them
// by pointer into guest memory instead.
//
// A guest trap surfaces as a native-phase error carrying the wazero
// cause. Close invalidates every issued target.
package wazerocall
