// Package dispatch routes staged argument buffers into native call
// primitives.
//
// A Signature pairs parameter descriptors with a result descriptor and
// a calling convention tag. A Primitive turns (target, signature) into a
// Trampoline, a closure that performs the actual invocation given the
// buffer's base address and returns the raw result bits. The Dispatcher
// sits between the two:
//
//	d := dispatch.NewDispatcher(primitive)
//
//	buf, _ := argbuf.Acquire()
//	defer buf.Release()
//	buf.PutInt32(2)
//	buf.PutInt32(3)
//
//	sig := &dispatch.Signature{
//		Params: []*abi.Type{abi.S32, abi.S32},
//		Result: abi.S32,
//	}
//	result, err := d.Call(target, sig, buf) // int32(5)
//
// Call verifies the committed descriptor list against the signature
// before the primitive is touched; any mismatch fails with a
// signature_mismatch error and the target is never invoked. Trampolines
// are resolved once per target and cached under a read-write lock, so
// repeated calls to the same target skip resolution.
//
// Result bits decode per the result descriptor: integers truncate to
// their width, floats convert from their IEEE-754 bit patterns, and
// address kinds decode to Address. Aggregate results do not fit the
// raw-bits contract and are rejected up front; callees return large
// values through an out-pointer parameter instead.
//
// The convention tag is carried verbatim to the primitive. Primitives
// that only support one convention may reject the others at resolution
// time.
package dispatch
