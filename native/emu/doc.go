// Package emu provides an in-process call primitive for tests and pure
// Go embedding.
//
// A Host keeps a table of registered Go functions, each behind a
// synthetic target address, and implements dispatch.Primitive. Its
// trampolines flatten the packed argument region into uint64 slots
// exactly as a native callee would consume them: signed integers
// sign-extend, unsigned integers zero-extend, floats pass as their
// IEEE-754 bit patterns, addresses pass verbatim, and aggregates pass
// as the address of their staged copy.
//
//	host := emu.NewHost()
//	add := host.Register(sig, func(args []uint64) uint64 {
//		return uint64(int32(args[0]) + int32(args[1]))
//	})
//	d := dispatch.NewDispatcher(host)
//	result, err := d.Call(add, sig, buf)
//
// Dispatching to an address the host never issued fails with a native
// not_found error at trampoline resolution.
package emu
