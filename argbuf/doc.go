// Package argbuf provides the reusable scratch region that stages call
// arguments for native dispatch.
//
// A Buffer is a fixed-capacity native region (4096 bytes by default)
// with a running offset and an ordered committed-type list:
//
//	b, _ := argbuf.Acquire()
//	defer b.Release()
//
//	b.PutInt32(42)
//	b.PutFloat64(3.5)
//	addr, _ := b.ArgAddress(1) // base + 4
//
// Each put writes at the current offset, advances by the argument's
// size, and appends its descriptor. Arguments pack without padding; the
// i-th argument's address is the base plus the sizes of all prior
// committed types, which is what ABI conventions passing aggregates by
// address consume.
//
// A write that would cross capacity fails with buffer_overflow and
// leaves the buffer untouched; there is no partial commit. Clear resets
// offset and type list without releasing memory.
//
// # Ownership
//
// Buffers have one owner at a time and are not safe for concurrent use.
// The pool (Acquire/Release) hands one buffer per concurrent call path
// at zero steady-state allocation, and tracks every buffer it created
// on a process-wide shutdown list; Shutdown releases the backing blocks
// last, after application logic completes.
//
// After a failed dispatch a buffer's tail state is undefined; callers
// must Clear before reuse and must not read from it.
package argbuf
