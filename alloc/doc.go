// Package alloc provides the low-level block allocators backing arenas
// and argument buffers.
//
// The arena layer never assumes an allocation strategy beyond "grow on
// demand, release as a unit"; this package supplies two strategies behind
// the kwire.BlockAllocator contract:
//
//   - Mmap (unix): anonymous private mappings outside the Go heap.
//     Addresses are stable for the block's lifetime and safe to pass to
//     native code.
//   - Heap: pinned Go byte slices, portable and GC-visible. Used by
//     tests and as the non-unix Default.
//
// Both validate power-of-two alignment and reject zero-size requests.
// Blocks are released as whole units; partial frees are not part of the
// contract.
package alloc
