// Package arena provides stack-discipline native memory scopes.
//
// An Arena bump-allocates from blocks it obtains from a low-level
// kwire.BlockAllocator. Scopes tie allocations to lexical blocks:
//
//	a := arena.New(alloc.Default(), 0)
//	defer a.Close()
//
//	func work(a *arena.Arena) error {
//	    s := a.Scope()
//	    defer s.Close()
//
//	    addr, err := s.AllocateType(pointType)
//	    ...
//	}
//
// # Lifecycle
//
// A scope moves through three states:
//
//	Unopened ──first Allocate──▶ Open ──Close──▶ Closed
//
// Creation is free; the frame marker is captured lazily on the first
// allocation, so scopes that allocate nothing cost nothing. Close on an
// open scope rewinds the arena cursor exactly to the marker, regardless
// of how many allocations happened inside. Close is idempotent, and a
// closed scope rejects further allocation with a double_open error.
//
// The deferred Close makes release unconditional on every exit path,
// including error propagation and panics.
//
// # Stack discipline
//
// Live allocations always occupy the address range between the marker
// and the cursor. Scopes must nest LIFO on one logical call stack; one
// arena per call stack prevents interleaving by construction, and the
// arena does not detect violations at runtime.
//
// # Local references
//
// Scopes carry a bijective value↔address table for the boxing pattern:
// register a managed value against the slot it was written to, pass the
// slot by address, and recover the value from the address later. Both
// directions enforce uniqueness at registration.
package arena
