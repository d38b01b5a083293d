package ptr

import (
	"unsafe"

	kwire "github.com/karmakrafts/kWire-sub000"
)

// Load reads a value of type T from native memory at addr. The caller is
// responsible for addr being valid, live, and aligned for T.
func Load[T any](addr kwire.Address) T {
	return *(*T)(unsafe.Pointer(addr))
}

// Store writes v to native memory at addr. The caller is responsible for
// addr being valid, live, and aligned for T.
func Store[T any](addr kwire.Address, v T) {
	*(*T)(unsafe.Pointer(addr)) = v
}

// Copy copies size bytes from src to dst. Regions must not overlap in a
// way the platform memmove cannot handle; Go's copy semantics apply.
func Copy(dst, src kwire.Address, size uintptr) {
	dstSlice := unsafe.Slice((*byte)(unsafe.Pointer(dst)), size)
	srcSlice := unsafe.Slice((*byte)(unsafe.Pointer(src)), size)
	copy(dstSlice, srcSlice)
}

// Zero clears size bytes starting at addr.
func Zero(addr kwire.Address, size uintptr) {
	s := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range s {
		s[i] = 0
	}
}

// Bytes returns the memory at addr as a byte slice of the given length.
// The slice aliases native memory and is only valid while the backing
// allocation is live.
func Bytes(addr kwire.Address, size uintptr) []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
}
