//go:build unix

package alloc

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/errors"
)

// MmapAllocator is a BlockAllocator backed by anonymous private mappings.
// Mappings live outside the Go heap, so block addresses are stable for
// the lifetime of the block and safe to hand to native code.
type MmapAllocator struct {
	mu       sync.Mutex
	mappings map[kwire.Address][]byte
}

// Mmap creates an mmap-backed block allocator.
func Mmap() *MmapAllocator {
	return &MmapAllocator{
		mappings: make(map[kwire.Address][]byte),
	}
}

// Default returns the preferred block allocator for this platform.
func Default() kwire.BlockAllocator {
	return Mmap()
}

func (m *MmapAllocator) AllocBlock(size, align uintptr) (kwire.Block, error) {
	if size == 0 {
		return kwire.Block{}, errors.InvalidInput(errors.PhaseArena, "zero-size block request")
	}
	if align == 0 {
		align = 1
	}
	if !isPowerOfTwo(align) {
		return kwire.Block{}, errors.InvalidAlignment(errors.PhaseArena, align)
	}

	pageSize := uintptr(unix.Getpagesize())
	request := size
	if align > pageSize {
		// Mappings are only page-aligned; over-allocate so the base can
		// be rounded up inside the mapping.
		request += align
	}
	request = (request + pageSize - 1) &^ (pageSize - 1)

	mapping, err := unix.Mmap(-1, 0, int(request),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return kwire.Block{}, errors.New(errors.PhaseArena, errors.KindOutOfSpace).
			Detail("mmap of %d bytes failed", request).
			Cause(err).
			Build()
	}

	base := kwire.Address(uintptr(unsafe.Pointer(unsafe.SliceData(mapping))))
	aligned := base
	if rem := uintptr(aligned) % align; rem != 0 {
		aligned += kwire.Address(align - rem)
	}

	m.mu.Lock()
	m.mappings[aligned] = mapping
	m.mu.Unlock()

	return kwire.Block{Addr: aligned, Size: size}, nil
}

func (m *MmapAllocator) FreeBlock(b kwire.Block) error {
	m.mu.Lock()
	mapping, ok := m.mappings[b.Addr]
	if ok {
		delete(m.mappings, b.Addr)
	}
	m.mu.Unlock()

	if !ok {
		return errors.NotFound(errors.PhaseArena, "block %#x not owned by this allocator", uintptr(b.Addr))
	}
	if err := unix.Munmap(mapping); err != nil {
		return errors.New(errors.PhaseArena, errors.KindInvalidInput).
			Detail("munmap failed").
			Cause(err).
			Build()
	}
	return nil
}

// Live returns the number of outstanding mappings.
func (m *MmapAllocator) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.mappings)
}
