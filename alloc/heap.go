package alloc

import (
	"sync"
	"unsafe"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/errors"
)

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

// HeapAllocator is a portable BlockAllocator backed by pinned Go byte
// slices. Each block over-allocates by the requested alignment, aligns
// the base address up, and retains the slice so the memory stays live
// until the block is returned. Intended for tests and platforms without
// a page-mapping path.
type HeapAllocator struct {
	mu     sync.Mutex
	blocks map[kwire.Address][]byte
}

// Heap creates a heap-backed block allocator.
func Heap() *HeapAllocator {
	return &HeapAllocator{
		blocks: make(map[kwire.Address][]byte),
	}
}

func (h *HeapAllocator) AllocBlock(size, align uintptr) (kwire.Block, error) {
	if size == 0 {
		return kwire.Block{}, errors.InvalidInput(errors.PhaseArena, "zero-size block request")
	}
	if align == 0 {
		align = 1
	}
	if !isPowerOfTwo(align) {
		return kwire.Block{}, errors.InvalidAlignment(errors.PhaseArena, align)
	}

	buf := make([]byte, size+align)
	base := kwire.Address(uintptr(unsafe.Pointer(unsafe.SliceData(buf))))
	aligned := base
	if rem := uintptr(aligned) % align; rem != 0 {
		aligned += kwire.Address(align - rem)
	}

	h.mu.Lock()
	h.blocks[aligned] = buf
	h.mu.Unlock()

	return kwire.Block{Addr: aligned, Size: size}, nil
}

func (h *HeapAllocator) FreeBlock(b kwire.Block) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.blocks[b.Addr]; !ok {
		return errors.NotFound(errors.PhaseArena, "block %#x not owned by this allocator", uintptr(b.Addr))
	}
	delete(h.blocks, b.Addr)
	return nil
}

// Live returns the number of outstanding blocks.
func (h *HeapAllocator) Live() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.blocks)
}
