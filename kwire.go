package kwire

// Address is a raw native pointer. The zero value is the canonical null.
type Address uintptr

// Null is the canonical null address.
const Null Address = 0

// IsNull reports whether the address is the canonical null.
func (a Address) IsNull() bool {
	return a == 0
}

// Aligned reports whether the address satisfies the given alignment.
// A zero alignment is treated as 1.
func (a Address) Aligned(align uintptr) bool {
	if align == 0 {
		return true
	}
	return uintptr(a)%align == 0
}

// Block is a raw memory region handed out by a BlockAllocator.
// Blocks are allocated and released as whole units.
type Block struct {
	Addr Address
	Size uintptr
}

// End returns the first address past the block.
func (b Block) End() Address {
	return b.Addr + Address(b.Size)
}

// Contains reports whether addr lies within [Addr, Addr+Size).
func (b Block) Contains(addr Address) bool {
	return addr >= b.Addr && addr < b.End()
}

// BlockAllocator supplies raw memory blocks on request and accepts them
// back as whole units. Implementations must return blocks whose base
// address satisfies the requested alignment. The arena and argument
// buffer never assume anything beyond "grow on demand, release as a unit".
type BlockAllocator interface {
	AllocBlock(size, align uintptr) (Block, error)
	FreeBlock(Block) error
}
