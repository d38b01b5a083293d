package arena

import (
	"go.uber.org/multierr"
	"go.uber.org/zap"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/errors"
)

// DefaultBlockSize is the initial backing block size of an arena.
const DefaultBlockSize = 64 * 1024

// blockAlign is the minimum base alignment requested for backing blocks,
// so any reasonable allocation alignment is satisfiable within a block.
const blockAlign = 16

// Marker is a snapshot of the arena cursor. Releasing to a marker
// rewinds every allocation made after it was captured.
type Marker struct {
	block  int
	offset uintptr
}

// Arena is a bump allocator over blocks obtained from a low-level
// BlockAllocator. Blocks are chained rather than reallocated, so
// addresses handed out earlier stay valid while the arena grows. Emptied
// blocks are kept cached for reuse until Close returns them to the
// allocator as whole units.
//
// An Arena belongs to one logical call stack; it is not safe for
// concurrent use.
type Arena struct {
	allocator kwire.BlockAllocator
	calc      *abi.Calculator
	blocks    []kwire.Block
	cur       Marker
	blockSize uintptr
	closed    bool
}

// New creates an arena over the given block allocator. No backing memory
// is reserved until the first allocation. A blockSize of 0 uses
// DefaultBlockSize.
func New(allocator kwire.BlockAllocator, blockSize uintptr) *Arena {
	if blockSize == 0 {
		blockSize = DefaultBlockSize
	}
	return &Arena{
		allocator: allocator,
		calc:      abi.NewCalculator(),
		blockSize: blockSize,
	}
}

// Mark captures the current cursor.
func (a *Arena) Mark() Marker {
	return a.cur
}

// Release rewinds the cursor to a previously captured marker. Blocks
// emptied by the rewind stay cached in the arena for reuse.
func (a *Arena) Release(m Marker) {
	a.cur = m
}

// InUse returns the number of bytes currently allocated across all
// blocks up to the cursor.
func (a *Arena) InUse() uintptr {
	var total uintptr
	for i := 0; i < a.cur.block && i < len(a.blocks); i++ {
		total += a.blocks[i].Size
	}
	return total + a.cur.offset
}

func isPowerOfTwo(n uintptr) bool {
	return n != 0 && n&(n-1) == 0
}

func alignUp(v, align uintptr) uintptr {
	return (v + align - 1) &^ (align - 1)
}

// allocate reserves size bytes at the requested alignment, growing the
// block chain on demand. Returns the pre-bump (aligned) address.
func (a *Arena) allocate(size, align uintptr) (kwire.Address, error) {
	if a.closed {
		return kwire.Null, errors.InvalidInput(errors.PhaseArena, "arena already closed")
	}
	if align == 0 {
		align = 1
	}
	if !isPowerOfTwo(align) {
		return kwire.Null, errors.InvalidAlignment(errors.PhaseArena, align)
	}
	// Requests near the address-space limit cannot be backed; reject
	// before the size+align arithmetic below can wrap.
	if size > ^uintptr(0)-align {
		return kwire.Null, errors.OutOfArenaSpace(size, align, nil)
	}

	for {
		if a.cur.block < len(a.blocks) {
			block := a.blocks[a.cur.block]
			base := uintptr(block.Addr) + a.cur.offset
			aligned := alignUp(base, align)
			end := aligned + size
			if end >= aligned && end <= uintptr(block.End()) {
				a.cur.offset = end - uintptr(block.Addr)
				return kwire.Address(aligned), nil
			}
			// Current block exhausted; move to the next cached block or
			// grow. The skipped tail is reclaimed when the cursor rewinds.
			if a.cur.block+1 < len(a.blocks) {
				a.cur.block++
				a.cur.offset = 0
				continue
			}
		}

		if err := a.grow(size, align); err != nil {
			return kwire.Null, err
		}
	}
}

func (a *Arena) grow(size, align uintptr) error {
	// size+align cannot wrap here; allocate rejects such requests.
	want := a.blockSize
	need := size + align
	for want < need {
		if want > ^uintptr(0)>>1 {
			want = need
			break
		}
		want <<= 1
	}

	reqAlign := align
	if reqAlign < blockAlign {
		reqAlign = blockAlign
	}

	block, err := a.allocator.AllocBlock(want, reqAlign)
	if err != nil {
		return errors.OutOfArenaSpace(size, align, err)
	}

	Logger().Debug("arena grew",
		zap.Uintptr("block_size", block.Size),
		zap.Int("blocks", len(a.blocks)+1))

	a.blocks = append(a.blocks, block)
	a.cur.block = len(a.blocks) - 1
	a.cur.offset = 0
	return nil
}

// Close returns every backing block to the allocator. The arena and all
// addresses it handed out are invalid afterwards.
func (a *Arena) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	var err error
	for _, block := range a.blocks {
		err = multierr.Append(err, a.allocator.FreeBlock(block))
	}
	a.blocks = nil
	a.cur = Marker{}
	return err
}
