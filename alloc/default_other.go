//go:build !unix

package alloc

import (
	kwire "github.com/karmakrafts/kWire-sub000"
)

// Default returns the preferred block allocator for this platform.
// Without a page-mapping path, blocks come from pinned heap slices.
func Default() kwire.BlockAllocator {
	return Heap()
}
