package argbuf

import (
	"sync"

	"go.uber.org/multierr"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/alloc"
)

// The pool hands one scratch buffer to each concurrent call path and
// keeps every live buffer on a process-wide shutdown list, so backing
// blocks are released last, after application logic completes.

var registry struct {
	mu        sync.Mutex
	allocator kwire.BlockAllocator
	free      []*Buffer
	all       []*Buffer
}

// SetAllocator configures the block allocator backing pooled buffers.
// It only affects buffers created after the call; the default is the
// platform allocator.
func SetAllocator(a kwire.BlockAllocator) {
	registry.mu.Lock()
	registry.allocator = a
	registry.mu.Unlock()
}

// Acquire returns a cleared scratch buffer of DefaultCapacity, creating
// one lazily when the free list is empty. The caller owns it until
// Release.
func Acquire() (*Buffer, error) {
	registry.mu.Lock()
	if n := len(registry.free); n > 0 {
		b := registry.free[n-1]
		registry.free = registry.free[:n-1]
		registry.mu.Unlock()
		b.Clear()
		return b, nil
	}
	allocator := registry.allocator
	registry.mu.Unlock()

	if allocator == nil {
		allocator = alloc.Default()
		registry.mu.Lock()
		if registry.allocator == nil {
			registry.allocator = allocator
		} else {
			allocator = registry.allocator
		}
		registry.mu.Unlock()
	}

	b, err := New(allocator, DefaultCapacity)
	if err != nil {
		return nil, err
	}

	registry.mu.Lock()
	registry.all = append(registry.all, b)
	registry.mu.Unlock()
	return b, nil
}

// Release returns a pooled buffer to the free list. The buffer must not
// be used afterwards. Buffers created directly with New are not pooled
// and must be Freed instead.
func (b *Buffer) Release() {
	b.Clear()
	registry.mu.Lock()
	registry.free = append(registry.free, b)
	registry.mu.Unlock()
}

// Shutdown frees the backing blocks of every buffer the pool ever
// created. Call it at process teardown, after application logic is
// done; buffers still held by callers become invalid. The pool is empty
// afterwards and may be used again.
func Shutdown() error {
	registry.mu.Lock()
	all := registry.all
	registry.all = nil
	registry.free = nil
	registry.mu.Unlock()

	var err error
	for _, b := range all {
		err = multierr.Append(err, b.Free())
	}
	return err
}
