package argbuf

import (
	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/errors"
	"github.com/karmakrafts/kWire-sub000/ptr"
)

// DefaultCapacity is the scratch region size of pooled buffers.
const DefaultCapacity = 4096

// Buffer is a fixed-capacity native scratch region for staging call
// arguments. Typed puts write at the running offset and commit the
// argument's descriptor; the dispatcher later verifies the committed
// list against a signature. Arguments are packed sequentially without
// padding, so the i-th argument's address is the base plus the sizes of
// everything committed before it.
//
// A Buffer has a single owner at a time and is not safe for concurrent
// use. After a failed call its contents are undefined; Clear before
// reuse.
type Buffer struct {
	allocator kwire.BlockAllocator
	calc      *abi.Calculator
	block     kwire.Block
	off       uintptr
	types     []*abi.Type
}

// New creates a buffer with its own backing block. A capacity of 0 uses
// DefaultCapacity. The caller owns the buffer and must Free it.
func New(allocator kwire.BlockAllocator, capacity uintptr) (*Buffer, error) {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	block, err := allocator.AllocBlock(capacity, 16)
	if err != nil {
		return nil, errors.New(errors.PhaseBuffer, errors.KindOutOfSpace).
			Detail("cannot reserve %d-byte scratch region", capacity).
			Cause(err).
			Build()
	}
	return &Buffer{
		allocator: allocator,
		calc:      abi.NewCalculator(),
		block:     block,
	}, nil
}

// Base returns the scratch region's base address.
func (b *Buffer) Base() kwire.Address {
	return b.block.Addr
}

// Capacity returns the scratch region size in bytes.
func (b *Buffer) Capacity() uintptr {
	return b.block.Size
}

// Used returns the number of bytes currently committed.
func (b *Buffer) Used() uintptr {
	return b.off
}

// Len returns the number of committed arguments.
func (b *Buffer) Len() int {
	return len(b.types)
}

// Types returns the committed argument descriptors in order. The slice
// aliases internal state and is only valid until the next mutation.
func (b *Buffer) Types() []*abi.Type {
	return b.types
}

// Clear resets the offset and empties the committed-type list without
// releasing memory. Clearing an already-empty buffer is a no-op.
func (b *Buffer) Clear() {
	b.off = 0
	b.types = b.types[:0]
}

// Free returns the backing block to the allocator. The buffer is
// unusable afterwards.
func (b *Buffer) Free() error {
	if b.block.Addr.IsNull() {
		return nil
	}
	err := b.allocator.FreeBlock(b.block)
	b.block = kwire.Block{}
	b.off = 0
	b.types = nil
	return err
}

// argSize returns the committed footprint of a descriptor: the intrinsic
// size for scalars and addresses, the computed layout size for
// aggregates.
func (b *Buffer) argSize(t *abi.Type) (uintptr, error) {
	if size := t.Kind.FixedSize(); size != 0 {
		return uintptr(size), nil
	}
	layout, err := b.calc.Calculate(t)
	if err != nil {
		return 0, err
	}
	return uintptr(layout.Size), nil
}

// ArgAddress returns the address of the i-th committed argument,
// computed as the base plus the sum of the sizes of all prior committed
// types. ABI conventions that pass aggregates by address use this.
func (b *Buffer) ArgAddress(i int) (kwire.Address, error) {
	if i < 0 || i >= len(b.types) {
		return kwire.Null, errors.InvalidInput(errors.PhaseBuffer,
			"argument index %d out of range (have %d)", i, len(b.types))
	}
	var off uintptr
	for _, t := range b.types[:i] {
		size, err := b.argSize(t)
		if err != nil {
			return kwire.Null, err
		}
		off += size
	}
	return b.block.Addr + kwire.Address(off), nil
}

// put stages one scalar value. No byte is written when the value would
// cross capacity; the failing call leaves the buffer unchanged.
func put[T any](b *Buffer, t *abi.Type, v T) error {
	size := uintptr(t.Kind.FixedSize())
	if b.off+size > b.block.Size {
		return errors.BufferOverflow(b.off, size, b.block.Size)
	}
	ptr.Store[T](b.block.Addr+kwire.Address(b.off), v)
	b.off += size
	b.types = append(b.types, t)
	return nil
}

// putArray stages a contiguous run of scalar values, committing one
// descriptor per element so address accounting stays exact.
func putArray[T any](b *Buffer, t *abi.Type, values []T) error {
	elem := uintptr(t.Kind.FixedSize())
	total := elem * uintptr(len(values))
	if b.off+total > b.block.Size {
		return errors.BufferOverflow(b.off, total, b.block.Size)
	}
	for _, v := range values {
		ptr.Store[T](b.block.Addr+kwire.Address(b.off), v)
		b.off += elem
		b.types = append(b.types, t)
	}
	return nil
}

func (b *Buffer) PutInt8(v int8) error   { return put(b, abi.S8, v) }
func (b *Buffer) PutInt16(v int16) error { return put(b, abi.S16, v) }
func (b *Buffer) PutInt32(v int32) error { return put(b, abi.S32, v) }
func (b *Buffer) PutInt64(v int64) error { return put(b, abi.S64, v) }

func (b *Buffer) PutUint8(v uint8) error   { return put(b, abi.U8, v) }
func (b *Buffer) PutUint16(v uint16) error { return put(b, abi.U16, v) }
func (b *Buffer) PutUint32(v uint32) error { return put(b, abi.U32, v) }
func (b *Buffer) PutUint64(v uint64) error { return put(b, abi.U64, v) }

func (b *Buffer) PutFloat32(v float32) error { return put(b, abi.F32, v) }
func (b *Buffer) PutFloat64(v float64) error { return put(b, abi.F64, v) }

func (b *Buffer) PutNInt(v int) error   { return put(b, abi.NInt, v) }
func (b *Buffer) PutNUInt(v uint) error { return put(b, abi.NUInt, v) }

// PutNFloat stages a native-width float: f64 on 64-bit targets, f32 on
// 32-bit targets.
func (b *Buffer) PutNFloat(v float64) error {
	if abi.PointerSize == 8 {
		return put(b, abi.NFloat, v)
	}
	return put(b, abi.NFloat, float32(v))
}

var (
	rawPointer = abi.PointerTo(nil)
	rawFuncPtr = abi.FuncPtrTo("")
	rawRef     = abi.ReferenceTo("")
)

// PutPointer stages a data pointer argument.
func (b *Buffer) PutPointer(addr kwire.Address) error {
	return put(b, rawPointer, addr)
}

// PutFuncPointer stages a function pointer argument.
func (b *Buffer) PutFuncPointer(addr kwire.Address) error {
	return put(b, rawFuncPtr, addr)
}

// PutReference stages a reference handle. References always occupy one
// native-width slot regardless of the referenced type.
func (b *Buffer) PutReference(addr kwire.Address) error {
	return put(b, rawRef, addr)
}

func (b *Buffer) PutInt32Array(values []int32) error     { return putArray(b, abi.S32, values) }
func (b *Buffer) PutInt64Array(values []int64) error     { return putArray(b, abi.S64, values) }
func (b *Buffer) PutUint8Array(values []uint8) error     { return putArray(b, abi.U8, values) }
func (b *Buffer) PutFloat32Array(values []float32) error { return putArray(b, abi.F32, values) }
func (b *Buffer) PutFloat64Array(values []float64) error { return putArray(b, abi.F64, values) }

// PutAggregate copies one by-value aggregate from src into the buffer
// and commits its descriptor. The payload size and alignment come from
// the layout engine; like scalar puts, nothing is written on overflow.
func (b *Buffer) PutAggregate(src kwire.Address, t *abi.Type) error {
	if t == nil || t.Kind != abi.KindAggregate {
		return errors.InvalidInput(errors.PhaseBuffer, "PutAggregate requires an aggregate descriptor")
	}
	layout, err := b.calc.Calculate(t)
	if err != nil {
		return err
	}
	size := uintptr(layout.Size)
	if b.off+size > b.block.Size {
		return errors.BufferOverflow(b.off, size, b.block.Size)
	}
	ptr.Copy(b.block.Addr+kwire.Address(b.off), src, size)
	b.off += size
	b.types = append(b.types, t)
	return nil
}
