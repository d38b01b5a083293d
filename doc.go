// Package kwire provides the native-memory foundation for foreign
// function interfacing: raw addresses, memory blocks, and the
// BlockAllocator contract every higher layer builds on.
//
// # Architecture Overview
//
// The module is organized into several packages with distinct
// responsibilities:
//
//	kwire/               Root package with Address, Block, and BlockAllocator
//	├── abi/             Type descriptors and the cached layout calculator
//	├── alloc/           Heap and mmap block allocator implementations
//	├── arena/           Growing arena with stack-disciplined scopes
//	├── argbuf/          Packed argument buffer and the process-wide pool
//	├── dispatch/        Signature verification and trampoline-cached calls
//	├── ptr/             Typed pointer ergonomics over raw addresses
//	├── errors/          Structured error types for debugging
//	└── native/
//	    ├── emu/         In-process call primitive for tests and embedding
//	    └── wazerocall/  Sandboxed call primitive backed by wazero
//
// # Quick Start
//
// Compute a layout, stage arguments, and dispatch a call:
//
//	calc := abi.NewCalculator()
//	layout, _ := calc.Calculate(myStruct)
//
//	a := arena.New(alloc.Default(), 0)
//	defer a.Close()
//	scope := a.Scope()
//	defer scope.Close()
//
//	buf, _ := argbuf.Acquire()
//	defer buf.Release()
//	buf.PutInt32(2)
//	buf.PutInt32(3)
//
//	d := dispatch.NewDispatcher(primitive)
//	result, _ := d.Call(target, sig, buf)
//
// Addresses are plain integers, not Go pointers; the memory behind them
// is owned by a BlockAllocator and never moves, so an Address stays
// valid until the block that contains it is released.
package kwire
