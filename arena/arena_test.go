package arena

import (
	"fmt"
	"testing"

	kwire "github.com/karmakrafts/kWire-sub000"
	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/alloc"
	"github.com/karmakrafts/kWire-sub000/errors"
	"github.com/karmakrafts/kWire-sub000/ptr"
)

func newTestArena(t *testing.T, blockSize uintptr) (*Arena, *alloc.HeapAllocator) {
	t.Helper()
	h := alloc.Heap()
	a := New(h, blockSize)
	t.Cleanup(func() {
		if err := a.Close(); err != nil {
			t.Errorf("arena close: %v", err)
		}
		if h.Live() != 0 {
			t.Errorf("leaked %d blocks", h.Live())
		}
	})
	return a, h
}

func TestAllocateAlignment(t *testing.T) {
	a, _ := newTestArena(t, 0)
	s := a.Scope()
	defer s.Close()

	tests := []struct {
		size  uintptr
		align uintptr
	}{
		{1, 1},
		{2, 2},
		{7, 4},
		{16, 8},
		{3, 16},
	}

	for _, tc := range tests {
		t.Run(fmt.Sprintf("size%d_align%d", tc.size, tc.align), func(t *testing.T) {
			addr, err := s.Allocate(tc.size, tc.align)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !addr.Aligned(tc.align) {
				t.Errorf("address %#x not aligned to %d", uintptr(addr), tc.align)
			}
		})
	}

	t.Run("bad_alignment", func(t *testing.T) {
		if _, err := s.Allocate(8, 6); !errors.IsKind(err, errors.KindInvalidAlignment) {
			t.Fatalf("expected invalid_alignment, got %v", err)
		}
	})
}

func TestStackDiscipline(t *testing.T) {
	a, _ := newTestArena(t, 0)

	outer := a.Scope()
	defer outer.Close()

	if _, err := outer.Allocate(24, 8); err != nil {
		t.Fatalf("outer allocate: %v", err)
	}
	afterOuter := a.Mark()

	inner := a.Scope()
	for i := 0; i < 10; i++ {
		if _, err := inner.Allocate(uintptr(8+i), 4); err != nil {
			t.Fatalf("inner allocate %d: %v", i, err)
		}
	}
	if a.Mark() == afterOuter {
		t.Fatal("inner allocations did not move the cursor")
	}
	if err := inner.Close(); err != nil {
		t.Fatalf("inner close: %v", err)
	}
	if a.Mark() != afterOuter {
		t.Error("closing inner scope did not rewind cursor to its marker")
	}

	// A sibling scope reuses the released range.
	sibling := a.Scope()
	addr1, err := sibling.Allocate(8, 8)
	if err != nil {
		t.Fatalf("sibling allocate: %v", err)
	}
	sibling.Close()

	again := a.Scope()
	addr2, err := again.Allocate(8, 8)
	if err != nil {
		t.Fatalf("reuse allocate: %v", err)
	}
	again.Close()

	if addr1 != addr2 {
		t.Errorf("released slot not reused: %#x vs %#x", uintptr(addr1), uintptr(addr2))
	}
}

func TestScopeLifecycle(t *testing.T) {
	a, _ := newTestArena(t, 0)

	t.Run("unopened_close_is_noop", func(t *testing.T) {
		before := a.Mark()
		s := a.Scope()
		if err := s.Close(); err != nil {
			t.Fatalf("close: %v", err)
		}
		if a.Mark() != before {
			t.Error("closing an unopened scope moved the cursor")
		}
	})

	t.Run("close_is_idempotent", func(t *testing.T) {
		s := a.Scope()
		if _, err := s.Allocate(16, 8); err != nil {
			t.Fatalf("allocate: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("first close: %v", err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("second close must be a no-op, got %v", err)
		}
	})

	t.Run("reopen_rejected", func(t *testing.T) {
		s := a.Scope()
		s.Close()
		if _, err := s.Allocate(8, 8); !errors.IsKind(err, errors.KindDoubleOpen) {
			t.Fatalf("expected double_open, got %v", err)
		}
	})

	t.Run("release_fires_on_error_path", func(t *testing.T) {
		before := a.Mark()
		err := func() (err error) {
			s := a.Scope()
			defer s.Close()
			if _, err := s.Allocate(32, 8); err != nil {
				return err
			}
			return fmt.Errorf("simulated failure")
		}()
		if err == nil {
			t.Fatal("expected simulated failure")
		}
		if a.Mark() != before {
			t.Error("scope did not release on error propagation")
		}
	})
}

func TestArenaGrowth(t *testing.T) {
	a, _ := newTestArena(t, 32)
	s := a.Scope()
	defer s.Close()

	first, err := s.Allocate(24, 8)
	if err != nil {
		t.Fatalf("first allocate: %v", err)
	}
	ptr.Store[uint64](first, 0xfeedface)

	// Exceeds the remaining space of the 32-byte block, forcing growth.
	second, err := s.Allocate(64, 8)
	if err != nil {
		t.Fatalf("growing allocate: %v", err)
	}
	ptr.Store[uint64](second, 0xcafebabe)

	// Addresses from the first block stay valid after growth.
	if got := ptr.Load[uint64](first); got != 0xfeedface {
		t.Errorf("first block value clobbered: %#x", got)
	}
	if got := ptr.Load[uint64](second); got != 0xcafebabe {
		t.Errorf("second block value wrong: %#x", got)
	}
}

type refusingAllocator struct{}

func (refusingAllocator) AllocBlock(size, align uintptr) (kwire.Block, error) {
	return kwire.Block{}, fmt.Errorf("backing store exhausted")
}

func (refusingAllocator) FreeBlock(kwire.Block) error { return nil }

func TestHugeAllocationFails(t *testing.T) {
	a, _ := newTestArena(t, 0)
	s := a.Scope()
	defer s.Close()

	// Requests this large can never be backed; they must fail with
	// out_of_space instead of wrapping the bounds arithmetic and
	// returning an address inside a default-size block.
	tests := []struct {
		name  string
		size  uintptr
		align uintptr
	}{
		{"max_size", ^uintptr(0), 1},
		{"near_max_aligned", ^uintptr(0) - 7, 8},
		{"wraps_past_align", ^uintptr(0) - 15, 16},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Allocate(tc.size, tc.align); !errors.IsKind(err, errors.KindOutOfSpace) {
				t.Fatalf("expected out_of_space, got %v", err)
			}
		})
	}

	// The arena stays usable after a rejected request.
	addr, err := s.Allocate(16, 8)
	if err != nil {
		t.Fatalf("allocate after rejection: %v", err)
	}
	ptr.Store[uint64](addr, 0x1234)
	if got := ptr.Load[uint64](addr); got != 0x1234 {
		t.Errorf("slot not writable: %#x", got)
	}

	t.Run("unsatisfiable_growth", func(t *testing.T) {
		// Below the up-front limit but far beyond what the backing
		// store grants; the doubling must not overflow to zero and the
		// refusal must surface as out_of_space.
		a := New(refusingAllocator{}, 16)
		defer a.Close()
		s := a.Scope()
		defer s.Close()
		if _, err := s.Allocate(^uintptr(0)>>1+1, 16); !errors.IsKind(err, errors.KindOutOfSpace) {
			t.Fatalf("expected out_of_space, got %v", err)
		}
	})
}

func TestOutOfArenaSpace(t *testing.T) {
	a := New(refusingAllocator{}, 16)
	defer a.Close()
	s := a.Scope()
	defer s.Close()

	_, err := s.Allocate(8, 8)
	if !errors.IsKind(err, errors.KindOutOfSpace) {
		t.Fatalf("expected out_of_space, got %v", err)
	}
}

func TestAllocateType(t *testing.T) {
	a, _ := newTestArena(t, 0)
	s := a.Scope()
	defer s.Close()

	point := abi.Struct("point",
		abi.Field{Name: "x", Type: abi.S32},
		abi.Field{Name: "y", Type: abi.F32},
		abi.Field{Name: "z", Type: abi.F64},
	)

	addr, err := s.AllocateType(point)
	if err != nil {
		t.Fatalf("allocate type: %v", err)
	}
	if !addr.Aligned(8) {
		t.Errorf("aggregate slot not aligned to 8: %#x", uintptr(addr))
	}

	t.Run("unresolved_type_fails", func(t *testing.T) {
		if _, err := s.AllocateType(abi.Void); !errors.IsKind(err, errors.KindUnresolvedType) {
			t.Fatalf("expected unresolved_type, got %v", err)
		}
	})
}

func TestStructRoundTrip(t *testing.T) {
	a, _ := newTestArena(t, 0)

	point := abi.Struct("sample",
		abi.Field{Name: "i", Type: abi.S32},
		abi.Field{Name: "f", Type: abi.F32},
		abi.Field{Name: "d", Type: abi.F64},
	)

	var slot kwire.Address
	func() {
		s := a.Scope()
		defer s.Close()

		addr, err := s.AllocateType(point)
		if err != nil {
			t.Fatalf("allocate: %v", err)
		}
		slot = addr

		ptr.Store[int32](addr, 42)
		ptr.Store[float32](addr+4, 3.14)
		ptr.Store[float64](addr+8, 2.71828)

		if got := ptr.Load[int32](addr); got != 42 {
			t.Errorf("i: got %d", got)
		}
		if got := ptr.Load[float32](addr + 4); got != 3.14 {
			t.Errorf("f: got %g", got)
		}
		if got := ptr.Load[float64](addr + 8); got != 2.71828 {
			t.Errorf("d: got %g", got)
		}
	}()

	// After scope exit the slot is no longer live: the next allocation
	// at the same alignment reuses the address.
	s := a.Scope()
	defer s.Close()
	addr, err := s.AllocateType(point)
	if err != nil {
		t.Fatalf("reuse allocate: %v", err)
	}
	if addr != slot {
		t.Errorf("released aggregate slot not reused: %#x vs %#x", uintptr(addr), uintptr(slot))
	}
}

func TestLocalReferences(t *testing.T) {
	a, _ := newTestArena(t, 0)
	s := a.Scope()
	defer s.Close()

	addr1, _ := s.Allocate(8, 8)
	addr2, _ := s.Allocate(8, 8)

	if err := s.AddLocal("alpha", addr1); err != nil {
		t.Fatalf("register alpha: %v", err)
	}
	if err := s.AddLocal("beta", addr2); err != nil {
		t.Fatalf("register beta: %v", err)
	}

	t.Run("bijection", func(t *testing.T) {
		if got, ok := s.LocalAddress("alpha"); !ok || got != addr1 {
			t.Errorf("LocalAddress(alpha): got %#x ok=%v", uintptr(got), ok)
		}
		if got, ok := s.LocalValue(addr2); !ok || got != "beta" {
			t.Errorf("LocalValue(addr2): got %v ok=%v", got, ok)
		}
		if _, ok := s.LocalAddress("gamma"); ok {
			t.Error("unknown value must not resolve")
		}
		if _, ok := s.LocalValue(addr1 + 4); ok {
			t.Error("unknown address must not resolve")
		}
	})

	t.Run("duplicate_value_rejected", func(t *testing.T) {
		addr3, _ := s.Allocate(8, 8)
		if err := s.AddLocal("alpha", addr3); !errors.IsKind(err, errors.KindAlreadyRegistered) {
			t.Fatalf("expected already_registered, got %v", err)
		}
	})

	t.Run("duplicate_address_rejected", func(t *testing.T) {
		if err := s.AddLocal("gamma", addr1); !errors.IsKind(err, errors.KindAlreadyRegistered) {
			t.Fatalf("expected already_registered, got %v", err)
		}
	})

	t.Run("closed_scope_rejects_registration", func(t *testing.T) {
		closed := a.Scope()
		closed.Close()
		if err := closed.AddLocal("x", 0x1000); !errors.IsKind(err, errors.KindDoubleOpen) {
			t.Fatalf("expected double_open, got %v", err)
		}
	})
}

func TestArenaCloseIdempotent(t *testing.T) {
	h := alloc.Heap()
	a := New(h, 0)
	s := a.Scope()
	if _, err := s.Allocate(128, 8); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	s.Close()

	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if h.Live() != 0 {
		t.Errorf("blocks not returned: %d live", h.Live())
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	if _, err := a.Scope().Allocate(8, 8); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("allocation after arena close: expected invalid_input, got %v", err)
	}
}
