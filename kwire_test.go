package kwire

import "testing"

func TestAddress(t *testing.T) {
	if !Null.IsNull() {
		t.Error("Null must be null")
	}
	if Address(0x1000).IsNull() {
		t.Error("nonzero address must not be null")
	}

	tests := []struct {
		addr  Address
		align uintptr
		want  bool
	}{
		{0x1000, 8, true},
		{0x1004, 8, false},
		{0x1004, 4, true},
		{0x1001, 1, true},
		{0x1001, 0, true},
	}
	for _, tc := range tests {
		if got := tc.addr.Aligned(tc.align); got != tc.want {
			t.Errorf("Address(%#x).Aligned(%d) = %v, want %v", uintptr(tc.addr), tc.align, got, tc.want)
		}
	}
}

func TestBlock(t *testing.T) {
	b := Block{Addr: 0x1000, Size: 0x100}

	if b.End() != 0x1100 {
		t.Errorf("End() = %#x", uintptr(b.End()))
	}

	tests := []struct {
		addr Address
		want bool
	}{
		{0x1000, true},
		{0x10ff, true},
		{0x1100, false},
		{0x0fff, false},
	}
	for _, tc := range tests {
		if got := b.Contains(tc.addr); got != tc.want {
			t.Errorf("Contains(%#x) = %v, want %v", uintptr(tc.addr), got, tc.want)
		}
	}
}
