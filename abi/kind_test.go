package abi

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindS8, "s8"},
		{KindU64, "u64"},
		{KindF32, "f32"},
		{KindNInt, "nint"},
		{KindPtr, "ptr"},
		{KindFuncPtr, "funcptr"},
		{KindAggregate, "aggregate"},
		{KindReference, "reference"},
		{Kind(200), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.kind.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestKindPredicates(t *testing.T) {
	if !KindS32.IsSigned() || KindU32.IsSigned() {
		t.Error("signedness misclassified")
	}
	if !KindNInt.IsSigned() || KindNUInt.IsSigned() {
		t.Error("native signedness misclassified")
	}
	if !KindF64.IsFloat() || KindS64.IsFloat() {
		t.Error("float misclassified")
	}
	if !KindPtr.IsAddress() || !KindReference.IsAddress() || KindU64.IsAddress() {
		t.Error("address kinds misclassified")
	}
	if !KindU8.IsPrimitive() || KindAggregate.IsPrimitive() || KindPtr.IsPrimitive() {
		t.Error("primitive misclassified")
	}
}

func TestKindFixedSize(t *testing.T) {
	tests := []struct {
		kind Kind
		want uint32
	}{
		{KindS8, 1},
		{KindU16, 2},
		{KindF32, 4},
		{KindU64, 8},
		{KindNInt, PointerSize},
		{KindNFloat, PointerSize},
		{KindPtr, PointerSize},
		{KindFuncPtr, PointerSize},
		{KindReference, PointerSize},
		{KindVoid, 0},
		{KindAggregate, 0},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			if got := tc.kind.FixedSize(); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}
