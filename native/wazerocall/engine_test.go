package wazerocall

import (
	"context"
	"testing"

	"github.com/karmakrafts/kWire-sub000/abi"
	"github.com/karmakrafts/kWire-sub000/alloc"
	"github.com/karmakrafts/kWire-sub000/argbuf"
	"github.com/karmakrafts/kWire-sub000/dispatch"
	"github.com/karmakrafts/kWire-sub000/errors"
)

// addWasm is a handwritten core module exporting add(i32, i32) -> i32.
var addWasm = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x07, 0x01, 0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type (i32,i32)->i32
	0x03, 0x02, 0x01, 0x00, // function section
	0x07, 0x07, 0x01, 0x03, 0x61, 0x64, 0x64, 0x00, 0x00, // export "add"
	0x0a, 0x09, 0x01, 0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // local.get 0; local.get 1; i32.add
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	ctx := context.Background()
	eng := NewEngine(ctx)
	t.Cleanup(func() {
		if err := eng.Close(ctx); err != nil {
			t.Errorf("close: %v", err)
		}
	})
	return eng
}

func newTestBuffer(t *testing.T) *argbuf.Buffer {
	t.Helper()
	b, err := argbuf.New(alloc.Heap(), 0)
	if err != nil {
		t.Fatalf("new buffer: %v", err)
	}
	t.Cleanup(func() {
		if err := b.Free(); err != nil {
			t.Errorf("free: %v", err)
		}
	})
	return b
}

func TestGuestAdd(t *testing.T) {
	eng := newTestEngine(t)
	targets, err := eng.LoadModule(context.Background(), addWasm)
	if err != nil {
		t.Fatalf("load module: %v", err)
	}
	target, ok := targets["add"]
	if !ok {
		t.Fatalf("export add not found in %v", targets)
	}

	sig := &dispatch.Signature{
		Params: []*abi.Type{abi.S32, abi.S32},
		Result: abi.S32,
	}
	d := dispatch.NewDispatcher(eng)
	buf := newTestBuffer(t)
	buf.PutInt32(40)
	buf.PutInt32(2)

	result, err := d.Call(target, sig, buf)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got := result.(int32); got != 42 {
		t.Errorf("add(40, 2) = %d", got)
	}

	// Negative operands survive the i32 encoding.
	buf.Clear()
	buf.PutInt32(-40)
	buf.PutInt32(2)
	result, err = d.Call(target, sig, buf)
	if err != nil {
		t.Fatalf("negative call: %v", err)
	}
	if got := result.(int32); got != -38 {
		t.Errorf("add(-40, 2) = %d", got)
	}
}

func TestInvalidModule(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.LoadModule(context.Background(), []byte{0x00, 0x61, 0x73})
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestUnknownTarget(t *testing.T) {
	eng := newTestEngine(t)
	_, err := eng.Trampoline(0xdead, &dispatch.Signature{})
	if !errors.IsKind(err, errors.KindNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestArityCheckedAgainstGuest(t *testing.T) {
	eng := newTestEngine(t)
	targets, err := eng.LoadModule(context.Background(), addWasm)
	if err != nil {
		t.Fatalf("load module: %v", err)
	}

	sig := &dispatch.Signature{Params: []*abi.Type{abi.S32}}
	_, err = eng.Trampoline(targets["add"], sig)
	if !errors.IsKind(err, errors.KindSignatureMismatch) {
		t.Fatalf("expected signature_mismatch, got %v", err)
	}
}

func TestAggregateParamRejected(t *testing.T) {
	eng := newTestEngine(t)
	targets, err := eng.LoadModule(context.Background(), addWasm)
	if err != nil {
		t.Fatalf("load module: %v", err)
	}

	pair := abi.Struct("pair",
		abi.Field{Name: "a", Type: abi.S32},
		abi.Field{Name: "b", Type: abi.S32},
	)
	sig := &dispatch.Signature{Params: []*abi.Type{pair, abi.S32}}
	_, err = eng.Trampoline(targets["add"], sig)
	if !errors.IsKind(err, errors.KindInvalidInput) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}
