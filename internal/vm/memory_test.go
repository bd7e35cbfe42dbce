package vm

import (
	"strings"
	"testing"

	"github.com/lumelang/lume/internal/config"
)

func TestFixedRoundTrip(t *testing.T) {
	hm := New(nil)
	for addr, v := range map[int]int64{0: 42, 3: -7, 10: 0} {
		if err := hm.WriteFixed(addr, v); err != nil {
			t.Fatalf("WriteFixed(%d) failed: %v", addr, err)
		}
		got, err := hm.ReadFixed(addr)
		if err != nil {
			t.Fatalf("ReadFixed(%d) failed: %v", addr, err)
		}
		if got != v {
			t.Errorf("addr %d: got %d, want %d", addr, got, v)
		}
	}
}

func TestReadFixed_OutOfBounds(t *testing.T) {
	hm := New(nil)
	_, err := hm.ReadFixed(5)
	if err == nil {
		t.Fatal("expected out-of-bounds error")
	}
	if !strings.Contains(err.Error(), "5") {
		t.Errorf("error should include the address: %v", err)
	}
}

func TestGlobalAddressing(t *testing.T) {
	gmem := NewGlobal()
	if err := gmem.WriteFixed(0, 99); err != nil {
		t.Fatalf("populating global failed: %v", err)
	}
	hm := New(gmem)

	gaddr := -(config.ClosureArgsCapacity + 1) // first global slot
	got, err := hm.ReadFixed(gaddr)
	if err != nil {
		t.Fatalf("global read failed: %v", err)
	}
	if got != 99 {
		t.Errorf("got %d, want 99", got)
	}

	if err := hm.WriteFixed(gaddr, 1); err == nil {
		t.Errorf("global memory is read-only, write must fail")
	}
	if err := hm.WriteFractal(gaddr, New(nil)); err == nil {
		t.Errorf("global fractal write must fail")
	}
}

func TestClosureAddressing(t *testing.T) {
	hm := New(nil)

	// Closure addresses are read-write and independent of call-local cells.
	if err := hm.WriteFixed(-1, 7); err != nil {
		t.Fatalf("closure write failed: %v", err)
	}
	got, err := hm.ReadFixed(-1)
	if err != nil {
		t.Fatalf("closure read failed: %v", err)
	}
	if got != 7 {
		t.Errorf("got %d, want 7", got)
	}

	if err := hm.WriteFixed(0, 100); err != nil {
		t.Fatalf("local write failed: %v", err)
	}
	if got, _ := hm.ReadFixed(-1); got != 7 {
		t.Errorf("local write leaked into closure space")
	}

	last := -config.ClosureArgsCapacity
	if err := hm.WriteFixed(last, 5); err != nil {
		t.Errorf("last closure slot should be writable: %v", err)
	}
}

func TestFractalRoundTrip(t *testing.T) {
	hm := New(nil)
	inner := New(nil)
	if err := inner.WriteFixed(0, 11); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(2, inner); err != nil {
		t.Fatalf("WriteFractal failed: %v", err)
	}

	got, err := hm.Fractal(2)
	if err != nil {
		t.Fatalf("Fractal failed: %v", err)
	}
	if v, _ := got.ReadFixed(0); v != 11 {
		t.Errorf("got %d, want 11", v)
	}

	// ReadFractal returns a copy: mutating it must not affect the slot.
	cp, err := hm.ReadFractal(2)
	if err != nil {
		t.Fatalf("ReadFractal failed: %v", err)
	}
	if err := cp.WriteFixed(0, 999); err != nil {
		t.Fatal(err)
	}
	if v, _ := got.ReadFixed(0); v != 11 {
		t.Errorf("ReadFractal must not alias the stored fractal")
	}
}

func TestFractal_FixedSlotError(t *testing.T) {
	hm := New(nil)
	if err := hm.WriteFixed(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := hm.Fractal(0); err == nil {
		t.Errorf("reading a fixed cell as a fractal must fail")
	}
}

func TestPushPop(t *testing.T) {
	hm := New(nil)
	if err := hm.WriteFractal(0, New(nil)); err != nil {
		t.Fatal(err)
	}

	for _, v := range []int64{10, 20, 30} {
		if err := hm.PushFractalFixed(0, v); err != nil {
			t.Fatalf("push failed: %v", err)
		}
	}
	if n, _ := hm.Len(0); n != 3 {
		t.Fatalf("len = %d, want 3", n)
	}

	popped, err := hm.PopFractal(0)
	if err != nil {
		t.Fatalf("pop failed: %v", err)
	}
	if v, _ := popped.ReadFixed(0); v != 30 {
		t.Errorf("popped %d, want 30", v)
	}
	if n, _ := hm.Len(0); n != 2 {
		t.Errorf("len after pop = %d, want 2", n)
	}
}

func TestPopEmpty(t *testing.T) {
	hm := New(nil)
	if err := hm.WriteFractal(0, New(nil)); err != nil {
		t.Fatal(err)
	}
	_, err := hm.PopFractal(0)
	if err == nil {
		t.Fatal("popping empty must fail, not panic")
	}
	if !strings.Contains(err.Error(), "empty") {
		t.Errorf("error should say the array is empty: %v", err)
	}
}

func TestPushNestedFractal(t *testing.T) {
	hm := New(nil)
	if err := hm.WriteFractal(0, New(nil)); err != nil {
		t.Fatal(err)
	}

	child, err := hm.PushNestedFractal(0)
	if err != nil {
		t.Fatalf("PushNestedFractal failed: %v", err)
	}
	if err := child.WriteFixed(0, 5); err != nil {
		t.Fatal(err)
	}

	other := New(nil)
	if err := other.WriteFixed(0, 6); err != nil {
		t.Fatal(err)
	}
	if err := hm.PushNestedFractalMem(0, other); err != nil {
		t.Fatalf("PushNestedFractalMem failed: %v", err)
	}

	if n, _ := hm.Len(0); n != 2 {
		t.Fatalf("len = %d, want 2", n)
	}
	popped, err := hm.PopFractal(0)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := popped.ReadFixed(0); v != 6 {
		t.Errorf("nested element should come back as the same memory")
	}
}

func TestRegisterChains(t *testing.T) {
	hm := New(nil)
	outer := New(nil)
	inner := New(nil)
	if err := inner.WriteFixed(0, 77); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(1, outer); err != nil {
		t.Fatal(err)
	}
	if err := hm.PushNestedFractalMem(1, New(nil)); err != nil {
		t.Fatal(err)
	}
	if err := hm.PushNestedFractalMem(1, inner); err != nil {
		t.Fatal(err)
	}

	// Register 100 addresses "element 1 of the fractal at address 1".
	hm.SetRegister(100, []int{1, 1})
	got, err := hm.Fractal(100)
	if err != nil {
		t.Fatalf("chain resolution failed: %v", err)
	}
	if v, _ := got.ReadFixed(0); v != 77 {
		t.Errorf("chain resolved wrong element: %d", v)
	}

	hm.SetRegister(101, []int{1, 0, 3})
	if _, err := hm.Fractal(101); err == nil {
		t.Errorf("broken chain should error")
	}

	// A negative step must surface as a chain error, not an index panic.
	hm.SetRegister(102, []int{1, -2})
	_, err = hm.Fractal(102)
	if err == nil {
		t.Fatal("negative chain step should error")
	}
	if !strings.Contains(err.Error(), "102") {
		t.Errorf("error should name the register address: %v", err)
	}
}

func TestCopyFractal(t *testing.T) {
	hm := New(nil)
	src := New(nil)
	if err := src.WriteFixed(0, 8); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(0, src); err != nil {
		t.Fatal(err)
	}

	// Destination slot was never allocated; copy tolerates that.
	if err := hm.CopyFractal(0, 4); err != nil {
		t.Fatalf("CopyFractal failed: %v", err)
	}
	dst, err := hm.Fractal(4)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := dst.ReadFixed(0); v != 8 {
		t.Errorf("copy lost data: %d", v)
	}

	// Deep copy: mutations do not travel between the two slots.
	if err := dst.WriteFixed(0, 9); err != nil {
		t.Fatal(err)
	}
	if v, _ := src.ReadFixed(0); v != 8 {
		t.Errorf("copy aliased the source")
	}
}

func TestClone(t *testing.T) {
	gmem := NewGlobal()
	hm := New(gmem)
	if err := hm.WriteFixed(0, 1); err != nil {
		t.Fatal(err)
	}
	nested := New(gmem)
	if err := nested.WriteFixed(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(1, nested); err != nil {
		t.Fatal(err)
	}
	hm.SetRegister(50, []int{1})

	cl := hm.Clone()
	if err := cl.WriteFixed(0, 100); err != nil {
		t.Fatal(err)
	}
	nf, _ := cl.Fractal(1)
	if err := nf.WriteFixed(0, 200); err != nil {
		t.Fatal(err)
	}

	if v, _ := hm.ReadFixed(0); v != 1 {
		t.Errorf("clone shares fixed cells")
	}
	orig, _ := hm.Fractal(1)
	if v, _ := orig.ReadFixed(0); v != 2 {
		t.Errorf("clone shares nested fractals")
	}
	if _, err := cl.Fractal(50); err != nil {
		t.Errorf("register chains should be cloned: %v", err)
	}
}

func TestAllocPayload(t *testing.T) {
	gmem := NewGlobal()
	hm := New(gmem)
	f := New(gmem)
	if err := f.WriteFixed(0, 4); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(0, f); err != nil {
		t.Fatal(err)
	}

	payload, err := hm.AllocPayload(0)
	if err != nil {
		t.Fatalf("AllocPayload failed: %v", err)
	}
	if err := payload.WriteFixed(0, 5); err != nil {
		t.Fatal(err)
	}
	if v, _ := f.ReadFixed(0); v != 4 {
		t.Errorf("payload aliases the handler's memory")
	}
}

func TestString_Indentation(t *testing.T) {
	hm := New(nil)
	if err := hm.WriteFixed(0, 1); err != nil {
		t.Fatal(err)
	}
	inner := New(nil)
	if err := inner.WriteFixed(0, 2); err != nil {
		t.Fatal(err)
	}
	if err := hm.WriteFractal(1, inner); err != nil {
		t.Fatal(err)
	}

	out := hm.String()
	if !strings.Contains(out, "fractal") {
		t.Errorf("nested fractal missing from dump:\n%s", out)
	}
	if !strings.Contains(out, "\n  ") {
		t.Errorf("nested content should be indented:\n%s", out)
	}
}
