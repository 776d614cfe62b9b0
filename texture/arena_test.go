package texture

import "testing"

func TestArenaAllocAndSwap(t *testing.T) {
	a := NewArena(4)

	h0 := a.Alloc(Descriptor{Name: "output0", Width: 320, Height: 240, Format: FormatR8g8b8a8Unorm})
	h1 := a.Alloc(Descriptor{Name: "feedback0", Width: 320, Height: 240, Format: FormatR8g8b8a8Unorm})

	if a.Get(h0).Name != "output0" {
		t.Fatalf("expected output0, got %s", a.Get(h0).Name)
	}

	a.Swap(h0, h1)

	if a.Get(h0).Name != "feedback0" || a.Get(h1).Name != "output0" {
		t.Fatalf("swap did not exchange descriptors: h0=%s h1=%s", a.Get(h0).Name, a.Get(h1).Name)
	}
}

func TestArenaFreeAndReuse(t *testing.T) {
	a := NewArena(2)
	h0 := a.Alloc(Descriptor{Name: "a"})
	a.Free(h0)

	if a.Get(h0) != nil {
		t.Fatal("expected freed handle to resolve to nil")
	}

	h1 := a.Alloc(Descriptor{Name: "b"})
	if h1 != h0 {
		t.Fatalf("expected freed slot %d to be reused, got %d", h0, h1)
	}
}

func TestArenaInvalidHandle(t *testing.T) {
	a := NewArena(1)
	if a.Get(Invalid) != nil {
		t.Fatal("expected Invalid handle to resolve to nil")
	}
	if a.Get(Handle(99)) != nil {
		t.Fatal("expected out-of-range handle to resolve to nil")
	}
}
