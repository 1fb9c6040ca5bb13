package runtime

import "testing"

func TestHeapAllocLoadStore(t *testing.T) {
	h := NewHeap()
	ref := h.Alloc(8)

	v, err := h.Load(ref.Cell)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if v.Kind != KindNil {
		t.Fatalf("fresh cell Load() = %+v, want Nil", v)
	}

	if err := h.Store(ref.Cell, IntValue(7)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	v, err = h.Load(ref.Cell)
	if err != nil || v.Kind != KindInt || v.Int != 7 {
		t.Fatalf("Load() after Store = %+v, %v, want Int(7)", v, err)
	}
}

func TestHeapFreeThenUseIsError(t *testing.T) {
	h := NewHeap()
	ref := h.Alloc(8)
	if err := h.Free(ref.Cell); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if _, err := h.Load(ref.Cell); err != ErrUseAfterFree {
		t.Fatalf("Load() after Free = %v, want ErrUseAfterFree", err)
	}
}

func TestHeapDoubleFreeIsError(t *testing.T) {
	h := NewHeap()
	ref := h.Alloc(8)
	h.Free(ref.Cell)
	if err := h.Free(ref.Cell); err != ErrDoubleFree {
		t.Fatalf("second Free() = %v, want ErrDoubleFree", err)
	}
}

func TestHeapFreeUnknownCellIsError(t *testing.T) {
	h := NewHeap()
	if err := h.Free(999); err != ErrBadCellID {
		t.Fatalf("Free(999) = %v, want ErrBadCellID", err)
	}
}

func TestHeapArrayGetSetAppend(t *testing.T) {
	h := NewHeap()
	arr := h.ArrayNew()

	if err := h.ArraySet(arr.Cell, 0, IntValue(1)); err != nil {
		t.Fatalf("ArraySet(0): %v", err)
	}
	if err := h.ArraySet(arr.Cell, 1, IntValue(2)); err != nil {
		t.Fatalf("ArraySet(1): %v", err)
	}
	if _, err := h.ArrayGet(arr.Cell, 5); err != ErrOutOfBounds {
		t.Fatalf("ArrayGet(5) = %v, want ErrOutOfBounds", err)
	}
	v, err := h.ArrayGet(arr.Cell, 1)
	if err != nil || v.Int != 2 {
		t.Fatalf("ArrayGet(1) = %+v, %v, want Int(2)", v, err)
	}
}

func TestHeapMapGetMissingKeyIsKeyNotFound(t *testing.T) {
	h := NewHeap()
	m := h.MapNew()
	if _, err := h.MapGet(m.Cell, "missing"); err != ErrKeyNotFound {
		t.Fatalf("MapGet(missing) = %v, want ErrKeyNotFound", err)
	}
	h.MapSet(m.Cell, "k", StringValue("v"))
	v, err := h.MapGet(m.Cell, "k")
	if err != nil || v.Str != "v" {
		t.Fatalf("MapGet(k) = %+v, %v, want String(v)", v, err)
	}
}

func TestHeapReleaseCascadesThroughContainer(t *testing.T) {
	h := NewHeap()
	outer := h.ArrayNew()
	inner := h.Alloc(8)
	h.ArraySet(outer.Cell, 0, inner)

	if got := h.LiveCount(); got != 2 {
		t.Fatalf("LiveCount() = %d, want 2", got)
	}
	h.Release(outer)
	if got := h.LiveCount(); got != 0 {
		t.Fatalf("LiveCount() after releasing outer = %d, want 0 (cascade through inner)", got)
	}
}
