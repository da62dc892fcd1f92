package arena

import "testing"

type item struct {
	a, b int
	s    []int
}

func TestArena_AllocFree(t *testing.T) {
	a := New[item](4, nil)
	if a.Cap() != 4 {
		t.Fatalf("Cap() = %d, want 4", a.Cap())
	}

	idx, gen, ok := a.Alloc()
	if !ok {
		t.Fatal("Alloc() failed on empty arena")
	}
	if idx != 0 {
		t.Errorf("first index = %d, want 0", idx)
	}
	p := a.Get(idx, gen)
	if p == nil {
		t.Fatal("Get() returned nil for live slot")
	}
	p.a = 7

	if !a.Free(idx, gen) {
		t.Fatal("Free() rejected live slot")
	}
	if a.Get(idx, gen) != nil {
		t.Error("Get() returned value for freed slot")
	}
	if a.Free(idx, gen) {
		t.Error("double Free() accepted")
	}

	idx2, gen2, _ := a.Alloc()
	if idx2 != idx {
		t.Errorf("reused index = %d, want %d", idx2, idx)
	}
	if gen2 == gen {
		t.Error("generation not bumped after free")
	}
	if got := a.Get(idx2, gen2); got.a != 0 {
		t.Errorf("reused slot not zeroed: a = %d", got.a)
	}
}

func TestArena_Exhaustion(t *testing.T) {
	a := New[item](2, nil)
	for i := 0; i < 2; i++ {
		if _, _, ok := a.Alloc(); !ok {
			t.Fatalf("Alloc() %d failed", i)
		}
	}
	if _, _, ok := a.Alloc(); ok {
		t.Error("Alloc() succeeded past capacity")
	}
	if a.Len() != 2 || a.HighWater() != 2 {
		t.Errorf("Len() = %d HighWater() = %d, want 2 2", a.Len(), a.HighWater())
	}
}

func TestArena_ResetKeepsCapacity(t *testing.T) {
	a := New[item](1, func(it *item) {
		*it = item{s: it.s[:0]}
	})
	idx, gen, _ := a.Alloc()
	p := a.Get(idx, gen)
	p.s = append(p.s, 1, 2, 3)
	p.b = 9
	want := cap(p.s)
	a.Free(idx, gen)

	idx, gen, _ = a.Alloc()
	p = a.Get(idx, gen)
	if len(p.s) != 0 || cap(p.s) != want {
		t.Errorf("len/cap = %d/%d, want 0/%d", len(p.s), cap(p.s), want)
	}
	if p.b != 0 {
		t.Errorf("b = %d, want 0", p.b)
	}
}

func TestArena_RoundTripNeverAllocates(t *testing.T) {
	a := New[item](64, nil)
	idx := make([]uint32, 64)
	gen := make([]uint32, 64)
	allocs := testing.AllocsPerRun(100, func() {
		for i := range idx {
			idx[i], gen[i], _ = a.Alloc()
		}
		for i := range idx {
			a.Free(idx[i], gen[i])
		}
	})
	if allocs != 0 {
		t.Errorf("AllocsPerRun = %v, want 0", allocs)
	}
	if a.HighWater() > a.Cap() {
		t.Errorf("HighWater() = %d exceeds Cap() = %d", a.HighWater(), a.Cap())
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("New(0) did not panic")
		}
	}()
	New[item](0, nil)
}
