// Package arena provides a fixed-capacity slot allocator that hands out dense
// indices instead of pointers.
//
// Storage for every slot is allocated once, when the arena is created.
// Alloc and Free are O(1) and never allocate. Each slot carries a generation
// counter that is bumped on Free, so an index/generation pair that outlived
// its slot is detected instead of silently aliasing a newer value.
//
// An Arena is not safe for concurrent use.
package arena

// Arena is a fixed-capacity pool of T values addressed by index.
type Arena[T any] struct {
	slots []T
	gens  []uint32
	live  []bool

	// free is a LIFO stack of unused slot indices.
	free []uint32

	// reset is applied to a slot when it is freed.
	reset func(*T)

	highWater int
}

// New creates an arena with room for capacity values.
// The reset function, if non-nil, is applied to a value when it is freed;
// when nil the value is overwritten with its zero value.
// New panics if capacity is not positive.
func New[T any](capacity int, reset func(*T)) *Arena[T] {
	if capacity <= 0 {
		panic("arena: capacity must be positive")
	}
	a := &Arena[T]{
		slots: make([]T, capacity),
		gens:  make([]uint32, capacity),
		live:  make([]bool, capacity),
		free:  make([]uint32, capacity),
		reset: reset,
	}
	// Hand out low indices first.
	for i := range a.free {
		a.free[i] = uint32(capacity - 1 - i) //nolint:gosec // capacity fits uint32
		a.gens[i] = 1
	}
	return a
}

// Alloc reserves a slot and returns its index and generation.
// ok is false when the arena is exhausted.
func (a *Arena[T]) Alloc() (index, gen uint32, ok bool) {
	n := len(a.free)
	if n == 0 {
		return 0, 0, false
	}
	index = a.free[n-1]
	a.free = a.free[:n-1]
	a.live[index] = true
	if used := len(a.slots) - len(a.free); used > a.highWater {
		a.highWater = used
	}
	return index, a.gens[index], true
}

// Free releases the slot. It returns false if index/gen does not name a
// live slot (double free or stale handle).
func (a *Arena[T]) Free(index, gen uint32) bool {
	if int(index) >= len(a.slots) || !a.live[index] || a.gens[index] != gen {
		return false
	}
	if a.reset != nil {
		a.reset(&a.slots[index])
	} else {
		var zero T
		a.slots[index] = zero
	}
	a.live[index] = false
	a.gens[index]++
	if a.gens[index] == 0 {
		a.gens[index] = 1
	}
	a.free = append(a.free, index)
	return true
}

// Get returns the value in a live slot, or nil if index/gen is stale.
func (a *Arena[T]) Get(index, gen uint32) *T {
	if int(index) >= len(a.slots) || !a.live[index] || a.gens[index] != gen {
		return nil
	}
	return &a.slots[index]
}

// Cap returns the fixed capacity.
func (a *Arena[T]) Cap() int { return len(a.slots) }

// Len returns the number of live slots.
func (a *Arena[T]) Len() int { return len(a.slots) - len(a.free) }

// HighWater returns the largest number of simultaneously live slots seen.
func (a *Arena[T]) HighWater() int { return a.highWater }
