package dispatch

import (
	"github.com/gogpu/gfxcmd"
)

// Scratch holds the parallel per-sub-draw arrays multi-draw calls read.
//
// It grows geometrically when a draw batches more sub-draws than it can hold
// and never shrinks, so its capacity is the high-water mark of the largest
// batch seen. A Scratch belongs to one submitting goroutine.
type Scratch struct {
	counts       []uint32
	firsts       []uint32
	offsets      []uint64
	baseVertices []int32

	grows int
}

// NewScratch returns a scratch context with room for capacity sub-draws.
func NewScratch(capacity int) *Scratch {
	capacity = max(capacity, 1)
	return &Scratch{
		counts:       make([]uint32, 0, capacity),
		firsts:       make([]uint32, 0, capacity),
		offsets:      make([]uint64, 0, capacity),
		baseVertices: make([]int32, 0, capacity),
	}
}

// Cap returns the number of sub-draws the scratch holds without growing.
func (s *Scratch) Cap() int { return cap(s.counts) }

// Grows returns how many times the scratch has grown.
func (s *Scratch) Grows() int { return s.grows }

// reserve makes every array length n, doubling capacity until it fits.
func (s *Scratch) reserve(n int) {
	if n > cap(s.counts) {
		old := cap(s.counts)
		c := max(old, 1)
		for c < n {
			c *= 2
		}
		s.counts = make([]uint32, 0, c)
		s.firsts = make([]uint32, 0, c)
		s.offsets = make([]uint64, 0, c)
		s.baseVertices = make([]int32, 0, c)
		s.grows++
		gfxcmd.Logger().Warn("dispatch: multi-draw scratch grown",
			"draws", n, "old_cap", old, "new_cap", c)
	}
	s.counts = s.counts[:n]
	s.firsts = s.firsts[:n]
	s.offsets = s.offsets[:n]
	s.baseVertices = s.baseVertices[:n]
}
