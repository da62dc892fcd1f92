package submit

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/gogpu/gfxcmd/command"
)

// LockGroup is the set of resolved buffer locks of one ring slot.
type LockGroup struct {
	Slot  uint32
	Locks []command.BufferLock
}

// Barrier is a resolved MemoryBarrier record: buffer locks grouped per ring
// slot in ascending slot order, and at most one transition per texture view.
type Barrier struct {
	Groups      []LockGroup
	Transitions []command.TextureTransition
}

// Empty reports whether the barrier has nothing to synchronize.
func (b Barrier) Empty() bool {
	return len(b.Groups) == 0 && len(b.Transitions) == 0
}

func (b Barrier) String() string {
	var sb strings.Builder
	for _, g := range b.Groups {
		fmt.Fprintf(&sb, "slot %d:", g.Slot)
		for _, l := range g.Locks {
			fmt.Fprintf(&sb, " [buffer=%d range=%s %s]", l.Buffer, l.Range, l.Direction)
		}
		sb.WriteByte('\n')
	}
	for _, t := range b.Transitions {
		fmt.Fprintf(&sb, "%s\n", t)
	}
	return sb.String()
}

// ResolveBarrier turns the raw entries of a MemoryBarrier record into a
// Barrier. The input is not modified.
//
// Locks are sorted by slot, buffer, direction and offset, and locks on the
// same slot, buffer and direction whose ranges overlap or touch are merged
// into one covering range. Transitions are reduced to one per view, in the
// order views first appear, keeping the first source and the last target
// layout; a view whose net transition is a no-op is dropped.
func ResolveBarrier(locks []command.BufferLock, transitions []command.TextureTransition) Barrier {
	var b Barrier

	if len(locks) > 0 {
		sorted := slices.Clone(locks)
		slices.SortFunc(sorted, compareLocks)

		merged := sorted[:1]
		for _, l := range sorted[1:] {
			last := &merged[len(merged)-1]
			if l.Slot == last.Slot && l.Buffer == last.Buffer && l.Direction == last.Direction && l.Range.Overlaps(last.Range) {
				last.Range = last.Range.Union(l.Range)
				continue
			}
			merged = append(merged, l)
		}

		start := 0
		for i := 1; i <= len(merged); i++ {
			if i == len(merged) || merged[i].Slot != merged[start].Slot {
				b.Groups = append(b.Groups, LockGroup{Slot: merged[start].Slot, Locks: merged[start:i:i]})
				start = i
			}
		}
	}

	if len(transitions) > 0 {
		index := make(map[command.TextureID]int, len(transitions))
		out := make([]command.TextureTransition, 0, len(transitions))
		for _, t := range transitions {
			if i, ok := index[t.View]; ok {
				out[i].Target = t.Target
				continue
			}
			index[t.View] = len(out)
			out = append(out, t)
		}
		b.Transitions = slices.DeleteFunc(out, func(t command.TextureTransition) bool {
			return t.Source == t.Target
		})
		if len(b.Transitions) == 0 {
			b.Transitions = nil
		}
	}

	return b
}

func compareLocks(a, b command.BufferLock) int {
	return cmp.Or(
		cmp.Compare(a.Slot, b.Slot),
		cmp.Compare(a.Buffer, b.Buffer),
		cmp.Compare(a.Direction, b.Direction),
		cmp.Compare(a.Range.Offset, b.Range.Offset),
		cmp.Compare(a.Range.Size, b.Range.Size),
	)
}
