package cmdbuf

import "github.com/gogpu/gfxcmd/command"

// Ledger accumulates buffer locks and texture transitions while a producer
// records, and turns each pending batch into one MemoryBarrier record.
//
// The ledger does not deduplicate. Overlapping or repeated entries are legal
// and only make the resulting barrier more conservative; resolution merges
// them at submission.
type Ledger struct {
	locks       []command.BufferLock
	transitions []command.TextureTransition
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Lock records that a write to a buffer range must complete before a
// dependent access.
func (l *Ledger) Lock(lock command.BufferLock) {
	l.locks = append(l.locks, lock)
}

// Transition records a texture layout transition.
func (l *Ledger) Transition(t command.TextureTransition) {
	l.transitions = append(l.transitions, t)
}

// Pending returns the number of entries not yet flushed.
func (l *Ledger) Pending() int {
	return len(l.locks) + len(l.transitions)
}

// Locks returns the pending buffer locks. The slice is only valid until the
// next Flush or Reset.
func (l *Ledger) Locks() []command.BufferLock { return l.locks }

// Transitions returns the pending texture transitions. The slice is only
// valid until the next Flush or Reset.
func (l *Ledger) Transitions() []command.TextureTransition { return l.transitions }

// Flush appends one MemoryBarrier record consuming every pending entry to
// buf, placing the barrier before whatever buf records next. It reports
// whether a record was appended; with nothing pending it does nothing.
func (l *Ledger) Flush(buf *Buffer) bool {
	if l.Pending() == 0 {
		return false
	}
	buf.MemoryBarrier(l.locks, l.transitions)
	l.Reset()
	return true
}

// Reset drops every pending entry, keeping capacity.
func (l *Ledger) Reset() {
	l.locks = l.locks[:0]
	l.transitions = l.transitions[:0]
}
