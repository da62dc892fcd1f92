// Package ring tracks which physical copy of an N-buffered resource is being
// written this frame and which copy is safe to read.
//
// With Length copies, the writer advances one slot per frame and the reader
// trails it by one, so a resource written for frame N can still be read for
// frame N-1 while the GPU drains it. Length 1 is the degenerate case with a
// single copy: the index never moves and reads and writes share slot 0.
package ring

import (
	"errors"
	"fmt"
)

// ErrInvalidLength is returned by New for a non-positive length.
var ErrInvalidLength = errors.New("ring: length must be positive")

// Buffer is a ring of slot indices. The zero value is not usable; call New.
// A Buffer is not safe for concurrent use.
type Buffer struct {
	length     uint32
	writeIndex uint32
}

// New returns a ring of length slots with the write index at 0.
func New(length int) (*Buffer, error) {
	if length <= 0 || uint64(length) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLength, length)
	}
	return &Buffer{length: uint32(length)}, nil //nolint:gosec // range checked above
}

// Length returns the number of slots.
func (r *Buffer) Length() uint32 { return r.length }

// WriteIndex returns the slot written this frame.
func (r *Buffer) WriteIndex() uint32 { return r.writeIndex }

// ReadIndex returns the slot that is safe to read: the one written the
// previous frame. With a single slot it equals WriteIndex.
func (r *Buffer) ReadIndex() uint32 {
	return (r.writeIndex + r.length - 1) % r.length
}

// Advance moves the write index to the next slot, wrapping modulo Length,
// and returns the new write index.
func (r *Buffer) Advance() uint32 {
	r.writeIndex = (r.writeIndex + 1) % r.length
	return r.writeIndex
}

func (r *Buffer) String() string {
	return fmt.Sprintf("ring(len=%d write=%d read=%d)", r.length, r.writeIndex, r.ReadIndex())
}
