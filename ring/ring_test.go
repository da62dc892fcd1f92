package ring

import (
	"errors"
	"testing"
)

func TestNew_InvalidLength(t *testing.T) {
	for _, n := range []int{0, -1} {
		if _, err := New(n); !errors.Is(err, ErrInvalidLength) {
			t.Errorf("New(%d) error = %v, want %v", n, err, ErrInvalidLength)
		}
	}
}

func TestBuffer_WrapsAfterLength(t *testing.T) {
	for _, length := range []int{1, 2, 3, 5, 8} {
		r, err := New(length)
		if err != nil {
			t.Fatalf("New(%d): %v", length, err)
		}
		for start := 0; start < length; start++ {
			initial := r.WriteIndex()
			for range length {
				r.Advance()
			}
			if got := r.WriteIndex(); got != initial {
				t.Errorf("len %d: WriteIndex after %d advances = %d, want %d", length, length, got, initial)
			}
			r.Advance()
		}
	}
}

func TestBuffer_ReadTrailsWrite(t *testing.T) {
	r, _ := New(3)
	tests := []struct {
		write, read uint32
	}{
		{0, 2},
		{1, 0},
		{2, 1},
		{0, 2},
	}
	for i, tt := range tests {
		if r.WriteIndex() != tt.write || r.ReadIndex() != tt.read {
			t.Errorf("frame %d: %s, want write=%d read=%d", i, r, tt.write, tt.read)
		}
		r.Advance()
	}
}

func TestBuffer_SingleSlotNeverAdvances(t *testing.T) {
	r, _ := New(1)
	for i := 0; i < 10; i++ {
		if got := r.Advance(); got != 0 {
			t.Fatalf("Advance() = %d, want 0", got)
		}
		if r.ReadIndex() != r.WriteIndex() {
			t.Fatalf("ReadIndex() = %d, WriteIndex() = %d", r.ReadIndex(), r.WriteIndex())
		}
	}
}
