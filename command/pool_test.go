package command

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/internal/fault"
)

func smallConfig() gfxcmd.Config {
	return gfxcmd.NewConfig(gfxcmd.WithPoolMultiplier(4), gfxcmd.WithHighFrequencyMultiplier(16))
}

func TestCapacity(t *testing.T) {
	tests := []struct {
		size       uintptr
		multiplier int
		want       int
	}{
		{0, 1024, 1024},
		{1, 1024, 1024},
		{24, 1 << 13, 16 * (1 << 13) / 24},
		{64, 1024, 1024},
		{100, 1024, 64 * 1024 / 100},
		{4096, 1, 1},
		{5000, 1, 1},
	}
	for _, tt := range tests {
		if got := Capacity(tt.size, tt.multiplier); got != tt.want {
			t.Errorf("Capacity(%d, %d) = %d, want %d", tt.size, tt.multiplier, got, tt.want)
		}
	}
}

func TestNewPools_SizeClasses(t *testing.T) {
	p := NewPools(gfxcmd.DefaultConfig())

	wantDraw := Capacity(unsafe.Sizeof(DrawCommand{}), gfxcmd.DefaultHighFrequencyMultiplier)
	if got := p.Draw.Cap(); got != wantDraw {
		t.Errorf("Draw.Cap() = %d, want %d", got, wantDraw)
	}
	wantView := Capacity(unsafe.Sizeof(SetViewportCommand{}), gfxcmd.DefaultPoolMultiplier)
	if got := p.SetViewport.Cap(); got != wantView {
		t.Errorf("SetViewport.Cap() = %d, want %d", got, wantView)
	}
	for _, s := range p.Stats() {
		if s.Cap < 1 {
			t.Errorf("%s capacity %d", s.Kind, s.Cap)
		}
	}
}

func TestNewMergePools(t *testing.T) {
	cfg := smallConfig()
	single := NewPools(cfg).Stats()

	for _, producers := range []int{0, 1, 3} {
		merged := NewMergePools(cfg, producers).Stats()
		n := max(producers, 1)
		for k, s := range merged {
			want := n * single[k].Cap
			if s.Kind == KindBeginDebugScope || s.Kind == KindEndDebugScope {
				want += n
			}
			if s.Cap != want {
				t.Errorf("producers=%d: %s capacity %d, want %d", producers, s.Kind, s.Cap, want)
			}
		}
	}
}

func TestPools_AcquireRelease(t *testing.T) {
	p := NewPools(smallConfig())

	h := p.Acquire(KindDraw)
	if h.Kind() != KindDraw || h.IsZero() {
		t.Fatalf("Acquire() = %s", h)
	}
	d := p.Draw.Get(h)
	d.Cmds = append(d.Cmds, GenericDrawCommand{DrawCount: 1, InstanceCount: 1})
	p.Release(h)

	if p.Draw.Live() != 0 {
		t.Errorf("Live() = %d after release", p.Draw.Live())
	}

	// The recycled record is empty but keeps its capacity.
	h2, d2 := p.Draw.Acquire()
	if len(d2.Cmds) != 0 || cap(d2.Cmds) == 0 {
		t.Errorf("recycled Cmds len/cap = %d/%d", len(d2.Cmds), cap(d2.Cmds))
	}
	p.Release(h2)
}

func TestPools_RoundTripBounded(t *testing.T) {
	p := NewPools(smallConfig())
	n := p.SetScissor.Cap()
	handles := make([]Handle, n)

	allocs := testing.AllocsPerRun(20, func() {
		for i := range handles {
			handles[i] = p.Acquire(KindSetScissor)
		}
		for _, h := range handles {
			p.Release(h)
		}
	})
	if allocs != 0 {
		t.Errorf("AllocsPerRun = %v, want 0", allocs)
	}
	if hw := p.SetScissor.HighWater(); hw > n {
		t.Errorf("HighWater() = %d exceeds Cap() = %d", hw, n)
	}
}

func TestPools_Faults(t *testing.T) {
	tests := []struct {
		name string
		want error
		fn   func(p *Pools)
	}{
		{
			name: "exhausted",
			want: ErrPoolExhausted,
			fn: func(p *Pools) {
				for i := 0; i <= p.CopyTexture.Cap(); i++ {
					p.Acquire(KindCopyTexture)
				}
			},
		},
		{
			name: "double release",
			want: ErrStaleHandle,
			fn: func(p *Pools) {
				h := p.Acquire(KindSetViewport)
				p.Release(h)
				p.Release(h)
			},
		},
		{
			name: "stale get",
			want: ErrStaleHandle,
			fn: func(p *Pools) {
				h, _ := p.PushConstants.Acquire()
				p.Release(h)
				p.PushConstants.Get(h)
			},
		},
		{
			name: "kind mismatch",
			want: ErrKindMismatch,
			fn: func(p *Pools) {
				h := p.Acquire(KindSetViewport)
				p.SetScissor.Get(h)
			},
		},
		{
			name: "unknown kind",
			want: ErrUnknownKind,
			fn: func(p *Pools) {
				p.Acquire(Kind(200))
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPools(smallConfig())
			err := fault.Catch(func() { tt.fn(p) })
			if !errors.Is(err, tt.want) {
				t.Errorf("fault = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPools_Stats(t *testing.T) {
	p := NewPools(smallConfig())
	a := p.Acquire(KindBindPipeline)
	p.Acquire(KindBindPipeline)
	p.Release(a)

	s := p.Stats()[KindBindPipeline]
	if s.Kind != KindBindPipeline || s.Live != 1 || s.HighWater != 2 {
		t.Errorf("Stats() = %+v, want live 1 high water 2", s)
	}
	p.LogStats()
}
