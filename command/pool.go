package command

import (
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/internal/arena"
	"github.com/gogpu/gfxcmd/internal/fault"
)

// Handle names one record in a Pools. It is a kind tag plus an arena index
// and generation; a handle whose record was released is stale and faults on
// use. The zero Handle names nothing.
type Handle struct {
	kind  Kind
	index uint32
	gen   uint32
}

// Kind returns the kind of the record the handle names.
func (h Handle) Kind() Kind { return h.kind }

// IsZero reports whether h is the zero Handle.
func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%s#%d.%d", h.kind, h.index, h.gen)
}

// Capacity returns the number of records of the given size a pool holds:
// the previous power of two of size times multiplier, in bytes, divided by
// size. It is at least 1.
func Capacity(size uintptr, multiplier int) int {
	if size == 0 {
		size = 1
	}
	class := uint64(1) << (bits.Len64(uint64(size)) - 1)
	n := int(class * uint64(multiplier) / uint64(size)) //nolint:gosec // bounded by config
	return max(n, 1)
}

// Pool is a fixed-capacity pool of records of one kind.
// It is not safe for concurrent use.
type Pool[T any] struct {
	kind  Kind
	arena *arena.Arena[T]
}

// capacityFunc returns the pool capacity for records of kind k and the
// given size.
type capacityFunc func(k Kind, size uintptr) int

func newPool[T any](kind Kind, capacity capacityFunc, reset func(*T)) *Pool[T] {
	var zero T
	return &Pool[T]{
		kind:  kind,
		arena: arena.New[T](capacity(kind, unsafe.Sizeof(zero)), reset),
	}
}

// Acquire constructs a zero-valued record and returns its handle and storage.
// Exhaustion is fatal.
func (p *Pool[T]) Acquire() (Handle, *T) {
	index, gen, ok := p.arena.Alloc()
	if !ok {
		fault.Raisef(ErrPoolExhausted, "%s (capacity %d)", p.kind, p.arena.Cap())
	}
	return Handle{kind: p.kind, index: index, gen: gen}, p.arena.Get(index, gen)
}

// Get returns the record h names. A stale or foreign handle is fatal.
func (p *Pool[T]) Get(h Handle) *T {
	p.check(h)
	v := p.arena.Get(h.index, h.gen)
	if v == nil {
		fault.Raisef(ErrStaleHandle, "%s", h)
	}
	return v
}

// Release returns the record h names to the pool. A stale or foreign handle
// is fatal.
func (p *Pool[T]) Release(h Handle) {
	p.check(h)
	if !p.arena.Free(h.index, h.gen) {
		fault.Raisef(ErrStaleHandle, "release %s", h)
	}
}

func (p *Pool[T]) check(h Handle) {
	if h.kind != p.kind {
		fault.Raisef(ErrKindMismatch, "%s passed to %s pool", h, p.kind)
	}
}

// Cap returns the fixed capacity.
func (p *Pool[T]) Cap() int { return p.arena.Cap() }

// Live returns the number of acquired records.
func (p *Pool[T]) Live() int { return p.arena.Len() }

// HighWater returns the largest number of simultaneously acquired records.
func (p *Pool[T]) HighWater() int { return p.arena.HighWater() }

func (p *Pool[T]) acquire() Handle {
	h, _ := p.Acquire()
	return h
}

func (p *Pool[T]) stats() PoolStats {
	return PoolStats{Kind: p.kind, Cap: p.Cap(), Live: p.Live(), HighWater: p.HighWater()}
}

// kindPool is the type-erased view of a Pool used for kind-indexed access.
type kindPool interface {
	acquire() Handle
	Release(Handle)
	stats() PoolStats
}

// PoolStats describes the occupancy of one kind's pool.
type PoolStats struct {
	Kind      Kind
	Cap       int
	Live      int
	HighWater int
}

// Pools owns one Pool per record kind. It is the recording goroutine's
// private allocator: a Pools must not be shared between goroutines.
type Pools struct {
	BeginRenderPass    *Pool[BeginRenderPassCommand]
	EndRenderPass      *Pool[EndRenderPassCommand]
	BindPipeline       *Pool[BindPipelineCommand]
	BindResources      *Pool[BindResourcesCommand]
	BindVertexBuffer   *Pool[BindVertexBufferCommand]
	BindIndexBuffer    *Pool[BindIndexBufferCommand]
	BindIndirectBuffer *Pool[BindIndirectBufferCommand]
	PushConstants      *Pool[PushConstantsCommand]
	SetViewport        *Pool[SetViewportCommand]
	SetScissor         *Pool[SetScissorCommand]
	Draw               *Pool[DrawCommand]
	DispatchCompute    *Pool[DispatchComputeCommand]
	MemoryBarrier      *Pool[MemoryBarrierCommand]
	CopyTexture        *Pool[CopyTextureCommand]
	ClearTexture       *Pool[ClearTextureCommand]
	BeginDebugScope    *Pool[BeginDebugScopeCommand]
	EndDebugScope      *Pool[EndDebugScopeCommand]
	AddDebugMessage    *Pool[AddDebugMessageCommand]

	byKind [NumKinds]kindPool
}

// NewPools allocates every pool sized from cfg. All record storage is
// allocated here; acquiring and releasing records afterwards never allocates.
func NewPools(cfg gfxcmd.Config) *Pools {
	return newPools(func(k Kind, size uintptr) int {
		return Capacity(size, multiplier(cfg, k))
	})
}

// NewMergePools allocates pools that hold the records of that many producer
// buffers, each sized by NewPools(cfg), plus the debug scope wrapped around
// each producer's records.
func NewMergePools(cfg gfxcmd.Config, producers int) *Pools {
	producers = max(producers, 1)
	return newPools(func(k Kind, size uintptr) int {
		n := producers * Capacity(size, multiplier(cfg, k))
		if k == KindBeginDebugScope || k == KindEndDebugScope {
			n += producers
		}
		return n
	})
}

func multiplier(cfg gfxcmd.Config, k Kind) int {
	if k.HighFrequency() {
		return cfg.HighFrequencyMultiplier
	}
	return cfg.PoolMultiplier
}

func newPools(capacity capacityFunc) *Pools {
	p := &Pools{
		BeginRenderPass:    newPool[BeginRenderPassCommand](KindBeginRenderPass, capacity, nil),
		EndRenderPass:      newPool[EndRenderPassCommand](KindEndRenderPass, capacity, nil),
		BindPipeline:       newPool[BindPipelineCommand](KindBindPipeline, capacity, nil),
		BindResources:      newPool[BindResourcesCommand](KindBindResources, capacity, nil),
		BindVertexBuffer:   newPool[BindVertexBufferCommand](KindBindVertexBuffer, capacity, nil),
		BindIndexBuffer:    newPool[BindIndexBufferCommand](KindBindIndexBuffer, capacity, nil),
		BindIndirectBuffer: newPool[BindIndirectBufferCommand](KindBindIndirectBuffer, capacity, nil),
		PushConstants:      newPool[PushConstantsCommand](KindPushConstants, capacity, nil),
		SetViewport:        newPool[SetViewportCommand](KindSetViewport, capacity, nil),
		SetScissor:         newPool[SetScissorCommand](KindSetScissor, capacity, nil),
		Draw: newPool(KindDraw, capacity, func(c *DrawCommand) {
			c.Cmds = c.Cmds[:0]
		}),
		DispatchCompute: newPool[DispatchComputeCommand](KindDispatchCompute, capacity, nil),
		MemoryBarrier: newPool(KindMemoryBarrier, capacity, func(c *MemoryBarrierCommand) {
			c.Locks = c.Locks[:0]
			c.Transitions = c.Transitions[:0]
		}),
		CopyTexture:     newPool[CopyTextureCommand](KindCopyTexture, capacity, nil),
		ClearTexture:    newPool[ClearTextureCommand](KindClearTexture, capacity, nil),
		BeginDebugScope: newPool[BeginDebugScopeCommand](KindBeginDebugScope, capacity, nil),
		EndDebugScope:   newPool[EndDebugScopeCommand](KindEndDebugScope, capacity, nil),
		AddDebugMessage: newPool[AddDebugMessageCommand](KindAddDebugMessage, capacity, nil),
	}
	p.byKind = [NumKinds]kindPool{
		KindBeginRenderPass:    p.BeginRenderPass,
		KindEndRenderPass:      p.EndRenderPass,
		KindBindPipeline:       p.BindPipeline,
		KindBindResources:      p.BindResources,
		KindBindVertexBuffer:   p.BindVertexBuffer,
		KindBindIndexBuffer:    p.BindIndexBuffer,
		KindBindIndirectBuffer: p.BindIndirectBuffer,
		KindPushConstants:      p.PushConstants,
		KindSetViewport:        p.SetViewport,
		KindSetScissor:         p.SetScissor,
		KindDraw:               p.Draw,
		KindDispatchCompute:    p.DispatchCompute,
		KindMemoryBarrier:      p.MemoryBarrier,
		KindCopyTexture:        p.CopyTexture,
		KindClearTexture:       p.ClearTexture,
		KindBeginDebugScope:    p.BeginDebugScope,
		KindEndDebugScope:      p.EndDebugScope,
		KindAddDebugMessage:    p.AddDebugMessage,
	}
	return p
}

func (p *Pools) pool(k Kind) kindPool {
	if !k.Valid() {
		fault.Raisef(ErrUnknownKind, "%d", uint8(k))
	}
	return p.byKind[k]
}

// Acquire constructs a zero-valued record of kind k.
// Use the typed pool fields to reach its storage.
func (p *Pools) Acquire(k Kind) Handle {
	return p.pool(k).acquire()
}

// Release returns the record h names to its kind's pool.
func (p *Pools) Release(h Handle) {
	p.pool(h.kind).Release(h)
}

// Stats returns the occupancy of every pool, in Kind order.
func (p *Pools) Stats() []PoolStats {
	out := make([]PoolStats, NumKinds)
	for k := range p.byKind {
		out[k] = p.byKind[k].stats()
	}
	return out
}

// LogStats writes the occupancy of every non-empty pool at Debug level.
func (p *Pools) LogStats() {
	log := gfxcmd.Logger()
	for _, s := range p.Stats() {
		if s.HighWater == 0 {
			continue
		}
		log.Debug("command: pool", "kind", s.Kind, "live", s.Live, "high_water", s.HighWater, "cap", s.Cap)
	}
}
