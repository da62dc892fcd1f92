// Package cmdbuf provides the command buffer producers record into, and the
// ledger of buffer locks and texture transitions carried alongside it.
//
// A Buffer is an ordered sequence of record handles. Records are constructed
// in the buffer's command.Pools when appended and stay immutable until Clear
// returns them all to their pools. Begin/End pairs (render passes and debug
// scopes) are ordinary records; the buffer tracks their nesting only to
// check balance and to indent the serialized form.
//
// # Ownership
//
// A Buffer has one owner at a time. Appends are guarded by an in-use flag,
// so an append racing with another append faults instead of corrupting the
// sequence. Seal hands the buffer to submission: any later append faults
// until Clear.
package cmdbuf

import (
	"sync/atomic"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/internal/fault"
)

// Buffer is an ordered, appendable sequence of command records.
type Buffer struct {
	pools   *command.Pools
	handles []command.Handle

	// open is the stack of opener kinds not yet closed.
	open []command.Kind

	nextScopeID uint32

	inUse  atomic.Bool
	sealed atomic.Bool
}

// New creates an empty buffer constructing its records in pools.
func New(pools *command.Pools) *Buffer {
	return &Buffer{pools: pools}
}

// Pools returns the pools the buffer's records live in. Use it with Handle
// to read records: buf.Pools().Draw.Get(buf.Handle(i)).
func (b *Buffer) Pools() *command.Pools { return b.pools }

// Len returns the number of records.
func (b *Buffer) Len() int { return len(b.handles) }

// Kind returns the kind of record i.
func (b *Buffer) Kind(i int) command.Kind { return b.handles[i].Kind() }

// Handle returns the handle of record i.
func (b *Buffer) Handle(i int) command.Handle { return b.handles[i] }

// Depth returns the number of open render passes and debug scopes.
func (b *Buffer) Depth() int { return len(b.open) }

// Sealed reports whether the buffer has been handed to submission.
func (b *Buffer) Sealed() bool { return b.sealed.Load() }

// Seal marks the buffer as finalized. Appends fault until Clear.
// Sealing a buffer with open scopes is fatal.
func (b *Buffer) Seal() {
	if len(b.open) > 0 {
		fault.Raisef(ErrUnbalancedScope, "seal with %d open (innermost %s)", len(b.open), b.open[len(b.open)-1])
	}
	b.sealed.Store(true)
}

// Clear releases every record to its pool and empties the buffer.
// It is the only way records are destroyed. Clear also unseals the buffer.
func (b *Buffer) Clear() {
	b.enter(false)
	defer b.leave()

	for _, h := range b.handles {
		b.pools.Release(h)
	}
	b.handles = b.handles[:0]
	b.open = b.open[:0]
	b.nextScopeID = 0
	b.sealed.Store(false)
}

// enter claims the buffer for one mutation. A second goroutine mutating at
// the same time, or an append after Seal, is fatal.
func (b *Buffer) enter(appending bool) {
	if !b.inUse.CompareAndSwap(false, true) {
		fault.Raisef(ErrConcurrentAppend, "buffer with %d records", len(b.handles))
	}
	if appending && b.sealed.Load() {
		b.inUse.Store(false)
		fault.Raisef(ErrSealed, "buffer with %d records", len(b.handles))
	}
}

func (b *Buffer) leave() { b.inUse.Store(false) }

func (b *Buffer) push(h command.Handle) {
	switch k := h.Kind(); {
	case k.Opens():
		b.open = append(b.open, k)
	case k.Closes():
		b.close(k)
	}
	b.handles = append(b.handles, h)
}

func (b *Buffer) close(k command.Kind) {
	want := command.KindBeginRenderPass
	if k == command.KindEndDebugScope {
		want = command.KindBeginDebugScope
	}
	n := len(b.open)
	if n == 0 || b.open[n-1] != want {
		fault.Raisef(ErrUnbalancedScope, "%s without matching %s", k, want)
	}
	b.open = b.open[:n-1]
}

// --------------------------------------------------------------------------
// Render passes and scopes
// --------------------------------------------------------------------------

// BeginRenderPass opens a render pass.
func (b *Buffer) BeginRenderPass(desc command.RenderPassDesc) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BeginRenderPass.Acquire()
	c.Desc = desc
	b.push(h)
}

// EndRenderPass closes the innermost render pass. It is fatal if the
// innermost open region is not a render pass.
func (b *Buffer) EndRenderPass() {
	b.enter(true)
	defer b.leave()
	h, _ := b.pools.EndRenderPass.Acquire()
	b.push(h)
}

// BeginScope opens a named debug region. Scopes may nest.
func (b *Buffer) BeginScope(name string) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BeginDebugScope.Acquire()
	c.Name = name
	c.ID = b.nextScopeID
	b.nextScopeID++
	b.push(h)
}

// EndScope closes the innermost debug region.
func (b *Buffer) EndScope() {
	b.enter(true)
	defer b.leave()
	h, _ := b.pools.EndDebugScope.Acquire()
	b.push(h)
}

// AddDebugMessage inserts a debug marker.
func (b *Buffer) AddDebugMessage(msg string, id uint32) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.AddDebugMessage.Acquire()
	c.Message = msg
	c.ID = id
	b.push(h)
}

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

// BindPipeline binds a pipeline to the graphics or compute bind point.
func (b *Buffer) BindPipeline(p command.PipelineID, point command.PipelineBindPoint) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BindPipeline.Acquire()
	c.Pipeline = p
	c.Point = point
	b.push(h)
}

// BindResources binds a resource set to a group. At most
// command.MaxBindings bindings may be described.
func (b *Buffer) BindResources(group uint32, set command.BindingSetID, bindings ...command.ResourceBinding) {
	b.enter(true)
	defer b.leave()
	if len(bindings) > command.MaxBindings {
		fault.Raisef(ErrTooManyBindings, "%d > %d", len(bindings), command.MaxBindings)
	}
	h, c := b.pools.BindResources.Acquire()
	c.Group = group
	c.Set = set
	c.Count = uint8(copy(c.Bindings[:], bindings)) //nolint:gosec // bounded by MaxBindings
	b.push(h)
}

// BindVertexBuffer binds a vertex buffer to a slot.
func (b *Buffer) BindVertexBuffer(slot uint32, buf command.BufferID, offset uint64) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BindVertexBuffer.Acquire()
	c.Slot = slot
	c.Buffer = buf
	c.Offset = offset
	b.push(h)
}

// BindIndexBuffer binds the index buffer. Its format applies to every
// following draw; command.IndexNone makes them non-indexed.
func (b *Buffer) BindIndexBuffer(buf command.BufferID, format command.IndexFormat, offset uint64) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BindIndexBuffer.Acquire()
	c.Buffer = buf
	c.Format = format
	c.Offset = offset
	b.push(h)
}

// BindIndirectBuffer binds the indirect argument buffer and its base offset.
func (b *Buffer) BindIndirectBuffer(buf command.BufferID, baseOffset uint64) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.BindIndirectBuffer.Acquire()
	c.Buffer = buf
	c.BaseOffset = baseOffset
	b.push(h)
}

// PushConstants uploads data at offset. data must fit in
// command.MaxPushConstantBytes.
func (b *Buffer) PushConstants(offset uint32, data []byte) {
	b.enter(true)
	defer b.leave()
	if len(data) > command.MaxPushConstantBytes {
		fault.Raisef(ErrPushConstantsTooLarge, "%d > %d bytes", len(data), command.MaxPushConstantBytes)
	}
	h, c := b.pools.PushConstants.Acquire()
	c.Offset = offset
	c.Size = uint32(copy(c.Data[:], data)) //nolint:gosec // bounded by MaxPushConstantBytes
	b.push(h)
}

// SetViewport sets the viewport.
func (b *Buffer) SetViewport(x, y, width, height, minDepth, maxDepth float32) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.SetViewport.Acquire()
	*c = command.SetViewportCommand{X: x, Y: y, Width: width, Height: height, MinDepth: minDepth, MaxDepth: maxDepth}
	b.push(h)
}

// SetScissor sets the scissor rectangle.
func (b *Buffer) SetScissor(x, y, width, height uint32) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.SetScissor.Acquire()
	*c = command.SetScissorCommand{X: x, Y: y, Width: width, Height: height}
	b.push(h)
}

// --------------------------------------------------------------------------
// Work
// --------------------------------------------------------------------------

// Draw appends one Draw record carrying cmds. The commands are copied into
// the pooled record. Producers must not pass no-op commands
// (GenericDrawCommand.IsNoOp); they fault at dispatch.
func (b *Buffer) Draw(cmds ...command.GenericDrawCommand) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.Draw.Acquire()
	c.Cmds = append(c.Cmds, cmds...)
	b.push(h)
}

// DispatchCompute dispatches x*y*z workgroups.
func (b *Buffer) DispatchCompute(x, y, z uint32) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.DispatchCompute.Acquire()
	c.X, c.Y, c.Z = x, y, z
	b.push(h)
}

// MemoryBarrier appends a barrier resolving locks and transitions. Both are
// copied. Producers normally go through Ledger.Flush.
func (b *Buffer) MemoryBarrier(locks []command.BufferLock, transitions []command.TextureTransition) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.MemoryBarrier.Acquire()
	c.Locks = append(c.Locks, locks...)
	c.Transitions = append(c.Transitions, transitions...)
	b.push(h)
}

// CopyTexture copies a region between two textures.
func (b *Buffer) CopyTexture(cmd command.CopyTextureCommand) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.CopyTexture.Acquire()
	*c = cmd
	b.push(h)
}

// ClearTexture clears a sub-range of tex to color.
func (b *Buffer) ClearTexture(tex command.TextureID, color gputypes.Color, mips, layers command.SubRange) {
	b.enter(true)
	defer b.leave()
	h, c := b.pools.ClearTexture.Acquire()
	*c = command.ClearTextureCommand{Texture: tex, Color: color, Mips: mips, Layers: layers}
	b.push(h)
}

// --------------------------------------------------------------------------
// Merge
// --------------------------------------------------------------------------

// AppendBuffer copies every record of other, in order, to the end of b.
// other is left unchanged and must have no open scopes. Copied debug scopes
// are renumbered so scope ids stay unique within b.
func (b *Buffer) AppendBuffer(other *Buffer) {
	if other == b {
		fault.Raisef(ErrSelfAppend, "buffer with %d records", len(b.handles))
	}
	if other.Depth() != 0 {
		fault.Raisef(ErrUnbalancedScope, "append buffer with %d open", other.Depth())
	}
	b.enter(true)
	defer b.leave()

	src, dst := other.pools, b.pools
	for _, h := range other.handles {
		var nh command.Handle
		switch h.Kind() {
		case command.KindBeginRenderPass:
			nh = clone(dst.BeginRenderPass, src.BeginRenderPass, h)
		case command.KindEndRenderPass:
			nh = clone(dst.EndRenderPass, src.EndRenderPass, h)
		case command.KindBindPipeline:
			nh = clone(dst.BindPipeline, src.BindPipeline, h)
		case command.KindBindResources:
			nh = clone(dst.BindResources, src.BindResources, h)
		case command.KindBindVertexBuffer:
			nh = clone(dst.BindVertexBuffer, src.BindVertexBuffer, h)
		case command.KindBindIndexBuffer:
			nh = clone(dst.BindIndexBuffer, src.BindIndexBuffer, h)
		case command.KindBindIndirectBuffer:
			nh = clone(dst.BindIndirectBuffer, src.BindIndirectBuffer, h)
		case command.KindPushConstants:
			nh = clone(dst.PushConstants, src.PushConstants, h)
		case command.KindSetViewport:
			nh = clone(dst.SetViewport, src.SetViewport, h)
		case command.KindSetScissor:
			nh = clone(dst.SetScissor, src.SetScissor, h)
		case command.KindDraw:
			var c *command.DrawCommand
			nh, c = dst.Draw.Acquire()
			c.Cmds = append(c.Cmds, src.Draw.Get(h).Cmds...)
		case command.KindDispatchCompute:
			nh = clone(dst.DispatchCompute, src.DispatchCompute, h)
		case command.KindMemoryBarrier:
			var c *command.MemoryBarrierCommand
			nh, c = dst.MemoryBarrier.Acquire()
			s := src.MemoryBarrier.Get(h)
			c.Locks = append(c.Locks, s.Locks...)
			c.Transitions = append(c.Transitions, s.Transitions...)
		case command.KindCopyTexture:
			nh = clone(dst.CopyTexture, src.CopyTexture, h)
		case command.KindClearTexture:
			nh = clone(dst.ClearTexture, src.ClearTexture, h)
		case command.KindBeginDebugScope:
			var c *command.BeginDebugScopeCommand
			nh, c = dst.BeginDebugScope.Acquire()
			*c = *src.BeginDebugScope.Get(h)
			c.ID = b.nextScopeID
			b.nextScopeID++
		case command.KindEndDebugScope:
			nh = clone(dst.EndDebugScope, src.EndDebugScope, h)
		case command.KindAddDebugMessage:
			nh = clone(dst.AddDebugMessage, src.AddDebugMessage, h)
		default:
			fault.Raisef(command.ErrUnknownKind, "%d", uint8(h.Kind()))
		}
		b.push(nh)
	}
}

// clone copies a fixed-layout record between pools.
func clone[T any](dst, src *command.Pool[T], h command.Handle) command.Handle {
	nh, c := dst.Acquire()
	*c = *src.Get(h)
	return nh
}
