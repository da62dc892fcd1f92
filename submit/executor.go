package submit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/cmdbuf"
	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/dispatch"
)

// ErrNilDevice is returned when an Executor has no device.
var ErrNilDevice = errors.New("submit: nil device")

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithScratchCapacity sets the initial multi-draw scratch capacity.
func WithScratchCapacity(n int) ExecutorOption {
	return func(e *Executor) {
		e.scratch = dispatch.NewScratch(n)
	}
}

// Executor walks sealed command buffers and performs them on a Device.
// It is the single consumer of a buffer; it is not safe for concurrent use.
type Executor struct {
	dev     Device
	scratch *dispatch.Scratch
	state   dispatch.State

	executed int
	draws    int
}

// NewExecutor returns an executor issuing calls on dev.
func NewExecutor(dev Device, opts ...ExecutorOption) *Executor {
	e := &Executor{dev: dev}
	for _, opt := range opts {
		opt(e)
	}
	if e.scratch == nil {
		e.scratch = dispatch.NewScratch(gfxcmd.DefaultScratchCapacity)
	}
	return e
}

// Device returns the device the executor issues calls on.
func (e *Executor) Device() Device { return e.dev }

// Scratch returns the multi-draw scratch context.
func (e *Executor) Scratch() *dispatch.Scratch { return e.scratch }

// Stats returns the number of records and of generic draws executed since
// the executor was created.
func (e *Executor) Stats() (records, draws int) { return e.executed, e.draws }

// Execute seals buf and performs every record in order between Begin and
// End on the device. The bound state starts empty for every buffer.
//
// A device error aborts execution: the encoded work is discarded and the
// error is returned wrapped with the failing record's position and kind.
// Contract violations in the buffer (a no-op or multi-draw instanced draw)
// are fatal. Execute does not clear buf.
func (e *Executor) Execute(buf *cmdbuf.Buffer) error {
	if e.dev == nil {
		return ErrNilDevice
	}
	if !buf.Sealed() {
		buf.Seal()
	}
	if err := e.dev.Begin(); err != nil {
		return fmt.Errorf("submit: begin: %w", err)
	}

	e.state = dispatch.State{}
	log := gfxcmd.Logger()
	debug := log.Enabled(context.Background(), slog.LevelDebug)

	for i := range buf.Len() {
		h := buf.Handle(i)
		if debug {
			log.Debug("submit: record", "index", i, "kind", h.Kind(), "detail", buf.Describe(h))
		}
		if err := e.execute(buf.Pools(), h); err != nil {
			e.dev.Discard()
			return fmt.Errorf("submit: record %d (%s): %w", i, h.Kind(), err)
		}
		e.executed++
	}

	if err := e.dev.End(); err != nil {
		return fmt.Errorf("submit: end: %w", err)
	}
	return nil
}

func (e *Executor) execute(p *command.Pools, h command.Handle) error {
	d := e.dev
	switch h.Kind() {
	case command.KindBeginRenderPass:
		return d.BeginRenderPass(p.BeginRenderPass.Get(h).Desc)
	case command.KindEndRenderPass:
		return d.EndRenderPass()
	case command.KindBindPipeline:
		c := p.BindPipeline.Get(h)
		return d.BindPipeline(c.Pipeline, c.Point)
	case command.KindBindResources:
		c := p.BindResources.Get(h)
		return d.BindResources(c.Group, c.Set, c.Entries())
	case command.KindBindVertexBuffer:
		c := p.BindVertexBuffer.Get(h)
		return d.BindVertexBuffer(c.Slot, c.Buffer, c.Offset)
	case command.KindBindIndexBuffer:
		c := p.BindIndexBuffer.Get(h)
		e.state.Index = c.Format
		if c.Format == command.IndexNone {
			return nil
		}
		return d.BindIndexBuffer(c.Buffer, c.Format, c.Offset)
	case command.KindBindIndirectBuffer:
		c := p.BindIndirectBuffer.Get(h)
		e.state.IndirectBase = c.BaseOffset
		return d.BindIndirectBuffer(c.Buffer)
	case command.KindPushConstants:
		c := p.PushConstants.Get(h)
		return d.PushConstants(c.Offset, c.Bytes())
	case command.KindSetViewport:
		d.SetViewport(*p.SetViewport.Get(h))
	case command.KindSetScissor:
		d.SetScissor(*p.SetScissor.Get(h))
	case command.KindDraw:
		c := p.Draw.Get(h)
		for i := range c.Cmds {
			dispatch.Dispatch(d, e.scratch, &c.Cmds[i], e.state)
		}
		e.draws += len(c.Cmds)
	case command.KindDispatchCompute:
		c := p.DispatchCompute.Get(h)
		return d.DispatchCompute(c.X, c.Y, c.Z)
	case command.KindMemoryBarrier:
		c := p.MemoryBarrier.Get(h)
		b := ResolveBarrier(c.Locks, c.Transitions)
		if b.Empty() {
			return nil
		}
		return d.Barrier(b)
	case command.KindCopyTexture:
		return d.CopyTexture(*p.CopyTexture.Get(h))
	case command.KindClearTexture:
		return d.ClearTexture(*p.ClearTexture.Get(h))
	case command.KindBeginDebugScope:
		d.BeginDebugScope(p.BeginDebugScope.Get(h).Name)
	case command.KindEndDebugScope:
		d.EndDebugScope()
	case command.KindAddDebugMessage:
		d.DebugMessage(p.AddDebugMessage.Get(h).Message)
	default:
		return fmt.Errorf("%w: %d", command.ErrUnknownKind, uint8(h.Kind()))
	}
	return nil
}
