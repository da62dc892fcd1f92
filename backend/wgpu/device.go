package wgpu

import (
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/submit"
)

// Encoding errors.
var (
	ErrNotEncoding       = errors.New("wgpu: not encoding")
	ErrNoRenderPass      = errors.New("wgpu: draw outside a render pass")
	ErrInsideRenderPass  = errors.New("wgpu: operation not allowed inside a render pass")
	ErrNoPipeline        = errors.New("wgpu: no pipeline bound")
	ErrNoIndexBuffer     = errors.New("wgpu: indexed draw without an index buffer")
	ErrNoIndirectBuffer  = errors.New("wgpu: indirect draw without an indirect buffer")
	ErrGPUTimeout        = errors.New("wgpu: timed out waiting for the GPU")
	ErrPushConstantRange = errors.New("wgpu: push constant range exceeds buffer")
)

// DefaultTimeout bounds the fence wait in End.
const DefaultTimeout = 5 * time.Second

// Option configures a Device.
type Option func(*Device)

// WithTimeout sets how long End waits for the submitted work.
func WithTimeout(d time.Duration) Option {
	return func(dev *Device) { dev.timeout = d }
}

type vertexBinding struct {
	buf    hal.Buffer
	offset uint64
}

// graphicsState is the bound graphics state. It is replayed at the start of
// every render pass because hal passes do not inherit state.
type graphicsState struct {
	pipeline hal.RenderPipeline
	groups   []hal.BindGroup
	vertices []vertexBinding

	index       hal.Buffer
	indexFormat command.IndexFormat
	indexOffset uint64

	viewport *command.SetViewportCommand
	scissor  *command.SetScissorCommand
}

// Device encodes executed records into hal command buffers.
// It is not safe for concurrent use.
type Device struct {
	device  hal.Device
	queue   hal.Queue
	res     *Resources
	timeout time.Duration
	release func()

	encoder hal.CommandEncoder
	rp      hal.RenderPassEncoder

	gfx      graphicsState
	compute  hal.ComputePipeline
	cgroups  []hal.BindGroup
	indirect hal.Buffer
	push     hal.Buffer

	err       error
	submitted int
}

// New returns a device encoding on device and submitting to queue.
func New(device hal.Device, queue hal.Queue, res *Resources, opts ...Option) *Device {
	if res == nil {
		res = NewResources()
	}
	d := &Device{
		device:  device,
		queue:   queue,
		res:     res,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Resources returns the device's resource table.
func (d *Device) Resources() *Resources { return d.res }

// HAL returns the hal device and queue the device encodes on, for creating
// the objects registered in Resources.
func (d *Device) HAL() (hal.Device, hal.Queue) { return d.device, d.queue }

// Submitted returns the number of command buffers submitted.
func (d *Device) Submitted() int { return d.submitted }

// PushConstantBuffer returns the uniform buffer receiving PushConstants
// data, creating it on first use.
func (d *Device) PushConstantBuffer() (hal.Buffer, error) {
	if d.push != nil {
		return d.push, nil
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "gfxcmd_push_constants",
		Size:  command.MaxPushConstantBytes,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create push constant buffer: %w", err)
	}
	d.push = buf
	return buf, nil
}

// Close releases the objects the device created. A device opened with Open
// also releases its hal device and instance.
func (d *Device) Close() {
	if d.encoder != nil {
		d.Discard()
	}
	if d.push != nil {
		d.device.DestroyBuffer(d.push)
		d.push = nil
	}
	if d.release != nil {
		d.release()
		d.release = nil
	}
}

// fail records the first error of a call that cannot return one.
func (d *Device) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func (d *Device) Begin() error {
	enc, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "gfxcmd_encoder",
	})
	if err != nil {
		return fmt.Errorf("wgpu: create command encoder: %w", err)
	}
	if err := enc.BeginEncoding("gfxcmd_frame"); err != nil {
		return fmt.Errorf("wgpu: begin encoding: %w", err)
	}
	d.encoder = enc
	d.rp = nil
	d.err = nil
	d.gfx = graphicsState{}
	d.compute = nil
	d.cgroups = d.cgroups[:0]
	d.indirect = nil
	return nil
}

func (d *Device) End() error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		d.fail(fmt.Errorf("%w: render pass left open", ErrInsideRenderPass))
	}
	if d.err != nil {
		err := d.err
		d.Discard()
		return err
	}

	cmdBuf, err := d.encoder.EndEncoding()
	d.encoder = nil
	if err != nil {
		return fmt.Errorf("wgpu: end encoding: %w", err)
	}
	defer d.device.FreeCommandBuffer(cmdBuf)

	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu: create fence: %w", err)
	}
	defer d.device.DestroyFence(fence)

	if err := d.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, d.timeout)
	if err != nil {
		return fmt.Errorf("wgpu: wait: %w", err)
	}
	if !ok {
		return ErrGPUTimeout
	}
	d.submitted++
	return nil
}

func (d *Device) Discard() {
	if d.rp != nil {
		d.rp.End()
		d.rp = nil
	}
	if d.encoder != nil {
		d.encoder.DiscardEncoding()
		d.encoder = nil
	}
}

// --------------------------------------------------------------------------
// Render passes
// --------------------------------------------------------------------------

func (d *Device) BeginRenderPass(desc command.RenderPassDesc) error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		return fmt.Errorf("%w: nested render pass %q", ErrInsideRenderPass, desc.Label)
	}
	target, err := d.res.texture(desc.Target)
	if err != nil {
		return err
	}
	load, store := desc.LoadOp, desc.StoreOp
	if load == 0 {
		load = gputypes.LoadOpClear
	}
	if store == 0 {
		store = gputypes.StoreOpStore
	}
	rpDesc := &hal.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       target.view,
			LoadOp:     load,
			StoreOp:    store,
			ClearValue: desc.ClearColor,
		}},
	}
	if desc.Depth != command.InvalidID {
		depth, err := d.res.texture(desc.Depth)
		if err != nil {
			return err
		}
		rpDesc.DepthStencilAttachment = &hal.RenderPassDepthStencilAttachment{
			View:              depth.view,
			DepthLoadOp:       gputypes.LoadOpClear,
			DepthStoreOp:      gputypes.StoreOpDiscard,
			DepthClearValue:   1.0,
			StencilLoadOp:     gputypes.LoadOpClear,
			StencilStoreOp:    gputypes.StoreOpDiscard,
			StencilClearValue: 0,
		}
	}
	d.rp = d.encoder.BeginRenderPass(rpDesc)
	d.applyGraphics()
	return nil
}

func (d *Device) applyGraphics() {
	rp, g := d.rp, &d.gfx
	if g.pipeline != nil {
		rp.SetPipeline(g.pipeline)
	}
	for i, group := range g.groups {
		if group != nil {
			rp.SetBindGroup(uint32(i), group, nil)
		}
	}
	for i, v := range g.vertices {
		if v.buf != nil {
			rp.SetVertexBuffer(uint32(i), v.buf, v.offset)
		}
	}
	if g.index != nil {
		rp.SetIndexBuffer(g.index, gpuIndexFormat(g.indexFormat), g.indexOffset)
	}
	if v := g.viewport; v != nil {
		rp.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
	if s := g.scissor; s != nil {
		rp.SetScissorRect(s.X, s.Y, s.Width, s.Height)
	}
}

func (d *Device) EndRenderPass() error {
	if d.rp == nil {
		return ErrNoRenderPass
	}
	d.rp.End()
	d.rp = nil
	return nil
}

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

func (d *Device) BindPipeline(p command.PipelineID, point command.PipelineBindPoint) error {
	if point == command.PipelineCompute {
		cp, err := d.res.computePipeline(p)
		if err != nil {
			return err
		}
		d.compute = cp
		return nil
	}
	rp, err := d.res.renderPipeline(p)
	if err != nil {
		return err
	}
	d.gfx.pipeline = rp
	if d.rp != nil {
		d.rp.SetPipeline(rp)
	}
	return nil
}

func setSlot[T any](s []T, i uint32, v T) []T {
	if int(i) >= len(s) {
		s = append(s, make([]T, int(i)+1-len(s))...)
	}
	s[i] = v
	return s
}

// BindResources binds the bind group registered for set. Inside a render
// pass it applies to graphics; outside it applies to the next dispatch.
func (d *Device) BindResources(group uint32, set command.BindingSetID, _ []command.ResourceBinding) error {
	bg, err := d.res.bindGroup(set)
	if err != nil {
		return err
	}
	if d.rp == nil {
		d.cgroups = setSlot(d.cgroups, group, bg)
		return nil
	}
	d.gfx.groups = setSlot(d.gfx.groups, group, bg)
	d.rp.SetBindGroup(group, bg, nil)
	return nil
}

func (d *Device) BindVertexBuffer(slot uint32, buf command.BufferID, offset uint64) error {
	b, err := d.res.buffer(buf)
	if err != nil {
		return err
	}
	d.gfx.vertices = setSlot(d.gfx.vertices, slot, vertexBinding{buf: b, offset: offset})
	if d.rp != nil {
		d.rp.SetVertexBuffer(slot, b, offset)
	}
	return nil
}

func (d *Device) BindIndexBuffer(buf command.BufferID, format command.IndexFormat, offset uint64) error {
	b, err := d.res.buffer(buf)
	if err != nil {
		return err
	}
	d.gfx.index, d.gfx.indexFormat, d.gfx.indexOffset = b, format, offset
	if d.rp != nil {
		d.rp.SetIndexBuffer(b, gpuIndexFormat(format), offset)
	}
	return nil
}

func gpuIndexFormat(f command.IndexFormat) gputypes.IndexFormat {
	format, _ := f.GPUFormat()
	return format
}

func (d *Device) BindIndirectBuffer(buf command.BufferID) error {
	b, err := d.res.buffer(buf)
	if err != nil {
		return err
	}
	d.indirect = b
	return nil
}

// PushConstants writes data into the push constant uniform buffer.
// Queue writes land before the submitted commands run, so the last write of
// a frame is what every draw in that frame observes.
func (d *Device) PushConstants(offset uint32, data []byte) error {
	if int(offset)+len(data) > command.MaxPushConstantBytes {
		return fmt.Errorf("%w: %d+%d", ErrPushConstantRange, offset, len(data))
	}
	buf, err := d.PushConstantBuffer()
	if err != nil {
		return err
	}
	if err := d.queue.WriteBuffer(buf, uint64(offset), data); err != nil {
		return fmt.Errorf("wgpu: push constants: %w", err)
	}
	return nil
}

func (d *Device) SetViewport(v command.SetViewportCommand) {
	d.gfx.viewport = &v
	if d.rp != nil {
		d.rp.SetViewport(v.X, v.Y, v.Width, v.Height, v.MinDepth, v.MaxDepth)
	}
}

func (d *Device) SetScissor(s command.SetScissorCommand) {
	d.gfx.scissor = &s
	if d.rp != nil {
		d.rp.SetScissorRect(s.X, s.Y, s.Width, s.Height)
	}
}

// --------------------------------------------------------------------------
// Work
// --------------------------------------------------------------------------

func (d *Device) DispatchCompute(x, y, z uint32) error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		return fmt.Errorf("%w: dispatch", ErrInsideRenderPass)
	}
	if d.compute == nil {
		return fmt.Errorf("%w: compute", ErrNoPipeline)
	}
	pass := d.encoder.BeginComputePass(&hal.ComputePassDescriptor{
		Label: "gfxcmd_dispatch",
	})
	pass.SetPipeline(d.compute)
	for i, g := range d.cgroups {
		if g != nil {
			pass.SetBindGroup(uint32(i), g, nil)
		}
	}
	pass.Dispatch(x, y, z)
	pass.End()
	return nil
}

func (d *Device) Barrier(b submit.Barrier) error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		return fmt.Errorf("%w: barrier", ErrInsideRenderPass)
	}

	var buffers []hal.BufferBarrier
	for _, g := range b.Groups {
		for _, l := range g.Locks {
			buf, err := d.res.buffer(l.Buffer)
			if err != nil {
				return err
			}
			src, dst := l.Direction.Usages()
			buffers = append(buffers, hal.BufferBarrier{
				Buffer: buf,
				Usage:  hal.BufferUsageTransition{OldUsage: src, NewUsage: dst},
			})
		}
	}
	if len(buffers) > 0 {
		d.encoder.TransitionBuffers(buffers)
	}

	var textures []hal.TextureBarrier
	for _, t := range b.Transitions {
		tex, err := d.res.texture(t.View)
		if err != nil {
			return err
		}
		textures = append(textures, hal.TextureBarrier{
			Texture: tex.tex,
			Usage: hal.TextureUsageTransition{
				OldUsage: t.Source.Usage(),
				NewUsage: t.Target.Usage(),
			},
		})
	}
	if len(textures) > 0 {
		d.encoder.TransitionTextures(textures)
	}
	return nil
}

func (d *Device) CopyTexture(c command.CopyTextureCommand) error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		return fmt.Errorf("%w: copy", ErrInsideRenderPass)
	}
	src, err := d.res.texture(c.Source)
	if err != nil {
		return err
	}
	dst, err := d.res.texture(c.Destination)
	if err != nil {
		return err
	}
	d.encoder.CopyTextureToTexture(src.tex, dst.tex, []hal.TextureCopy{{
		SrcBase: hal.ImageCopyTexture{Texture: src.tex, MipLevel: c.SourceMip},
		DstBase: hal.ImageCopyTexture{Texture: dst.tex, MipLevel: c.DestinationMip},
		Size:    hal.Extent3D{Width: c.Width, Height: c.Height, DepthOrArrayLayers: max(c.Depth, 1)},
	}})
	return nil
}

// ClearTexture clears the registered view of the texture with an empty
// render pass. Only the sub-range covered by that view is cleared.
func (d *Device) ClearTexture(c command.ClearTextureCommand) error {
	if d.encoder == nil {
		return ErrNotEncoding
	}
	if d.rp != nil {
		return fmt.Errorf("%w: clear", ErrInsideRenderPass)
	}
	tex, err := d.res.texture(c.Texture)
	if err != nil {
		return err
	}
	pass := d.encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "gfxcmd_clear",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       tex.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: c.Color,
		}},
	})
	pass.End()
	return nil
}

// --------------------------------------------------------------------------
// Debug
// --------------------------------------------------------------------------

func (d *Device) BeginDebugScope(name string) {
	gfxcmd.Logger().Debug("wgpu: begin scope", "name", name)
}

func (d *Device) EndDebugScope() {
	gfxcmd.Logger().Debug("wgpu: end scope")
}

func (d *Device) DebugMessage(msg string) {
	gfxcmd.Logger().Debug("wgpu: message", "msg", msg)
}

var _ submit.Device = (*Device)(nil)
