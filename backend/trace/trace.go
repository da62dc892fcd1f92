// Package trace provides a submit.Device that records every native call as
// a line of text instead of talking to a GPU.
//
// The call log is a capture surface: it shows exactly which backend entry
// point the dispatcher chose for each draw and what a resolved barrier
// contained. Importing the package registers it as "trace".
package trace

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/submit"
)

// Name is the registry name of the trace device.
const Name = "trace"

func init() {
	submit.Register(Name, func() (submit.Device, error) {
		return New(), nil
	})
}

// Errors returned by the trace device.
var (
	// ErrUnknownPipeline is returned when binding a pipeline that was not
	// declared with WithPipelines.
	ErrUnknownPipeline = errors.New("trace: unknown pipeline")

	// ErrNotEncoding is returned for calls outside Begin/End.
	ErrNotEncoding = errors.New("trace: not encoding")
)

// Option configures a Device.
type Option func(*Device)

// WithWriter also writes every call line to w as it is recorded.
func WithWriter(w io.Writer) Option {
	return func(d *Device) { d.w = w }
}

// WithPipelines restricts BindPipeline to the given pipelines. Without it
// every pipeline handle is accepted.
func WithPipelines(ids ...command.PipelineID) Option {
	return func(d *Device) {
		if d.pipelines == nil {
			d.pipelines = make(map[command.PipelineID]struct{}, len(ids))
		}
		for _, id := range ids {
			d.pipelines[id] = struct{}{}
		}
	}
}

// Device records calls. It is not safe for concurrent use.
type Device struct {
	calls     []string
	w         io.Writer
	pipelines map[command.PipelineID]struct{}

	encoding  bool
	submitted int
	depth     int
}

// New returns an empty trace device.
func New(opts ...Option) *Device {
	d := &Device{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Calls returns the recorded call lines.
func (d *Device) Calls() []string { return d.calls }

// Log returns the recorded calls joined by newlines.
func (d *Device) Log() string {
	if len(d.calls) == 0 {
		return ""
	}
	return strings.Join(d.calls, "\n") + "\n"
}

// Submitted returns how many buffers reached End.
func (d *Device) Submitted() int { return d.submitted }

// Reset drops the recorded calls.
func (d *Device) Reset() { d.calls = d.calls[:0] }

func (d *Device) record(format string, args ...any) {
	line := strings.Repeat("  ", d.depth) + fmt.Sprintf(format, args...)
	d.calls = append(d.calls, line)
	if d.w != nil {
		_, _ = io.WriteString(d.w, line+"\n")
	}
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

func (d *Device) Begin() error {
	d.encoding = true
	d.depth = 0
	d.record("Begin")
	return nil
}

func (d *Device) End() error {
	if !d.encoding {
		return ErrNotEncoding
	}
	d.encoding = false
	d.depth = 0
	d.submitted++
	d.record("End")
	return nil
}

func (d *Device) Discard() {
	d.encoding = false
	d.depth = 0
	d.record("Discard")
}

// --------------------------------------------------------------------------
// State
// --------------------------------------------------------------------------

func (d *Device) BeginRenderPass(desc command.RenderPassDesc) error {
	d.record("BeginRenderPass %q target=%d depth=%d", desc.Label, desc.Target, desc.Depth)
	d.depth++
	return nil
}

func (d *Device) EndRenderPass() error {
	if d.depth > 0 {
		d.depth--
	}
	d.record("EndRenderPass")
	return nil
}

func (d *Device) BindPipeline(p command.PipelineID, point command.PipelineBindPoint) error {
	if d.pipelines != nil {
		if _, ok := d.pipelines[p]; !ok {
			return fmt.Errorf("%w: %d", ErrUnknownPipeline, p)
		}
	}
	d.record("BindPipeline %d %s", p, point)
	return nil
}

func (d *Device) BindResources(group uint32, set command.BindingSetID, bindings []command.ResourceBinding) error {
	d.record("BindResources group=%d set=%d bindings=%d", group, set, len(bindings))
	return nil
}

func (d *Device) BindVertexBuffer(slot uint32, buf command.BufferID, offset uint64) error {
	d.record("BindVertexBuffer slot=%d buffer=%d offset=%d", slot, buf, offset)
	return nil
}

func (d *Device) BindIndexBuffer(buf command.BufferID, format command.IndexFormat, offset uint64) error {
	d.record("BindIndexBuffer buffer=%d %s offset=%d", buf, format, offset)
	return nil
}

func (d *Device) BindIndirectBuffer(buf command.BufferID) error {
	d.record("BindIndirectBuffer buffer=%d", buf)
	return nil
}

func (d *Device) PushConstants(offset uint32, data []byte) error {
	d.record("PushConstants offset=%d size=%d", offset, len(data))
	return nil
}

func (d *Device) SetViewport(v command.SetViewportCommand) {
	d.record("SetViewport %s", &v)
}

func (d *Device) SetScissor(s command.SetScissorCommand) {
	d.record("SetScissor %s", &s)
}

// --------------------------------------------------------------------------
// Work
// --------------------------------------------------------------------------

func (d *Device) DispatchCompute(x, y, z uint32) error {
	d.record("DispatchCompute %dx%dx%d", x, y, z)
	return nil
}

func (d *Device) Barrier(b submit.Barrier) error {
	for _, g := range b.Groups {
		for _, l := range g.Locks {
			d.record("Barrier slot=%d buffer=%d range=%s %s", g.Slot, l.Buffer, l.Range, l.Direction)
		}
	}
	for _, t := range b.Transitions {
		d.record("Barrier view=%d %s->%s", t.View, t.Source, t.Target)
	}
	return nil
}

func (d *Device) CopyTexture(c command.CopyTextureCommand) error {
	d.record("CopyTexture %s", &c)
	return nil
}

func (d *Device) ClearTexture(c command.ClearTextureCommand) error {
	d.record("ClearTexture %s", &c)
	return nil
}

// --------------------------------------------------------------------------
// Debug
// --------------------------------------------------------------------------

func (d *Device) BeginDebugScope(name string) {
	d.record("BeginDebugScope %q", name)
	d.depth++
}

func (d *Device) EndDebugScope() {
	if d.depth > 0 {
		d.depth--
	}
	d.record("EndDebugScope")
}

func (d *Device) DebugMessage(msg string) {
	d.record("DebugMessage %q", msg)
}

// --------------------------------------------------------------------------
// Draws
// --------------------------------------------------------------------------

func (d *Device) DrawArrays(first, count uint32) {
	d.record("DrawArrays first=%d count=%d", first, count)
}

func (d *Device) DrawArraysInstanced(first, count, instances uint32) {
	d.record("DrawArraysInstanced first=%d count=%d instances=%d", first, count, instances)
}

func (d *Device) DrawArraysInstancedBaseInstance(first, count, instances, baseInstance uint32) {
	d.record("DrawArraysInstancedBaseInstance first=%d count=%d instances=%d base_instance=%d", first, count, instances, baseInstance)
}

func (d *Device) MultiDrawArrays(firsts, counts []uint32) {
	d.record("MultiDrawArrays firsts=%v counts=%v", firsts, counts)
}

func (d *Device) DrawArraysIndirect(offset uint64) {
	d.record("DrawArraysIndirect offset=%d", offset)
}

func (d *Device) MultiDrawArraysIndirect(offset uint64, drawCount, stride uint32) {
	d.record("MultiDrawArraysIndirect offset=%d draws=%d stride=%d", offset, drawCount, stride)
}

func (d *Device) DrawElements(format command.IndexFormat, count uint32, offset uint64) {
	d.record("DrawElements %s count=%d offset=%d", format, count, offset)
}

func (d *Device) DrawElementsBaseVertex(format command.IndexFormat, count uint32, offset uint64, baseVertex int32) {
	d.record("DrawElementsBaseVertex %s count=%d offset=%d base_vertex=%d", format, count, offset, baseVertex)
}

func (d *Device) DrawElementsInstanced(format command.IndexFormat, count uint32, offset uint64, instances uint32) {
	d.record("DrawElementsInstanced %s count=%d offset=%d instances=%d", format, count, offset, instances)
}

func (d *Device) DrawElementsInstancedBaseVertex(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32) {
	d.record("DrawElementsInstancedBaseVertex %s count=%d offset=%d instances=%d base_vertex=%d", format, count, offset, instances, baseVertex)
}

func (d *Device) DrawElementsInstancedBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances, baseInstance uint32) {
	d.record("DrawElementsInstancedBaseInstance %s count=%d offset=%d instances=%d base_instance=%d", format, count, offset, instances, baseInstance)
}

func (d *Device) DrawElementsInstancedBaseVertexBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32, baseInstance uint32) {
	d.record("DrawElementsInstancedBaseVertexBaseInstance %s count=%d offset=%d instances=%d base_vertex=%d base_instance=%d",
		format, count, offset, instances, baseVertex, baseInstance)
}

func (d *Device) MultiDrawElements(format command.IndexFormat, counts []uint32, offsets []uint64) {
	d.record("MultiDrawElements %s counts=%v offsets=%v", format, counts, offsets)
}

func (d *Device) MultiDrawElementsBaseVertex(format command.IndexFormat, counts []uint32, offsets []uint64, baseVertices []int32) {
	d.record("MultiDrawElementsBaseVertex %s counts=%v offsets=%v base_vertices=%v", format, counts, offsets, baseVertices)
}

func (d *Device) DrawElementsIndirect(format command.IndexFormat, offset uint64) {
	d.record("DrawElementsIndirect %s offset=%d", format, offset)
}

func (d *Device) MultiDrawElementsIndirect(format command.IndexFormat, offset uint64, drawCount, stride uint32) {
	d.record("MultiDrawElementsIndirect %s offset=%d draws=%d stride=%d", format, offset, drawCount, stride)
}

var _ submit.Device = (*Device)(nil)
