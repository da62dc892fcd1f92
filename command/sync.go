package command

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Range is a byte range inside a buffer.
type Range struct {
	Offset uint64
	Size   uint64
}

// End returns the first byte past the range.
func (r Range) End() uint64 { return r.Offset + r.Size }

// Overlaps reports whether r and o share a byte, or touch end to start.
func (r Range) Overlaps(o Range) bool {
	return r.Offset <= o.End() && o.Offset <= r.End()
}

// Union returns the smallest range covering r and o.
func (r Range) Union(o Range) Range {
	lo, hi := min(r.Offset, o.Offset), max(r.End(), o.End())
	return Range{Offset: lo, Size: hi - lo}
}

func (r Range) String() string {
	return fmt.Sprintf("%d+%d", r.Offset, r.Size)
}

// SyncDirection names the producer and consumer of a buffer dependency.
type SyncDirection uint8

const (
	// GPUWriteToGPURead orders a shader write before a shader read.
	GPUWriteToGPURead SyncDirection = iota
	// GPUWriteToCPURead orders a GPU write before a CPU readback.
	GPUWriteToCPURead
	// CPUWriteToGPURead orders a CPU upload before a GPU read.
	CPUWriteToGPURead
	// GPUWriteToGPUWrite orders two GPU writes.
	GPUWriteToGPUWrite
	// ComputeWriteToIndirectRead orders a compute write before the buffer is
	// consumed as indirect draw arguments.
	ComputeWriteToIndirectRead
)

var syncDirectionNames = [...]string{
	GPUWriteToGPURead:          "gpu_write->gpu_read",
	GPUWriteToCPURead:          "gpu_write->cpu_read",
	CPUWriteToGPURead:          "cpu_write->gpu_read",
	GPUWriteToGPUWrite:         "gpu_write->gpu_write",
	ComputeWriteToIndirectRead: "compute_write->indirect_read",
}

// String returns the string representation of a SyncDirection.
func (d SyncDirection) String() string {
	if int(d) < len(syncDirectionNames) {
		return syncDirectionNames[d]
	}
	return fmt.Sprintf("SyncDirection(%d)", uint8(d))
}

// Usages returns the buffer usage before and after the dependency.
func (d SyncDirection) Usages() (before, after gputypes.BufferUsage) {
	switch d {
	case GPUWriteToGPURead:
		return gputypes.BufferUsageStorage, gputypes.BufferUsageStorage | gputypes.BufferUsageUniform | gputypes.BufferUsageVertex
	case GPUWriteToCPURead:
		return gputypes.BufferUsageStorage, gputypes.BufferUsageCopySrc | gputypes.BufferUsageMapRead
	case CPUWriteToGPURead:
		return gputypes.BufferUsageCopyDst | gputypes.BufferUsageMapWrite, gputypes.BufferUsageUniform | gputypes.BufferUsageVertex | gputypes.BufferUsageIndex
	case GPUWriteToGPUWrite:
		return gputypes.BufferUsageStorage, gputypes.BufferUsageStorage
	case ComputeWriteToIndirectRead:
		return gputypes.BufferUsageStorage, gputypes.BufferUsageIndirect
	default:
		return 0, 0
	}
}

// BufferLock declares that a write to Range of Buffer must complete before
// the dependent access named by Direction. Slot is the ring slot of the copy
// the lock applies to. A lock is descriptive; it is resolved into a barrier
// by the submission stage.
type BufferLock struct {
	Buffer    BufferID
	Range     Range
	Direction SyncDirection
	Slot      uint32
}

func (l BufferLock) String() string {
	return fmt.Sprintf("lock buffer=%d range=%s %s slot=%d", l.Buffer, l.Range, l.Direction, l.Slot)
}

// Layout is the access state a texture view is in.
type Layout uint8

const (
	LayoutUndefined Layout = iota
	LayoutRenderTarget
	LayoutShaderRead
	LayoutShaderWrite
	LayoutCopySource
	LayoutCopyDest
)

var layoutNames = [...]string{
	LayoutUndefined:    "undefined",
	LayoutRenderTarget: "render_target",
	LayoutShaderRead:   "shader_read",
	LayoutShaderWrite:  "shader_write",
	LayoutCopySource:   "copy_src",
	LayoutCopyDest:     "copy_dst",
}

// String returns the string representation of a Layout.
func (l Layout) String() string {
	if int(l) < len(layoutNames) {
		return layoutNames[l]
	}
	return fmt.Sprintf("Layout(%d)", uint8(l))
}

// Usage maps the layout to a WebGPU texture usage.
func (l Layout) Usage() gputypes.TextureUsage {
	switch l {
	case LayoutRenderTarget:
		return gputypes.TextureUsageRenderAttachment
	case LayoutShaderRead:
		return gputypes.TextureUsageTextureBinding
	case LayoutShaderWrite:
		return gputypes.TextureUsageStorageBinding
	case LayoutCopySource:
		return gputypes.TextureUsageCopySrc
	case LayoutCopyDest:
		return gputypes.TextureUsageCopyDst
	default:
		return 0
	}
}

// TextureTransition moves a texture view from one layout to another.
type TextureTransition struct {
	View   TextureID
	Source Layout
	Target Layout
}

func (t TextureTransition) String() string {
	return fmt.Sprintf("transition view=%d %s->%s", t.View, t.Source, t.Target)
}
