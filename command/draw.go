package command

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gputypes"
)

// DrawOptions is a bitmask of per-draw options.
type DrawOptions uint8

const (
	// DrawIndirect reads the draw parameters from the bound indirect buffer
	// at record CommandOffset instead of from the CPU-side fields.
	DrawIndirect DrawOptions = 1 << iota
)

// Has reports whether all bits of o are set.
func (d DrawOptions) Has(o DrawOptions) bool { return d&o == o }

// GenericDrawCommand holds the low-level parameters of one (possibly
// batched) draw.
//
// DrawCount > 1 batches DrawCount identical sub-draws into one multi-draw
// call; shaders tell them apart by draw ID. Multi-draw and instancing share
// the base-instance slot that carries the draw ID, so DrawCount > 1 together
// with InstanceCount > 1 is a contract violation. A command with DrawCount or
// InstanceCount of zero is a no-op and must be skipped by producers.
type GenericDrawCommand struct {
	// IndexCount is the number of indices per sub-draw (indexed draws).
	IndexCount uint32
	// VertexCount is the number of vertices per sub-draw (non-indexed draws).
	VertexCount uint32
	// FirstIndex is the first index read from the index buffer.
	FirstIndex uint32
	// BaseVertex is added to each index for indexed draws and is the first
	// vertex for non-indexed draws.
	BaseVertex uint32
	// BaseInstance is the first instance index.
	BaseInstance uint32
	// InstanceCount is the number of instances.
	InstanceCount uint32
	// DrawCount is the number of sub-draws batched together.
	DrawCount uint32
	// CommandOffset indexes the indirect argument buffer. Only meaningful
	// when Options has DrawIndirect.
	CommandOffset uint32
	// Source is the vertex/index buffer set the draw reads from.
	Source BufferID
	// Options holds per-draw flags.
	Options DrawOptions
}

// IsNoOp reports whether the draw would render nothing.
func (g *GenericDrawCommand) IsNoOp() bool {
	return g.DrawCount == 0 || g.InstanceCount == 0
}

// Indirect reports whether the draw reads its arguments from the GPU.
func (g *GenericDrawCommand) Indirect() bool {
	return g.Options.Has(DrawIndirect)
}

func (g *GenericDrawCommand) String() string {
	return fmt.Sprintf("draws=%d instances=%d indices=%d vertices=%d first=%d base_vertex=%d base_instance=%d source=%d indirect=%t offset=%d",
		g.DrawCount, g.InstanceCount, g.IndexCount, g.VertexCount, g.FirstIndex,
		g.BaseVertex, g.BaseInstance, g.Source, g.Indirect(), g.CommandOffset)
}

// IndirectArgs is the layout of one record in an indirect argument buffer.
// Non-indexed indirect draws read the first four fields as
// (vertexCount, instanceCount, firstVertex, baseInstance); the stride is the
// same for both.
type IndirectArgs struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	BaseInstance  uint32
}

// IndirectArgsSize is the byte stride of IndirectArgs records.
const IndirectArgsSize = uint64(unsafe.Sizeof(IndirectArgs{}))

// IndexFormat is the element format of the bound index buffer.
type IndexFormat uint8

const (
	// IndexNone means no index buffer is bound; draws are non-indexed.
	IndexNone IndexFormat = iota
	// IndexUint16 uses 16-bit unsigned indices.
	IndexUint16
	// IndexUint32 uses 32-bit unsigned indices.
	IndexUint32
)

// String returns the string representation of an IndexFormat.
func (f IndexFormat) String() string {
	switch f {
	case IndexNone:
		return "none"
	case IndexUint16:
		return "u16"
	case IndexUint32:
		return "u32"
	default:
		return fmt.Sprintf("IndexFormat(%d)", uint8(f))
	}
}

// Size returns the byte size of one index, or 0 for IndexNone.
func (f IndexFormat) Size() uint64 {
	switch f {
	case IndexUint16:
		return 2
	case IndexUint32:
		return 4
	default:
		return 0
	}
}

// GPUFormat converts to the WebGPU index format. ok is false for IndexNone.
func (f IndexFormat) GPUFormat() (format gputypes.IndexFormat, ok bool) {
	switch f {
	case IndexUint16:
		return gputypes.IndexFormatUint16, true
	case IndexUint32:
		return gputypes.IndexFormatUint32, true
	default:
		return format, false
	}
}
