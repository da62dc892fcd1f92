package command

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Size limits of fixed-layout records.
const (
	// MaxBindings is the number of bindings a BindResources record can carry.
	MaxBindings = 8

	// MaxPushConstantBytes is the size of the push-constant block.
	MaxPushConstantBytes = 128
)

// --------------------------------------------------------------------------
// Render Pass Commands
// --------------------------------------------------------------------------

// RenderPassDesc describes the attachments of a render pass.
type RenderPassDesc struct {
	// Label is a debug label.
	Label string
	// Target is the color attachment view.
	Target TextureID
	// Depth is the depth/stencil attachment view, or InvalidID.
	Depth TextureID
	// LoadOp is the color load operation.
	LoadOp gputypes.LoadOp
	// StoreOp is the color store operation.
	StoreOp gputypes.StoreOp
	// ClearColor is used when LoadOp is clear.
	ClearColor gputypes.Color
}

// BeginRenderPassCommand opens a render pass.
type BeginRenderPassCommand struct {
	Desc RenderPassDesc
}

func (c *BeginRenderPassCommand) String() string {
	return fmt.Sprintf("label=%q target=%d depth=%d load=%d store=%d clear=(%g,%g,%g,%g)",
		c.Desc.Label, c.Desc.Target, c.Desc.Depth, c.Desc.LoadOp, c.Desc.StoreOp,
		c.Desc.ClearColor.R, c.Desc.ClearColor.G, c.Desc.ClearColor.B, c.Desc.ClearColor.A)
}

// EndRenderPassCommand closes the current render pass.
type EndRenderPassCommand struct{}

func (c *EndRenderPassCommand) String() string { return "" }

// --------------------------------------------------------------------------
// Binding Commands
// --------------------------------------------------------------------------

// PipelineBindPoint selects the pipeline slot a BindPipeline record targets.
type PipelineBindPoint uint8

const (
	// PipelineGraphics binds a render pipeline.
	PipelineGraphics PipelineBindPoint = iota
	// PipelineCompute binds a compute pipeline.
	PipelineCompute
)

// String returns the string representation of a PipelineBindPoint.
func (p PipelineBindPoint) String() string {
	if p == PipelineCompute {
		return "compute"
	}
	return "graphics"
}

// BindPipelineCommand binds a pipeline for subsequent draws or dispatches.
type BindPipelineCommand struct {
	Pipeline PipelineID
	Point    PipelineBindPoint
}

func (c *BindPipelineCommand) String() string {
	return fmt.Sprintf("pipeline=%d point=%s", c.Pipeline, c.Point)
}

// BindingKind distinguishes buffer and texture bindings.
type BindingKind uint8

const (
	// BindingBuffer binds a buffer range.
	BindingBuffer BindingKind = iota
	// BindingTexture binds a texture sub-range.
	BindingTexture
)

// SubRange is a [Base, Base+Count) range of mips or array layers.
type SubRange struct {
	Base  uint32
	Count uint32
}

// ResourceBinding is one entry of a BindResources record.
type ResourceBinding struct {
	// Slot is the binding index inside the group.
	Slot uint32
	// Kind selects which of the fields below are meaningful.
	Kind BindingKind

	// Buffer and Range describe a buffer binding.
	Buffer BufferID
	Range  Range

	// Texture, Name, Mips and Layers describe a texture binding.
	Texture TextureID
	Name    string
	Mips    SubRange
	Layers  SubRange
}

// BufferBinding returns a buffer binding.
func BufferBinding(slot uint32, buf BufferID, offset, size uint64) ResourceBinding {
	return ResourceBinding{Slot: slot, Kind: BindingBuffer, Buffer: buf, Range: Range{Offset: offset, Size: size}}
}

// TextureBinding returns a texture binding.
func TextureBinding(slot uint32, tex TextureID, name string, mips, layers SubRange) ResourceBinding {
	return ResourceBinding{Slot: slot, Kind: BindingTexture, Texture: tex, Name: name, Mips: mips, Layers: layers}
}

// BindResourcesCommand binds a resource set to a group index.
// Set names the caller-built native object; Bindings describe its contents
// for diagnostics and barrier tracking.
type BindResourcesCommand struct {
	Group    uint32
	Set      BindingSetID
	Bindings [MaxBindings]ResourceBinding
	Count    uint8
}

// Entries returns the used bindings.
func (c *BindResourcesCommand) Entries() []ResourceBinding {
	return c.Bindings[:c.Count]
}

func (c *BindResourcesCommand) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "group=%d set=%d", c.Group, c.Set)
	for _, e := range c.Entries() {
		switch e.Kind {
		case BindingBuffer:
			fmt.Fprintf(&b, " [%d buffer guid=%d range=%s]", e.Slot, e.Buffer, e.Range)
		case BindingTexture:
			fmt.Fprintf(&b, " [%d texture guid=%d name=%q mips=%d+%d layers=%d+%d]",
				e.Slot, e.Texture, e.Name, e.Mips.Base, e.Mips.Count, e.Layers.Base, e.Layers.Count)
		}
	}
	return b.String()
}

// BindVertexBufferCommand binds a vertex buffer to a slot.
type BindVertexBufferCommand struct {
	Slot   uint32
	Buffer BufferID
	Offset uint64
}

func (c *BindVertexBufferCommand) String() string {
	return fmt.Sprintf("slot=%d buffer=%d offset=%d", c.Slot, c.Buffer, c.Offset)
}

// BindIndexBufferCommand binds the index buffer. Its format is the index
// format of every following draw until the next BindIndexBuffer; IndexNone
// unbinds it and makes following draws non-indexed.
type BindIndexBufferCommand struct {
	Buffer BufferID
	Format IndexFormat
	Offset uint64
}

func (c *BindIndexBufferCommand) String() string {
	return fmt.Sprintf("buffer=%d format=%s offset=%d", c.Buffer, c.Format, c.Offset)
}

// BindIndirectBufferCommand binds the buffer indirect draws read their
// arguments from. BaseOffset is added to every indirect argument offset.
type BindIndirectBufferCommand struct {
	Buffer     BufferID
	BaseOffset uint64
}

func (c *BindIndirectBufferCommand) String() string {
	return fmt.Sprintf("buffer=%d base=%d", c.Buffer, c.BaseOffset)
}

// PushConstantsCommand uploads a small block of constants.
type PushConstantsCommand struct {
	Offset uint32
	Size   uint32
	Data   [MaxPushConstantBytes]byte
}

// Bytes returns the used part of Data.
func (c *PushConstantsCommand) Bytes() []byte {
	return c.Data[:c.Size]
}

func (c *PushConstantsCommand) String() string {
	return fmt.Sprintf("offset=%d size=%d data=%x", c.Offset, c.Size, c.Bytes())
}

// SetViewportCommand sets the viewport transformation.
type SetViewportCommand struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

func (c *SetViewportCommand) String() string {
	return fmt.Sprintf("rect=(%g,%g %gx%g) depth=[%g,%g]", c.X, c.Y, c.Width, c.Height, c.MinDepth, c.MaxDepth)
}

// SetScissorCommand sets the scissor rectangle.
type SetScissorCommand struct {
	X, Y, Width, Height uint32
}

func (c *SetScissorCommand) String() string {
	return fmt.Sprintf("rect=(%d,%d %dx%d)", c.X, c.Y, c.Width, c.Height)
}

// --------------------------------------------------------------------------
// Work Commands
// --------------------------------------------------------------------------

// DrawCommand carries one or more generic draws sharing the bound state.
// Cmds keeps its capacity when the record is recycled by its pool.
type DrawCommand struct {
	Cmds []GenericDrawCommand
}

func (c *DrawCommand) String() string {
	var b strings.Builder
	var totalIndices, totalVertices, totalInstances uint64
	for i := range c.Cmds {
		d := &c.Cmds[i]
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[%d %s]", i, d)
		totalIndices += uint64(d.IndexCount) * uint64(d.DrawCount)
		totalVertices += uint64(d.VertexCount) * uint64(d.DrawCount)
		totalInstances += uint64(d.InstanceCount) * uint64(d.DrawCount)
	}
	fmt.Fprintf(&b, " total(indices=%d vertices=%d instances=%d)", totalIndices, totalVertices, totalInstances)
	return b.String()
}

// DispatchComputeCommand dispatches compute workgroups with the bound
// compute pipeline.
type DispatchComputeCommand struct {
	X, Y, Z uint32
}

func (c *DispatchComputeCommand) String() string {
	return fmt.Sprintf("groups=%dx%dx%d", c.X, c.Y, c.Z)
}

// MemoryBarrierCommand resolves a batch of buffer locks and texture layout
// transitions before the commands that follow it.
// Both slices keep their capacity when the record is recycled.
type MemoryBarrierCommand struct {
	Locks       []BufferLock
	Transitions []TextureTransition
}

func (c *MemoryBarrierCommand) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "locks=%d transitions=%d", len(c.Locks), len(c.Transitions))
	for _, l := range c.Locks {
		fmt.Fprintf(&b, " [%s]", l)
	}
	for _, t := range c.Transitions {
		fmt.Fprintf(&b, " [%s]", t)
	}
	return b.String()
}

// CopyTextureCommand copies a mip level region between two textures.
type CopyTextureCommand struct {
	Source, Destination       TextureID
	SourceMip, DestinationMip uint32
	Width, Height, Depth      uint32
}

func (c *CopyTextureCommand) String() string {
	return fmt.Sprintf("src=%d mip=%d dst=%d mip=%d size=%dx%dx%d",
		c.Source, c.SourceMip, c.Destination, c.DestinationMip, c.Width, c.Height, c.Depth)
}

// ClearTextureCommand clears a texture sub-range to a color.
type ClearTextureCommand struct {
	Texture TextureID
	Color   gputypes.Color
	Mips    SubRange
	Layers  SubRange
}

func (c *ClearTextureCommand) String() string {
	return fmt.Sprintf("texture=%d color=(%g,%g,%g,%g) mips=%d+%d layers=%d+%d",
		c.Texture, c.Color.R, c.Color.G, c.Color.B, c.Color.A,
		c.Mips.Base, c.Mips.Count, c.Layers.Base, c.Layers.Count)
}

// --------------------------------------------------------------------------
// Debug Commands
// --------------------------------------------------------------------------

// BeginDebugScopeCommand opens a named debug region.
type BeginDebugScopeCommand struct {
	Name string
	ID   uint32
}

func (c *BeginDebugScopeCommand) String() string {
	return fmt.Sprintf("name=%q id=%d", c.Name, c.ID)
}

// EndDebugScopeCommand closes the current debug region.
type EndDebugScopeCommand struct{}

func (c *EndDebugScopeCommand) String() string { return "" }

// AddDebugMessageCommand inserts a debug marker.
type AddDebugMessageCommand struct {
	Message string
	ID      uint32
}

func (c *AddDebugMessageCommand) String() string {
	return fmt.Sprintf("message=%q id=%d", c.Message, c.ID)
}
