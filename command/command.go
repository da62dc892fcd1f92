// Package command defines the closed set of GPU command records and the
// per-kind pools they are constructed in.
//
// Every record kind is a fixed-layout struct carrying only the fields its
// kind needs. A Kind tag identifies the concrete type at runtime; consumers
// switch on it instead of calling through an interface.
//
// Records are never allocated individually. A Pools value owns one
// fixed-capacity arena per kind and hands out Handles (kind, index,
// generation). The command buffer stores handles, owns the records they name
// and releases them all at once when it is cleared.
//
// # Thread Safety
//
// Pools is NOT safe for concurrent use. Each recording goroutine owns its own
// Pools, so appends never contend.
package command

// Kind identifies the concrete type of a record.
type Kind uint8

const (
	// Render pass and state commands
	KindBeginRenderPass    Kind = iota // Begin a render pass
	KindEndRenderPass                  // End the current render pass
	KindBindPipeline                   // Bind a graphics or compute pipeline
	KindBindResources                  // Bind a set of buffers/textures to a group
	KindBindVertexBuffer               // Bind a vertex buffer to a slot
	KindBindIndexBuffer                // Bind the index buffer and its format
	KindBindIndirectBuffer             // Bind the indirect argument buffer
	KindPushConstants                  // Upload a small block of constants
	KindSetViewport                    // Set the viewport
	KindSetScissor                     // Set the scissor rectangle

	// Work commands
	KindDraw            // One or more generic draw commands
	KindDispatchCompute // Dispatch compute workgroups
	KindMemoryBarrier   // Resolve pending buffer locks and layout transitions
	KindCopyTexture     // Copy between textures
	KindClearTexture    // Clear a texture sub-range

	// Debug commands
	KindBeginDebugScope // Open a named debug region
	KindEndDebugScope   // Close the current debug region
	KindAddDebugMessage // Insert a debug marker

	kindCount
)

// NumKinds is the number of record kinds.
const NumKinds = int(kindCount)

// kindNames maps Kind values to their string representation.
var kindNames = [...]string{
	KindBeginRenderPass:    "BeginRenderPass",
	KindEndRenderPass:      "EndRenderPass",
	KindBindPipeline:       "BindPipeline",
	KindBindResources:      "BindResources",
	KindBindVertexBuffer:   "BindVertexBuffer",
	KindBindIndexBuffer:    "BindIndexBuffer",
	KindBindIndirectBuffer: "BindIndirectBuffer",
	KindPushConstants:      "PushConstants",
	KindSetViewport:        "SetViewport",
	KindSetScissor:         "SetScissor",
	KindDraw:               "Draw",
	KindDispatchCompute:    "DispatchCompute",
	KindMemoryBarrier:      "MemoryBarrier",
	KindCopyTexture:        "CopyTexture",
	KindClearTexture:       "ClearTexture",
	KindBeginDebugScope:    "BeginDebugScope",
	KindEndDebugScope:      "EndDebugScope",
	KindAddDebugMessage:    "AddDebugMessage",
}

// String returns the string representation of a Kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Valid reports whether k is one of the defined kinds.
func (k Kind) Valid() bool {
	return k < kindCount
}

// HighFrequency reports whether records of this kind are typically issued
// many times per frame. Their pools get a larger size class.
func (k Kind) HighFrequency() bool {
	return k == KindBindResources || k == KindDraw
}

// Opens reports whether the kind opens a nested region, and Closes whether it
// closes one. Nesting is only tracked for indentation and balance.
func (k Kind) Opens() bool {
	return k == KindBeginRenderPass || k == KindBeginDebugScope
}

// Closes reports whether the kind closes a region opened by Opens.
func (k Kind) Closes() bool {
	return k == KindEndRenderPass || k == KindEndDebugScope
}

// --------------------------------------------------------------------------
// Opaque handles
// --------------------------------------------------------------------------

// These IDs name GPU objects owned by the caller. The core never inspects
// them; backends map them to native objects.

// BufferID is an opaque handle to a GPU buffer.
type BufferID uint64

// TextureID is an opaque handle to a texture or texture view.
type TextureID uint64

// PipelineID is an opaque handle to a compiled pipeline.
type PipelineID uint64

// BindingSetID is an opaque handle to a caller-built resource set (bind group).
type BindingSetID uint64

// InvalidID is the zero value, representing no object.
const InvalidID = 0
