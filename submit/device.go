// Package submit executes finalized command buffers on a Device.
//
// The Executor walks a sealed buffer in order on a single goroutine. State
// records update the executor's view of the bound index buffer and indirect
// buffer; each Draw record is handed to the dispatch package with that
// state; each MemoryBarrier record is resolved into a Barrier before the
// records that follow it.
//
// Devices register themselves by name, following the database/sql driver
// pattern:
//
//	import _ "github.com/gogpu/gfxcmd/backend/trace"
//
//	dev, err := submit.NewDevice("trace")
package submit

import (
	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/dispatch"
)

// Device is a backend that performs the native call for every record kind.
// The draw entry points come from dispatch.Backend.
//
// Methods that name caller-owned objects return an error when the object is
// unknown to the device; the executor stops at the first such error.
// A Device is used by one goroutine at a time.
type Device interface {
	dispatch.Backend

	// Begin starts encoding one buffer.
	Begin() error
	// End finishes encoding and submits the work.
	End() error
	// Discard drops everything encoded since Begin.
	Discard()

	BeginRenderPass(desc command.RenderPassDesc) error
	EndRenderPass() error
	BindPipeline(p command.PipelineID, point command.PipelineBindPoint) error
	BindResources(group uint32, set command.BindingSetID, bindings []command.ResourceBinding) error
	BindVertexBuffer(slot uint32, buf command.BufferID, offset uint64) error
	BindIndexBuffer(buf command.BufferID, format command.IndexFormat, offset uint64) error
	BindIndirectBuffer(buf command.BufferID) error
	PushConstants(offset uint32, data []byte) error
	SetViewport(v command.SetViewportCommand)
	SetScissor(s command.SetScissorCommand)
	DispatchCompute(x, y, z uint32) error
	Barrier(b Barrier) error
	CopyTexture(c command.CopyTextureCommand) error
	ClearTexture(c command.ClearTextureCommand) error

	BeginDebugScope(name string)
	EndDebugScope()
	DebugMessage(msg string)
}
