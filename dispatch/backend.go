package dispatch

import "github.com/gogpu/gfxcmd/command"

// Backend receives the concrete draw calls the dispatcher selects.
//
// Offsets passed to the indexed entry points are byte offsets into the bound
// index buffer. Indirect offsets are byte offsets into the bound indirect
// buffer, and stride is the distance between consecutive argument records.
// Multi-draw slices are only valid for the duration of the call.
//
// Implementations must not retain the slices and must not bind resources:
// all binding happens through earlier records.
type Backend interface {
	DrawArrays(first, count uint32)
	DrawArraysInstanced(first, count, instances uint32)
	DrawArraysInstancedBaseInstance(first, count, instances, baseInstance uint32)
	MultiDrawArrays(firsts, counts []uint32)
	DrawArraysIndirect(offset uint64)
	MultiDrawArraysIndirect(offset uint64, drawCount, stride uint32)

	DrawElements(format command.IndexFormat, count uint32, offset uint64)
	DrawElementsBaseVertex(format command.IndexFormat, count uint32, offset uint64, baseVertex int32)
	DrawElementsInstanced(format command.IndexFormat, count uint32, offset uint64, instances uint32)
	DrawElementsInstancedBaseVertex(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32)
	DrawElementsInstancedBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances, baseInstance uint32)
	DrawElementsInstancedBaseVertexBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32, baseInstance uint32)
	MultiDrawElements(format command.IndexFormat, counts []uint32, offsets []uint64)
	MultiDrawElementsBaseVertex(format command.IndexFormat, counts []uint32, offsets []uint64, baseVertices []int32)
	DrawElementsIndirect(format command.IndexFormat, offset uint64)
	MultiDrawElementsIndirect(format command.IndexFormat, offset uint64, drawCount, stride uint32)
}
