package wgpu

import (
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcmd/command"
)

// pass returns the open render pass or records ErrNoRenderPass.
func (d *Device) pass() hal.RenderPassEncoder {
	if d.rp == nil {
		d.fail(ErrNoRenderPass)
	}
	return d.rp
}

// indexed returns the open render pass for an indexed draw and the first
// index addressed by a byte offset into the index buffer.
func (d *Device) indexed(format command.IndexFormat, offset uint64) (hal.RenderPassEncoder, uint32) {
	rp := d.pass()
	if rp == nil {
		return nil, 0
	}
	if d.gfx.index == nil {
		d.fail(ErrNoIndexBuffer)
		return nil, 0
	}
	size := format.Size()
	if size == 0 {
		d.fail(ErrNoIndexBuffer)
		return nil, 0
	}
	return rp, uint32(offset / size)
}

func (d *Device) indirectPass() hal.RenderPassEncoder {
	rp := d.pass()
	if rp == nil {
		return nil
	}
	if d.indirect == nil {
		d.fail(ErrNoIndirectBuffer)
		return nil
	}
	return rp
}

func (d *Device) DrawArrays(first, count uint32) {
	if rp := d.pass(); rp != nil {
		rp.Draw(count, 1, first, 0)
	}
}

func (d *Device) DrawArraysInstanced(first, count, instances uint32) {
	if rp := d.pass(); rp != nil {
		rp.Draw(count, instances, first, 0)
	}
}

func (d *Device) DrawArraysInstancedBaseInstance(first, count, instances, baseInstance uint32) {
	if rp := d.pass(); rp != nil {
		rp.Draw(count, instances, first, baseInstance)
	}
}

func (d *Device) MultiDrawArrays(firsts, counts []uint32) {
	rp := d.pass()
	if rp == nil {
		return
	}
	for i := range counts {
		rp.Draw(counts[i], 1, firsts[i], uint32(i))
	}
}

func (d *Device) DrawArraysIndirect(offset uint64) {
	if rp := d.indirectPass(); rp != nil {
		rp.DrawIndirect(d.indirect, offset)
	}
}

func (d *Device) MultiDrawArraysIndirect(offset uint64, drawCount, stride uint32) {
	rp := d.indirectPass()
	if rp == nil {
		return
	}
	for i := range uint64(drawCount) {
		rp.DrawIndirect(d.indirect, offset+i*uint64(stride))
	}
}

func (d *Device) DrawElements(format command.IndexFormat, count uint32, offset uint64) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, 1, first, 0, 0)
	}
}

func (d *Device) DrawElementsBaseVertex(format command.IndexFormat, count uint32, offset uint64, baseVertex int32) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, 1, first, baseVertex, 0)
	}
}

func (d *Device) DrawElementsInstanced(format command.IndexFormat, count uint32, offset uint64, instances uint32) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, instances, first, 0, 0)
	}
}

func (d *Device) DrawElementsInstancedBaseVertex(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, instances, first, baseVertex, 0)
	}
}

func (d *Device) DrawElementsInstancedBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances, baseInstance uint32) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, instances, first, 0, baseInstance)
	}
}

func (d *Device) DrawElementsInstancedBaseVertexBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32, baseInstance uint32) {
	if rp, first := d.indexed(format, offset); rp != nil {
		rp.DrawIndexed(count, instances, first, baseVertex, baseInstance)
	}
}

func (d *Device) MultiDrawElements(format command.IndexFormat, counts []uint32, offsets []uint64) {
	for i := range counts {
		rp, first := d.indexed(format, offsets[i])
		if rp == nil {
			return
		}
		rp.DrawIndexed(counts[i], 1, first, 0, uint32(i))
	}
}

func (d *Device) MultiDrawElementsBaseVertex(format command.IndexFormat, counts []uint32, offsets []uint64, baseVertices []int32) {
	for i := range counts {
		rp, first := d.indexed(format, offsets[i])
		if rp == nil {
			return
		}
		rp.DrawIndexed(counts[i], 1, first, baseVertices[i], uint32(i))
	}
}

func (d *Device) DrawElementsIndirect(_ command.IndexFormat, offset uint64) {
	if d.gfx.index == nil {
		d.fail(ErrNoIndexBuffer)
		return
	}
	if rp := d.indirectPass(); rp != nil {
		rp.DrawIndexedIndirect(d.indirect, offset)
	}
}

func (d *Device) MultiDrawElementsIndirect(_ command.IndexFormat, offset uint64, drawCount, stride uint32) {
	if d.gfx.index == nil {
		d.fail(ErrNoIndexBuffer)
		return
	}
	rp := d.indirectPass()
	if rp == nil {
		return
	}
	for i := range uint64(drawCount) {
		rp.DrawIndexedIndirect(d.indirect, offset+i*uint64(stride))
	}
}
