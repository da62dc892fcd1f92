package main

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/frame"
)

// Object IDs shared by the producers and the GPU setup.
const (
	colorTarget  command.TextureID = 1
	shadowMap    command.TextureID = 2
	indexBuffer  command.BufferID  = 3
	vertexBuffer command.BufferID  = 4
	argsBuffer   command.BufferID  = 12

	opaquePipeline command.PipelineID = 7
	cullPipeline   command.PipelineID = 9
	linePipeline   command.PipelineID = 11

	frameSet command.BindingSetID = 2

	targetSize = 256
	argsSize   = 64 * command.IndirectArgsSize
)

// cull dispatches the culling shader and locks the indirect args it writes.
func cull(rec *frame.Recorder) error {
	buf := rec.Buffer()
	buf.BeginScope("cull")
	buf.BindPipeline(cullPipeline, command.PipelineCompute)
	buf.BindResources(0, frameSet)
	buf.DispatchCompute(4, 1, 1)
	buf.EndScope()
	rec.Lock(argsBuffer, command.Range{Offset: 0, Size: 4 * command.IndirectArgsSize}, command.ComputeWriteToIndirectRead)
	return nil
}

// shadows clears the shadow map and hands it to the opaque pass as a
// shader-readable texture.
func shadows(rec *frame.Recorder) error {
	buf := rec.Buffer()
	buf.ClearTexture(shadowMap, gputypes.Color{R: 1, G: 1, B: 1, A: 1},
		command.SubRange{Count: 1}, command.SubRange{Count: 1})
	rec.Ledger().Transition(command.TextureTransition{
		View: shadowMap, Source: command.LayoutCopyDest, Target: command.LayoutShaderRead,
	})
	rec.Ledger().Transition(command.TextureTransition{
		View: shadowMap, Source: command.LayoutShaderRead, Target: command.LayoutShaderRead,
	})
	return nil
}

// opaque draws indexed geometry in one pass: a multi-draw, an instanced
// draw, and the culled indirect draws.
func opaque(rec *frame.Recorder) error {
	buf := rec.Buffer()
	buf.BeginRenderPass(command.RenderPassDesc{
		Label:      "opaque",
		Target:     colorTarget,
		LoadOp:     gputypes.LoadOpClear,
		StoreOp:    gputypes.StoreOpStore,
		ClearColor: gputypes.Color{R: 0.1, G: 0.1, B: 0.1, A: 1},
	})
	buf.SetViewport(0, 0, targetSize, targetSize, 0, 1)
	buf.SetScissor(0, 0, targetSize, targetSize)
	buf.BindPipeline(opaquePipeline, command.PipelineGraphics)
	buf.BindResources(0, frameSet)
	buf.BindVertexBuffer(0, vertexBuffer, 0)
	buf.BindIndexBuffer(indexBuffer, command.IndexUint16, 0)
	buf.BindIndirectBuffer(argsBuffer, 0)
	buf.Draw(
		command.GenericDrawCommand{IndexCount: 36, FirstIndex: 0, DrawCount: 3, InstanceCount: 1, Source: indexBuffer},
		command.GenericDrawCommand{IndexCount: 36, FirstIndex: 36, BaseVertex: 24, DrawCount: 1, InstanceCount: 16, Source: indexBuffer},
		command.GenericDrawCommand{DrawCount: 4, InstanceCount: 1, Source: argsBuffer, Options: command.DrawIndirect},
	)
	buf.EndRenderPass()
	return nil
}

// debugLines draws a handful of lines over the opaque result.
func debugLines(rec *frame.Recorder) error {
	buf := rec.Buffer()
	buf.BeginScope("debug")
	buf.AddDebugMessage("debug lines", 1)
	buf.BeginRenderPass(command.RenderPassDesc{
		Label:   "debug",
		Target:  colorTarget,
		LoadOp:  gputypes.LoadOpLoad,
		StoreOp: gputypes.StoreOpStore,
	})
	buf.BindPipeline(linePipeline, command.PipelineGraphics)
	buf.BindResources(0, frameSet)
	buf.PushConstants(0, colorBytes(0, 1, 0, 1))
	buf.BindIndexBuffer(0, command.IndexNone, 0)
	buf.Draw(command.GenericDrawCommand{VertexCount: 2, DrawCount: 1, InstanceCount: 8})
	buf.EndRenderPass()
	buf.EndScope()
	return nil
}

func colorBytes(r, g, b, a float32) []byte {
	out := make([]byte, 16)
	for i, v := range [4]float32{r, g, b, a} {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}
