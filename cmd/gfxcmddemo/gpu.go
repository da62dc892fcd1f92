package main

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcmd/backend/wgpu"
	"github.com/gogpu/gfxcmd/command"
)

const targetFormat = gputypes.TextureFormatRGBA8Unorm

// setupGPU creates the objects the producers refer to and registers them in
// the device's resource table. Shader modules are built from the SPIR-V in
// shaders.
func setupGPU(dev *wgpu.Device, shaders shaderSet) error {
	device, _ := dev.HAL()
	res := dev.Resources()

	for _, id := range []command.TextureID{colorTarget, shadowMap} {
		tex, err := device.CreateTexture(&hal.TextureDescriptor{
			Label:         fmt.Sprintf("texture_%d", id),
			Size:          hal.Extent3D{Width: targetSize, Height: targetSize, DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     gputypes.TextureDimension2D,
			Format:        targetFormat,
			Usage: gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding |
				gputypes.TextureUsageCopySrc | gputypes.TextureUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("create texture %d: %w", id, err)
		}
		view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
			Label: fmt.Sprintf("texture_%d_view", id),
		})
		if err != nil {
			return fmt.Errorf("create texture view %d: %w", id, err)
		}
		res.AddTexture(id, tex, view)
	}

	buffers := []struct {
		id    command.BufferID
		size  uint64
		usage gputypes.BufferUsage
	}{
		{indexBuffer, 1 << 12, gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst},
		{vertexBuffer, 1 << 14, gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst},
		{argsBuffer, argsSize, gputypes.BufferUsageIndirect | gputypes.BufferUsageStorage},
	}
	for _, b := range buffers {
		buf, err := device.CreateBuffer(&hal.BufferDescriptor{
			Label: fmt.Sprintf("buffer_%d", b.id),
			Size:  b.size,
			Usage: b.usage,
		})
		if err != nil {
			return fmt.Errorf("create buffer %d: %w", b.id, err)
		}
		res.AddBuffer(b.id, buf)
	}

	push, err := dev.PushConstantBuffer()
	if err != nil {
		return err
	}
	layout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{{
			Binding:    0,
			Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment | gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		}},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}
	group, err := device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "frame_set",
		Layout: layout,
		Entries: []gputypes.BindGroupEntry{{
			Binding: 0,
			Resource: gputypes.BufferBinding{
				Buffer: push.NativeHandle(), Offset: 0, Size: command.MaxPushConstantBytes,
			},
		}},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	res.AddBindGroup(frameSet, group)

	pipeLayout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "frame_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	lines, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "debug_line",
		Source: hal.ShaderSource{SPIRV: shaders.lines},
	})
	if err != nil {
		return fmt.Errorf("create debug line shader: %w", err)
	}
	for id, topology := range map[command.PipelineID]gputypes.PrimitiveTopology{
		opaquePipeline: gputypes.PrimitiveTopologyTriangleList,
		linePipeline:   gputypes.PrimitiveTopologyLineList,
	} {
		p, err := device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
			Label:  fmt.Sprintf("pipeline_%d", id),
			Layout: pipeLayout,
			Vertex: hal.VertexState{Module: lines, EntryPoint: "vs_main"},
			Fragment: &hal.FragmentState{
				Module:     lines,
				EntryPoint: "fs_main",
				Targets: []gputypes.ColorTargetState{{
					Format:    targetFormat,
					WriteMask: gputypes.ColorWriteMaskAll,
				}},
			},
			Primitive:   gputypes.PrimitiveState{Topology: topology, CullMode: gputypes.CullModeNone},
			Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
		})
		if err != nil {
			return fmt.Errorf("create render pipeline %d: %w", id, err)
		}
		res.AddRenderPipeline(id, p)
	}

	cullModule, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "cull",
		Source: hal.ShaderSource{SPIRV: shaders.cull},
	})
	if err != nil {
		return fmt.Errorf("create cull shader: %w", err)
	}
	cp, err := device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "cull",
		Layout:  pipeLayout,
		Compute: hal.ComputeState{Module: cullModule, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("create cull pipeline: %w", err)
	}
	res.AddComputePipeline(cullPipeline, cp)
	return nil
}
