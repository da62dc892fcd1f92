// Package wgpu provides a submit.Device that encodes command buffers with
// the gogpu/wgpu HAL.
//
// The device translates each executed record into hal encoder calls. One
// command encoder is opened per Execute and submitted with a fence on End.
//
// # Resources
//
// Command records refer to GPU objects by opaque IDs. The caller creates the
// objects with its hal.Device and registers them in a Resources table:
//
//	res := wgpu.NewResources()
//	res.AddBuffer(3, indexBuf)
//	res.AddTexture(1, colorTex, colorView)
//	res.AddRenderPipeline(7, pipeline)
//	res.AddBindGroup(2, group)
//	dev := wgpu.New(halDevice, halQueue, res)
//
// # Mapping
//
// WebGPU has no multi-draw entry points. MultiDraw* calls are emulated with
// one draw per sub-draw whose first instance is the sub-draw index, so a
// shader can recover it from the instance index. Push constants are written
// to a uniform buffer through the queue; bind PushConstantBuffer in a bind
// group to read them. Buffer and texture barriers become hal transitions.
//
// Debug scopes and messages go to the package logger at Debug level.
//
// Importing the package registers a standalone Vulkan device as "wgpu".
package wgpu
