package main

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
)

// debugLineShader draws one horizontal line per instance in the color held
// in the push constant block.
const debugLineShader = `
struct Push {
    color: vec4<f32>,
}

@group(0) @binding(0) var<uniform> push: Push;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vi: u32, @builtin(instance_index) ii: u32) -> VertexOutput {
    let x = f32(vi & 1u) * 2.0 - 1.0;
    let y = f32(ii) * 0.1 - 0.9;
    var out: VertexOutput;
    out.position = vec4<f32>(x, y, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return push.color;
}
`

// cullShader stands in for a GPU culling pass that writes indirect args.
const cullShader = `
@compute @workgroup_size(64)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
}
`

// shaderSet holds the demo's shaders compiled to SPIR-V words.
type shaderSet struct {
	lines []uint32
	cull  []uint32
}

// words returns the total SPIR-V word count.
func (s shaderSet) words() int { return len(s.lines) + len(s.cull) }

// compileShaders compiles the WGSL sources to SPIR-V.
func compileShaders() (shaderSet, error) {
	lines, err := compileSPIRV("debug_line", debugLineShader)
	if err != nil {
		return shaderSet{}, err
	}
	cull, err := compileSPIRV("cull", cullShader)
	if err != nil {
		return shaderSet{}, err
	}
	return shaderSet{lines: lines, cull: cull}, nil
}

// compileSPIRV compiles WGSL with naga and splits the little-endian output
// into 32-bit words.
func compileSPIRV(name, src string) ([]uint32, error) {
	spirv, err := naga.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", name, err)
	}
	if len(spirv) == 0 || len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile %s shader: %d bytes is not whole SPIR-V words", name, len(spirv))
	}
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirv[i*4:])
	}
	return words, nil
}
