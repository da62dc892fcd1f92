package main

import (
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/backend/wgpu"
	"github.com/gogpu/gfxcmd/frame"
)

const spirvMagic = 0x07230203

func TestCompileShaders(t *testing.T) {
	shaders, err := compileShaders()
	require.NoError(t, err)

	for name, words := range map[string][]uint32{"debug_line": shaders.lines, "cull": shaders.cull} {
		require.NotEmpty(t, words, name)
		assert.Equal(t, uint32(spirvMagic), words[0], "%s: SPIR-V magic", name)
	}
	assert.Equal(t, len(shaders.lines)+len(shaders.cull), shaders.words())
}

func TestCompileSPIRV_InvalidSource(t *testing.T) {
	_, err := compileSPIRV("broken", "fn main( {")
	assert.Error(t, err)
}

func TestSetupGPU_RendersDemoFrame(t *testing.T) {
	shaders, err := compileShaders()
	require.NoError(t, err)

	instance, err := noop.API{}.CreateInstance(nil)
	require.NoError(t, err)
	defer instance.Destroy()
	adapters := instance.EnumerateAdapters(nil)
	require.NotEmpty(t, adapters)
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	require.NoError(t, err)
	defer open.Device.Destroy()

	dev := wgpu.New(open.Device, open.Queue, wgpu.NewResources())
	defer dev.Close()
	require.NoError(t, setupGPU(dev, shaders))

	f, err := frame.New(dev, gfxcmd.DefaultConfig())
	require.NoError(t, err)
	defer f.Close()
	for name, p := range map[string]frame.ProducerFunc{
		"cull": cull, "shadows": shadows, "opaque": opaque, "debug": debugLines,
	} {
		require.NoError(t, f.Add(name, p))
	}

	require.NoError(t, f.Render())
	require.NoError(t, f.Render())
	assert.Equal(t, 2, f.Frames())
	assert.Equal(t, 2, dev.Submitted())
}
