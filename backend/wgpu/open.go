package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	_ "github.com/gogpu/wgpu/hal/vulkan"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/submit"
)

// Name is the registry name of the standalone wgpu device.
const Name = "wgpu"

// ErrNoAdapter is returned by Open when no GPU adapter is available.
var ErrNoAdapter = errors.New("wgpu: no GPU adapter found")

func init() {
	submit.Register(Name, func() (submit.Device, error) {
		return Open(gputypes.BackendVulkan, NewResources())
	})
}

// GPUInfo describes the adapter a device was opened on.
type GPUInfo struct {
	Name       string
	DeviceType gputypes.DeviceType
	Backend    gputypes.Backend
}

// String returns a human-readable description of the GPU.
func (g GPUInfo) String() string {
	return fmt.Sprintf("%s (%s, %s)", g.Name, g.DeviceType, g.Backend)
}

// Open creates a hal instance for backend, opens the first discrete or
// integrated adapter (falling back to the first adapter) and returns a
// device owning it. Close releases the hal device and instance.
func Open(backend gputypes.Backend, res *Resources, opts ...Option) (*Device, error) {
	api, ok := hal.GetBackend(backend)
	if !ok {
		return nil, fmt.Errorf("wgpu: backend %s not available", backend)
	}
	instance, err := api.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		t := adapters[i].Info.DeviceType
		if t == gputypes.DeviceTypeDiscreteGPU || t == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("wgpu: open device: %w", err)
	}

	info := GPUInfo{
		Name:       selected.Info.Name,
		DeviceType: selected.Info.DeviceType,
		Backend:    backend,
	}
	gfxcmd.Logger().Info("wgpu: device opened", "gpu", info.String())

	d := New(openDev.Device, openDev.Queue, res, opts...)
	d.release = func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return d, nil
}
