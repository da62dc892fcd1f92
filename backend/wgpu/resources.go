package wgpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gfxcmd/command"
)

// Resource lookup errors.
var (
	ErrUnknownBuffer    = errors.New("wgpu: unknown buffer")
	ErrUnknownTexture   = errors.New("wgpu: unknown texture")
	ErrUnknownPipeline  = errors.New("wgpu: unknown pipeline")
	ErrUnknownBindGroup = errors.New("wgpu: unknown bind group")
)

type texture struct {
	tex  hal.Texture
	view hal.TextureView
}

// Resources maps the IDs used in command records to hal objects.
// It does not own the objects; the caller destroys them.
//
// Resources is safe for concurrent use.
type Resources struct {
	mu       sync.RWMutex
	buffers  map[command.BufferID]hal.Buffer
	textures map[command.TextureID]texture
	render   map[command.PipelineID]hal.RenderPipeline
	compute  map[command.PipelineID]hal.ComputePipeline
	groups   map[command.BindingSetID]hal.BindGroup
}

// NewResources returns an empty table.
func NewResources() *Resources {
	return &Resources{
		buffers:  make(map[command.BufferID]hal.Buffer),
		textures: make(map[command.TextureID]texture),
		render:   make(map[command.PipelineID]hal.RenderPipeline),
		compute:  make(map[command.PipelineID]hal.ComputePipeline),
		groups:   make(map[command.BindingSetID]hal.BindGroup),
	}
}

// AddBuffer registers a buffer under id.
func (r *Resources) AddBuffer(id command.BufferID, b hal.Buffer) {
	r.mu.Lock()
	r.buffers[id] = b
	r.mu.Unlock()
}

// AddTexture registers a texture and the view used to attach it.
func (r *Resources) AddTexture(id command.TextureID, t hal.Texture, v hal.TextureView) {
	r.mu.Lock()
	r.textures[id] = texture{tex: t, view: v}
	r.mu.Unlock()
}

// AddRenderPipeline registers a graphics pipeline.
func (r *Resources) AddRenderPipeline(id command.PipelineID, p hal.RenderPipeline) {
	r.mu.Lock()
	r.render[id] = p
	r.mu.Unlock()
}

// AddComputePipeline registers a compute pipeline.
func (r *Resources) AddComputePipeline(id command.PipelineID, p hal.ComputePipeline) {
	r.mu.Lock()
	r.compute[id] = p
	r.mu.Unlock()
}

// AddBindGroup registers a bind group.
func (r *Resources) AddBindGroup(id command.BindingSetID, g hal.BindGroup) {
	r.mu.Lock()
	r.groups[id] = g
	r.mu.Unlock()
}

// Remove drops every entry registered under the given raw id.
func (r *Resources) Remove(id uint64) {
	r.mu.Lock()
	delete(r.buffers, command.BufferID(id))
	delete(r.textures, command.TextureID(id))
	delete(r.render, command.PipelineID(id))
	delete(r.compute, command.PipelineID(id))
	delete(r.groups, command.BindingSetID(id))
	r.mu.Unlock()
}

func (r *Resources) buffer(id command.BufferID) (hal.Buffer, error) {
	r.mu.RLock()
	b, ok := r.buffers[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBuffer, id)
	}
	return b, nil
}

func (r *Resources) texture(id command.TextureID) (texture, error) {
	r.mu.RLock()
	t, ok := r.textures[id]
	r.mu.RUnlock()
	if !ok {
		return texture{}, fmt.Errorf("%w: %d", ErrUnknownTexture, id)
	}
	return t, nil
}

func (r *Resources) renderPipeline(id command.PipelineID) (hal.RenderPipeline, error) {
	r.mu.RLock()
	p, ok := r.render[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: graphics %d", ErrUnknownPipeline, id)
	}
	return p, nil
}

func (r *Resources) computePipeline(id command.PipelineID) (hal.ComputePipeline, error) {
	r.mu.RLock()
	p, ok := r.compute[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: compute %d", ErrUnknownPipeline, id)
	}
	return p, nil
}

func (r *Resources) bindGroup(id command.BindingSetID) (hal.BindGroup, error) {
	r.mu.RLock()
	g, ok := r.groups[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBindGroup, id)
	}
	return g, nil
}
