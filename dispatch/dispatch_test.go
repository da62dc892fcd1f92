package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/internal/fault"
)

// issued is one call observed by recorder.
type issued struct {
	call         Call
	format       command.IndexFormat
	first        uint32
	count        uint32
	offset       uint64
	instances    uint32
	baseVertex   int32
	baseInstance uint32
	drawCount    uint32
	stride       uint32
	counts       []uint32
	offsets      []uint64
	firsts       []uint32
	baseVertices []int32
}

// recorder is a Backend that remembers every call.
type recorder struct {
	calls []issued
}

func (r *recorder) add(c issued) { r.calls = append(r.calls, c) }

func (r *recorder) DrawArrays(first, count uint32) {
	r.add(issued{call: CallDrawArrays, first: first, count: count})
}

func (r *recorder) DrawArraysInstanced(first, count, instances uint32) {
	r.add(issued{call: CallDrawArraysInstanced, first: first, count: count, instances: instances})
}

func (r *recorder) DrawArraysInstancedBaseInstance(first, count, instances, baseInstance uint32) {
	r.add(issued{call: CallDrawArraysInstancedBaseInstance, first: first, count: count, instances: instances, baseInstance: baseInstance})
}

func (r *recorder) MultiDrawArrays(firsts, counts []uint32) {
	r.add(issued{call: CallMultiDrawArrays, firsts: append([]uint32(nil), firsts...), counts: append([]uint32(nil), counts...)})
}

func (r *recorder) DrawArraysIndirect(offset uint64) {
	r.add(issued{call: CallDrawArraysIndirect, offset: offset})
}

func (r *recorder) MultiDrawArraysIndirect(offset uint64, drawCount, stride uint32) {
	r.add(issued{call: CallMultiDrawArraysIndirect, offset: offset, drawCount: drawCount, stride: stride})
}

func (r *recorder) DrawElements(format command.IndexFormat, count uint32, offset uint64) {
	r.add(issued{call: CallDrawElements, format: format, count: count, offset: offset})
}

func (r *recorder) DrawElementsBaseVertex(format command.IndexFormat, count uint32, offset uint64, baseVertex int32) {
	r.add(issued{call: CallDrawElementsBaseVertex, format: format, count: count, offset: offset, baseVertex: baseVertex})
}

func (r *recorder) DrawElementsInstanced(format command.IndexFormat, count uint32, offset uint64, instances uint32) {
	r.add(issued{call: CallDrawElementsInstanced, format: format, count: count, offset: offset, instances: instances})
}

func (r *recorder) DrawElementsInstancedBaseVertex(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32) {
	r.add(issued{call: CallDrawElementsInstancedBaseVertex, format: format, count: count, offset: offset, instances: instances, baseVertex: baseVertex})
}

func (r *recorder) DrawElementsInstancedBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances, baseInstance uint32) {
	r.add(issued{call: CallDrawElementsInstancedBaseInstance, format: format, count: count, offset: offset, instances: instances, baseInstance: baseInstance})
}

func (r *recorder) DrawElementsInstancedBaseVertexBaseInstance(format command.IndexFormat, count uint32, offset uint64, instances uint32, baseVertex int32, baseInstance uint32) {
	r.add(issued{call: CallDrawElementsInstancedBaseVertexBaseInstance, format: format, count: count, offset: offset, instances: instances, baseVertex: baseVertex, baseInstance: baseInstance})
}

func (r *recorder) MultiDrawElements(format command.IndexFormat, counts []uint32, offsets []uint64) {
	r.add(issued{call: CallMultiDrawElements, format: format,
		counts: append([]uint32(nil), counts...), offsets: append([]uint64(nil), offsets...)})
}

func (r *recorder) MultiDrawElementsBaseVertex(format command.IndexFormat, counts []uint32, offsets []uint64, baseVertices []int32) {
	r.add(issued{call: CallMultiDrawElementsBaseVertex, format: format,
		counts: append([]uint32(nil), counts...), offsets: append([]uint64(nil), offsets...),
		baseVertices: append([]int32(nil), baseVertices...)})
}

func (r *recorder) DrawElementsIndirect(format command.IndexFormat, offset uint64) {
	r.add(issued{call: CallDrawElementsIndirect, format: format, offset: offset})
}

func (r *recorder) MultiDrawElementsIndirect(format command.IndexFormat, offset uint64, drawCount, stride uint32) {
	r.add(issued{call: CallMultiDrawElementsIndirect, format: format, offset: offset, drawCount: drawCount, stride: stride})
}

var (
	u16    = State{Index: command.IndexUint16}
	u32    = State{Index: command.IndexUint32}
	arrays = State{Index: command.IndexNone}
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name  string
		cmd   command.GenericDrawCommand
		state State
		want  Call
	}{
		{"indexed simple", command.GenericDrawCommand{IndexCount: 3, DrawCount: 1, InstanceCount: 1}, u16, CallDrawElements},
		{"indexed base vertex", command.GenericDrawCommand{IndexCount: 3, DrawCount: 1, InstanceCount: 1, BaseVertex: 4}, u16, CallDrawElementsBaseVertex},
		{"indexed instanced", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 2}, u16, CallDrawElementsInstanced},
		{"indexed instanced base vertex", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 2, BaseVertex: 1}, u16, CallDrawElementsInstancedBaseVertex},
		{"indexed instanced base instance", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 2, BaseInstance: 1}, u16, CallDrawElementsInstancedBaseInstance},
		{"indexed instanced both", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 2, BaseInstance: 1, BaseVertex: 1}, u32, CallDrawElementsInstancedBaseVertexBaseInstance},
		{"indexed base instance only", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 1, BaseInstance: 3}, u32, CallDrawElementsInstancedBaseInstance},
		{"indexed multi", command.GenericDrawCommand{DrawCount: 3, InstanceCount: 1}, u16, CallMultiDrawElements},
		{"indexed multi base vertex", command.GenericDrawCommand{DrawCount: 3, InstanceCount: 1, BaseVertex: 8}, u16, CallMultiDrawElementsBaseVertex},
		{"indexed indirect", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 1, Options: command.DrawIndirect}, u32, CallDrawElementsIndirect},
		{"indexed multi indirect", command.GenericDrawCommand{DrawCount: 2, InstanceCount: 1, Options: command.DrawIndirect}, u32, CallMultiDrawElementsIndirect},
		{"arrays simple", command.GenericDrawCommand{VertexCount: 3, DrawCount: 1, InstanceCount: 1}, arrays, CallDrawArrays},
		{"arrays first vertex", command.GenericDrawCommand{VertexCount: 3, DrawCount: 1, InstanceCount: 1, BaseVertex: 6}, arrays, CallDrawArrays},
		{"arrays instanced", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 4}, arrays, CallDrawArraysInstanced},
		{"arrays base instance", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 4, BaseInstance: 2}, arrays, CallDrawArraysInstancedBaseInstance},
		{"arrays multi", command.GenericDrawCommand{DrawCount: 5, InstanceCount: 1}, arrays, CallMultiDrawArrays},
		{"arrays indirect", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 1, Options: command.DrawIndirect}, arrays, CallDrawArraysIndirect},
		{"arrays multi indirect", command.GenericDrawCommand{DrawCount: 4, InstanceCount: 1, Options: command.DrawIndirect}, arrays, CallMultiDrawArraysIndirect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(&tt.cmd, tt.state)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got, "Select() = %s", got)
			assert.Equal(t, tt.state.Index != command.IndexNone, got.Indexed())
			assert.Equal(t, tt.cmd.Indirect(), got.Indirect())
			assert.Equal(t, tt.cmd.DrawCount > 1, got.Multi())
		})
	}
}

func TestSelect_Violations(t *testing.T) {
	tests := []struct {
		name string
		cmd  command.GenericDrawCommand
		want error
	}{
		{"zero draws", command.GenericDrawCommand{DrawCount: 0, InstanceCount: 1}, ErrNoOpDraw},
		{"zero instances", command.GenericDrawCommand{DrawCount: 1, InstanceCount: 0}, ErrNoOpDraw},
		{"multi instanced", command.GenericDrawCommand{DrawCount: 3, InstanceCount: 5}, ErrMultiDrawInstanced},
		{"multi instanced indirect", command.GenericDrawCommand{DrawCount: 2, InstanceCount: 2, Options: command.DrawIndirect}, ErrMultiDrawInstanced},
	}
	for _, tt := range tests {
		for _, state := range []State{u16, u32, arrays} {
			t.Run(tt.name+"/"+state.Index.String(), func(t *testing.T) {
				call, err := Select(&tt.cmd, state)
				assert.ErrorIs(t, err, tt.want)
				assert.Equal(t, CallNone, call)
			})
		}
	}
}

// Every draw with a single non-instanced sub-draw and no offsets selects the
// simplest call for its index state.
func TestProperty_SimplestCall(t *testing.T) {
	for _, count := range []uint32{0, 1, 3, 1 << 20} {
		for _, first := range []uint32{0, 7} {
			cmd := command.GenericDrawCommand{IndexCount: count, VertexCount: count, FirstIndex: first, DrawCount: 1, InstanceCount: 1}
			for _, state := range []State{u16, u32, arrays} {
				call, err := Select(&cmd, state)
				require.NoError(t, err)
				if state.Index == command.IndexNone {
					assert.Equal(t, CallDrawArrays, call)
				} else {
					assert.Equal(t, CallDrawElements, call)
				}
			}
		}
	}
}

// Every multi-draw instanced combination faults before any backend call.
func TestProperty_MultiDrawInstancedFaults(t *testing.T) {
	r := &recorder{}
	s := NewScratch(4)
	for _, draws := range []uint32{2, 3, 64} {
		for _, instances := range []uint32{2, 5, 1000} {
			for _, opts := range []command.DrawOptions{0, command.DrawIndirect} {
				for _, state := range []State{u16, u32, arrays} {
					cmd := command.GenericDrawCommand{IndexCount: 6, DrawCount: draws, InstanceCount: instances, Options: opts}
					err := fault.Catch(func() { Dispatch(r, s, &cmd, state) })
					assert.ErrorIs(t, err, ErrMultiDrawInstanced)
				}
			}
		}
	}
	assert.Empty(t, r.calls, "no call may be issued for a faulting draw")
}

func TestScenarioA_IndexedSimple(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 36, FirstIndex: 6, DrawCount: 1, InstanceCount: 1}

	got := Dispatch(r, NewScratch(1), &cmd, u16)

	assert.Equal(t, CallDrawElements, got)
	require.Len(t, r.calls, 1)
	assert.Equal(t, issued{call: CallDrawElements, format: command.IndexUint16, count: 36, offset: 12}, r.calls[0])
}

func TestScenarioB_IndexedInstanced(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 6, DrawCount: 1, InstanceCount: 5}

	Dispatch(r, NewScratch(1), &cmd, u32)

	require.Len(t, r.calls, 1)
	assert.Equal(t, CallDrawElementsInstanced, r.calls[0].call)
	assert.Equal(t, uint32(5), r.calls[0].instances)
	assert.Equal(t, command.IndexUint32, r.calls[0].format)
}

func TestScenarioC_IndexedMultiDraw(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 12, FirstIndex: 2, DrawCount: 3, InstanceCount: 1}

	Dispatch(r, NewScratch(8), &cmd, u32)

	require.Len(t, r.calls, 1)
	c := r.calls[0]
	assert.Equal(t, CallMultiDrawElements, c.call)
	assert.Equal(t, []uint32{12, 12, 12}, c.counts)
	assert.Equal(t, []uint64{8, 8, 8}, c.offsets)
	assert.Nil(t, c.baseVertices)
}

func TestScenarioC_BaseVertexVariant(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 12, DrawCount: 3, InstanceCount: 1, BaseVertex: 100}

	Dispatch(r, NewScratch(8), &cmd, u16)

	require.Len(t, r.calls, 1)
	assert.Equal(t, CallMultiDrawElementsBaseVertex, r.calls[0].call)
	assert.Equal(t, []int32{100, 100, 100}, r.calls[0].baseVertices)
}

func TestScenarioD_MultiDrawInstancedFaults(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 12, DrawCount: 3, InstanceCount: 5}

	err := fault.Catch(func() { Dispatch(r, NewScratch(8), &cmd, u16) })

	require.ErrorIs(t, err, ErrMultiDrawInstanced)
	assert.Empty(t, r.calls)
}

func TestScenarioE_IndirectMultiDraw(t *testing.T) {
	tests := []struct {
		state State
		want  Call
	}{
		{State{Index: command.IndexUint32, IndirectBase: 256}, CallMultiDrawElementsIndirect},
		{State{Index: command.IndexNone, IndirectBase: 256}, CallMultiDrawArraysIndirect},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			r := &recorder{}
			cmd := command.GenericDrawCommand{DrawCount: 2, InstanceCount: 1, CommandOffset: 7, Options: command.DrawIndirect}

			Dispatch(r, NewScratch(1), &cmd, tt.state)

			require.Len(t, r.calls, 1)
			c := r.calls[0]
			assert.Equal(t, tt.want, c.call)
			assert.Equal(t, 7*command.IndirectArgsSize+256, c.offset)
			assert.Equal(t, uint32(2), c.drawCount)
			assert.Equal(t, uint32(command.IndirectArgsSize), c.stride)
		})
	}
}

func TestDispatch_NoOpFaults(t *testing.T) {
	r := &recorder{}
	cmd := command.GenericDrawCommand{IndexCount: 3, DrawCount: 1, InstanceCount: 0}

	err := fault.Catch(func() { Dispatch(r, NewScratch(1), &cmd, arrays) })

	assert.ErrorIs(t, err, ErrNoOpDraw)
	assert.Empty(t, r.calls)
}

func TestDispatch_ArraysUseVertexFields(t *testing.T) {
	r := &recorder{}
	cmds := []command.GenericDrawCommand{
		{VertexCount: 4, BaseVertex: 10, DrawCount: 1, InstanceCount: 1},
		{VertexCount: 4, BaseVertex: 10, DrawCount: 1, InstanceCount: 3, BaseInstance: 2},
		{VertexCount: 4, BaseVertex: 10, DrawCount: 2, InstanceCount: 1},
	}
	s := NewScratch(1)
	for i := range cmds {
		Dispatch(r, s, &cmds[i], arrays)
	}

	require.Len(t, r.calls, 3)
	assert.Equal(t, issued{call: CallDrawArrays, first: 10, count: 4}, r.calls[0])
	assert.Equal(t, issued{call: CallDrawArraysInstancedBaseInstance, first: 10, count: 4, instances: 3, baseInstance: 2}, r.calls[1])
	assert.Equal(t, []uint32{10, 10}, r.calls[2].firsts)
	assert.Equal(t, []uint32{4, 4}, r.calls[2].counts)
}

func TestScratch_GrowsGeometricallyNeverShrinks(t *testing.T) {
	r := &recorder{}
	s := NewScratch(2)
	require.Equal(t, 2, s.Cap())

	big := command.GenericDrawCommand{IndexCount: 3, DrawCount: 5, InstanceCount: 1}
	Dispatch(r, s, &big, u16)
	assert.Equal(t, 8, s.Cap())
	assert.Equal(t, 1, s.Grows())

	small := command.GenericDrawCommand{IndexCount: 3, DrawCount: 2, InstanceCount: 1}
	Dispatch(r, s, &small, u16)
	assert.Equal(t, 8, s.Cap(), "scratch must keep its high-water capacity")
	assert.Equal(t, 1, s.Grows())
	assert.Len(t, r.calls[1].counts, 2)

	huge := command.GenericDrawCommand{VertexCount: 3, DrawCount: 100, InstanceCount: 1}
	Dispatch(r, s, &huge, arrays)
	assert.Equal(t, 128, s.Cap())
	assert.Equal(t, 2, s.Grows())
}

func TestScratch_NoAllocationsAtCapacity(t *testing.T) {
	s := NewScratch(16)
	var b nopBackend
	cmd := command.GenericDrawCommand{IndexCount: 3, DrawCount: 16, InstanceCount: 1, BaseVertex: 2}
	allocs := testing.AllocsPerRun(50, func() {
		Dispatch(b, s, &cmd, u32)
	})
	assert.Zero(t, allocs)
}

func TestCall_String(t *testing.T) {
	for c := CallNone; c < callCount; c++ {
		assert.NotEqual(t, "Unknown", c.String(), "call %d", c)
	}
	assert.Equal(t, "Unknown", Call(200).String())
}

type nopBackend struct{}

func (nopBackend) DrawArrays(uint32, uint32)                                         {}
func (nopBackend) DrawArraysInstanced(uint32, uint32, uint32)                        {}
func (nopBackend) DrawArraysInstancedBaseInstance(uint32, uint32, uint32, uint32)    {}
func (nopBackend) MultiDrawArrays([]uint32, []uint32)                                {}
func (nopBackend) DrawArraysIndirect(uint64)                                         {}
func (nopBackend) MultiDrawArraysIndirect(uint64, uint32, uint32)                    {}
func (nopBackend) DrawElements(command.IndexFormat, uint32, uint64)                  {}
func (nopBackend) DrawElementsBaseVertex(command.IndexFormat, uint32, uint64, int32) {}
func (nopBackend) DrawElementsInstanced(command.IndexFormat, uint32, uint64, uint32) {}
func (nopBackend) DrawElementsInstancedBaseVertex(command.IndexFormat, uint32, uint64, uint32, int32) {
}
func (nopBackend) DrawElementsInstancedBaseInstance(command.IndexFormat, uint32, uint64, uint32, uint32) {
}
func (nopBackend) DrawElementsInstancedBaseVertexBaseInstance(command.IndexFormat, uint32, uint64, uint32, int32, uint32) {
}
func (nopBackend) MultiDrawElements(command.IndexFormat, []uint32, []uint64)                    {}
func (nopBackend) MultiDrawElementsBaseVertex(command.IndexFormat, []uint32, []uint64, []int32) {}
func (nopBackend) DrawElementsIndirect(command.IndexFormat, uint64)                             {}
func (nopBackend) MultiDrawElementsIndirect(command.IndexFormat, uint64, uint32, uint32)        {}
