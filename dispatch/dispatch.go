// Package dispatch translates an abstract draw command into the one concrete
// backend draw call its field combination requires.
//
// The decision depends on the draw's counts, its indirect flag and the index
// format of the currently bound index buffer:
//
//	no-op (DrawCount or InstanceCount zero)      fault
//	DrawCount > 1 and InstanceCount > 1          fault
//	indexed, indirect                            [Multi]DrawElementsIndirect
//	indexed, DrawCount > 1                       MultiDrawElements[BaseVertex]
//	indexed, DrawCount == 1                      DrawElements[Instanced][BaseVertex][BaseInstance]
//	non-indexed                                  the DrawArrays family
//
// Multi-draw and instancing are mutually exclusive because both use the
// base-instance slot: multi-draw backends carry the sub-draw index there so
// shaders can read it as a draw ID.
//
// The dispatcher never binds resources; binding is expressed by records that
// precede the draw.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/internal/fault"
)

// Draw contract violations.
var (
	// ErrNoOpDraw is raised for a draw with zero DrawCount or InstanceCount.
	// Producers must skip such draws before recording them.
	ErrNoOpDraw = errors.New("dispatch: no-op draw reached the dispatcher")

	// ErrMultiDrawInstanced is raised for a draw that is both multi-draw and instanced.
	ErrMultiDrawInstanced = errors.New("dispatch: multi-draw combined with instancing")
)

// State is the bound pipeline state a draw depends on.
type State struct {
	// Index is the format of the bound index buffer; IndexNone means the
	// draw is non-indexed.
	Index command.IndexFormat

	// IndirectBase is the byte offset added to every indirect argument offset.
	IndirectBase uint64
}

// IndirectOffset returns the byte offset of cmd's argument record in the
// bound indirect buffer.
func IndirectOffset(cmd *command.GenericDrawCommand, state State) uint64 {
	return uint64(cmd.CommandOffset)*command.IndirectArgsSize + state.IndirectBase
}

// Select returns the backend call cmd maps to under state. It reports a
// contract violation as an error wrapping ErrNoOpDraw or
// ErrMultiDrawInstanced and has no side effects.
func Select(cmd *command.GenericDrawCommand, state State) (Call, error) {
	if cmd.IsNoOp() {
		return CallNone, fmt.Errorf("%w: draws=%d instances=%d", ErrNoOpDraw, cmd.DrawCount, cmd.InstanceCount)
	}
	multi := cmd.DrawCount > 1
	if multi && cmd.InstanceCount > 1 {
		return CallNone, fmt.Errorf("%w: draws=%d instances=%d", ErrMultiDrawInstanced, cmd.DrawCount, cmd.InstanceCount)
	}
	instanced := cmd.InstanceCount > 1 || cmd.BaseInstance > 0

	if state.Index != command.IndexNone {
		switch {
		case cmd.Indirect() && multi:
			return CallMultiDrawElementsIndirect, nil
		case cmd.Indirect():
			return CallDrawElementsIndirect, nil
		case multi && cmd.BaseVertex > 0:
			return CallMultiDrawElementsBaseVertex, nil
		case multi:
			return CallMultiDrawElements, nil
		case instanced:
			switch {
			case cmd.BaseInstance > 0 && cmd.BaseVertex > 0:
				return CallDrawElementsInstancedBaseVertexBaseInstance, nil
			case cmd.BaseInstance > 0:
				return CallDrawElementsInstancedBaseInstance, nil
			case cmd.BaseVertex > 0:
				return CallDrawElementsInstancedBaseVertex, nil
			default:
				return CallDrawElementsInstanced, nil
			}
		case cmd.BaseVertex > 0:
			return CallDrawElementsBaseVertex, nil
		default:
			return CallDrawElements, nil
		}
	}

	switch {
	case cmd.Indirect() && multi:
		return CallMultiDrawArraysIndirect, nil
	case cmd.Indirect():
		return CallDrawArraysIndirect, nil
	case multi:
		return CallMultiDrawArrays, nil
	case cmd.BaseInstance > 0:
		return CallDrawArraysInstancedBaseInstance, nil
	case instanced:
		return CallDrawArraysInstanced, nil
	default:
		return CallDrawArrays, nil
	}
}

// Dispatch selects the call for cmd and issues it on b. Multi-draw arrays
// are filled in s. A contract violation is fatal and issues no call.
func Dispatch(b Backend, s *Scratch, cmd *command.GenericDrawCommand, state State) Call {
	call, err := Select(cmd, state)
	if err != nil {
		fault.Raise(err, "draw", cmd.String(), "index", state.Index)
	}

	format := state.Index
	offset := uint64(cmd.FirstIndex) * format.Size()
	baseVertex := int32(cmd.BaseVertex) //nolint:gosec // GL base vertex is signed
	n := int(cmd.DrawCount)

	switch call {
	case CallDrawElements:
		b.DrawElements(format, cmd.IndexCount, offset)
	case CallDrawElementsBaseVertex:
		b.DrawElementsBaseVertex(format, cmd.IndexCount, offset, baseVertex)
	case CallDrawElementsInstanced:
		b.DrawElementsInstanced(format, cmd.IndexCount, offset, cmd.InstanceCount)
	case CallDrawElementsInstancedBaseVertex:
		b.DrawElementsInstancedBaseVertex(format, cmd.IndexCount, offset, cmd.InstanceCount, baseVertex)
	case CallDrawElementsInstancedBaseInstance:
		b.DrawElementsInstancedBaseInstance(format, cmd.IndexCount, offset, cmd.InstanceCount, cmd.BaseInstance)
	case CallDrawElementsInstancedBaseVertexBaseInstance:
		b.DrawElementsInstancedBaseVertexBaseInstance(format, cmd.IndexCount, offset, cmd.InstanceCount, baseVertex, cmd.BaseInstance)
	case CallMultiDrawElements:
		s.reserve(n)
		for i := range n {
			s.counts[i] = cmd.IndexCount
			s.offsets[i] = offset
		}
		b.MultiDrawElements(format, s.counts, s.offsets)
	case CallMultiDrawElementsBaseVertex:
		s.reserve(n)
		for i := range n {
			s.counts[i] = cmd.IndexCount
			s.offsets[i] = offset
			s.baseVertices[i] = baseVertex
		}
		b.MultiDrawElementsBaseVertex(format, s.counts, s.offsets, s.baseVertices)
	case CallDrawElementsIndirect:
		b.DrawElementsIndirect(format, IndirectOffset(cmd, state))
	case CallMultiDrawElementsIndirect:
		b.MultiDrawElementsIndirect(format, IndirectOffset(cmd, state), cmd.DrawCount, uint32(command.IndirectArgsSize))

	case CallDrawArrays:
		b.DrawArrays(cmd.BaseVertex, cmd.VertexCount)
	case CallDrawArraysInstanced:
		b.DrawArraysInstanced(cmd.BaseVertex, cmd.VertexCount, cmd.InstanceCount)
	case CallDrawArraysInstancedBaseInstance:
		b.DrawArraysInstancedBaseInstance(cmd.BaseVertex, cmd.VertexCount, cmd.InstanceCount, cmd.BaseInstance)
	case CallMultiDrawArrays:
		s.reserve(n)
		for i := range n {
			s.firsts[i] = cmd.BaseVertex
			s.counts[i] = cmd.VertexCount
		}
		b.MultiDrawArrays(s.firsts, s.counts)
	case CallDrawArraysIndirect:
		b.DrawArraysIndirect(IndirectOffset(cmd, state))
	case CallMultiDrawArraysIndirect:
		b.MultiDrawArraysIndirect(IndirectOffset(cmd, state), cmd.DrawCount, uint32(command.IndirectArgsSize))
	}
	return call
}
