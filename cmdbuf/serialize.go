package cmdbuf

import (
	"io"
	"strings"

	"github.com/gogpu/gfxcmd/command"
)

// indent is the per-level prefix of nested records.
const indent = "  "

// Serialize returns a deterministic, human-readable dump of the buffer: one
// line per record with its kind name and kind-specific detail, indented by
// render pass and debug scope nesting. The form is a debugging and capture
// surface, not a wire format.
func (b *Buffer) Serialize() string {
	var sb strings.Builder
	depth := 0
	for _, h := range b.handles {
		k := h.Kind()
		if k.Closes() && depth > 0 {
			depth--
		}
		for range depth {
			sb.WriteString(indent)
		}
		sb.WriteString(k.String())
		if d := b.Describe(h); d != "" {
			sb.WriteByte(' ')
			sb.WriteString(d)
		}
		sb.WriteByte('\n')
		if k.Opens() {
			depth++
		}
	}
	return sb.String()
}

// WriteTo writes the serialized form to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.Serialize())
	return int64(n), err
}

// Describe returns the kind-specific detail of the record h names.
func (b *Buffer) Describe(h command.Handle) string {
	p := b.pools
	switch h.Kind() {
	case command.KindBeginRenderPass:
		return p.BeginRenderPass.Get(h).String()
	case command.KindEndRenderPass:
		return p.EndRenderPass.Get(h).String()
	case command.KindBindPipeline:
		return p.BindPipeline.Get(h).String()
	case command.KindBindResources:
		return p.BindResources.Get(h).String()
	case command.KindBindVertexBuffer:
		return p.BindVertexBuffer.Get(h).String()
	case command.KindBindIndexBuffer:
		return p.BindIndexBuffer.Get(h).String()
	case command.KindBindIndirectBuffer:
		return p.BindIndirectBuffer.Get(h).String()
	case command.KindPushConstants:
		return p.PushConstants.Get(h).String()
	case command.KindSetViewport:
		return p.SetViewport.Get(h).String()
	case command.KindSetScissor:
		return p.SetScissor.Get(h).String()
	case command.KindDraw:
		return p.Draw.Get(h).String()
	case command.KindDispatchCompute:
		return p.DispatchCompute.Get(h).String()
	case command.KindMemoryBarrier:
		return p.MemoryBarrier.Get(h).String()
	case command.KindCopyTexture:
		return p.CopyTexture.Get(h).String()
	case command.KindClearTexture:
		return p.ClearTexture.Get(h).String()
	case command.KindBeginDebugScope:
		return p.BeginDebugScope.Get(h).String()
	case command.KindEndDebugScope:
		return p.EndDebugScope.Get(h).String()
	case command.KindAddDebugMessage:
		return p.AddDebugMessage.Get(h).String()
	default:
		return ""
	}
}
