// Package gfxcmd records GPU work as typed command records and translates
// them into backend calls.
//
// # Overview
//
// Producers (scene draw builders, post-processing stages, UI, debug lines)
// append records to a per-producer command buffer. A single submission stage
// walks the finalized buffer in order and hands every record to a backend
// device. Draw records go through the draw dispatch engine, which picks one
// concrete call variant (indexed or not, instanced, multi-draw, indirect,
// base-vertex/base-instance) from the record's fields and the bound index
// format.
//
// # Packages
//
//   - command: the closed set of record kinds, their payloads and the
//     per-kind fixed-capacity pools records are constructed in
//   - cmdbuf: the ordered command buffer, its text serialization and the
//     buffer-lock ledger
//   - dispatch: the draw dispatch engine and its scratch context
//   - ring: N-deep ring indices for pipelined resources
//   - submit: the executor, barrier resolution and the backend registry
//   - frame: parallel recording across producers, merge and submission
//   - backend/trace: a call-logging backend used for capture and tests
//   - backend/wgpu: a backend encoding into gogpu/wgpu HAL render passes
//
// # Quick Start
//
//	pools := command.NewPools(gfxcmd.DefaultConfig())
//	buf := cmdbuf.New(pools)
//	buf.BeginRenderPass(command.RenderPassDesc{Label: "main", Target: 1})
//	buf.BindPipeline(7, command.PipelineGraphics)
//	buf.BindIndexBuffer(3, command.IndexUint16, 0)
//	buf.Draw(command.GenericDrawCommand{IndexCount: 36, InstanceCount: 1, DrawCount: 1})
//	buf.EndRenderPass()
//	fmt.Print(buf.Serialize())
//
//	dev := trace.New()
//	submit.NewExecutor(dev).Execute(buf)
//	buf.Clear()
//
// # Faults
//
// Contract violations (zero-count draws, multi-draw combined with instancing,
// pool exhaustion, stale handles, concurrent appends, unbalanced scopes) are
// logged at error level and then panic with an error wrapping the package
// sentinel. They indicate a bug in the producer, never a recoverable input.
//
// # Logging
//
// gfxcmd is silent by default. Call [SetLogger] to route diagnostics to a
// [log/slog] logger.
package gfxcmd
