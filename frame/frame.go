// Package frame drives one frame of parallel recording and single-threaded
// submission.
//
// Every registered producer records into its own Recorder on the worker
// pool; no locks are taken while appending. The recorded buffers are then
// merged in registration order, each wrapped in a debug scope named after
// its producer, and the merged buffer is executed on the device. The ring
// buffer advances once per submitted frame, and buffer locks recorded
// during the frame are tagged with its write slot.
package frame

import (
	"errors"
	"fmt"

	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/cmdbuf"
	"github.com/gogpu/gfxcmd/command"
	"github.com/gogpu/gfxcmd/internal/parallel"
	"github.com/gogpu/gfxcmd/ring"
	"github.com/gogpu/gfxcmd/submit"
)

// ErrDuplicateProducer is returned by Add for a name already in use.
var ErrDuplicateProducer = errors.New("frame: duplicate producer")

// Frame owns the producers, their recorders and the submission path.
// Render must not be called concurrently.
type Frame struct {
	cfg  gfxcmd.Config
	pool *parallel.WorkerPool
	ring *ring.Buffer
	exec *submit.Executor

	names     []string
	producers []Producer
	recorders []*Recorder
	merged    *cmdbuf.Buffer

	frames int
}

// New returns a frame submitting to dev with sizing from cfg.
func New(dev submit.Device, cfg gfxcmd.Config) (*Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r, err := ring.New(cfg.RingLength)
	if err != nil {
		return nil, fmt.Errorf("frame: %w", err)
	}
	return &Frame{
		cfg:    cfg,
		pool:   parallel.NewWorkerPool(cfg.Workers),
		ring:   r,
		exec:   submit.NewExecutor(dev, submit.WithScratchCapacity(cfg.ScratchCapacity)),
		merged: cmdbuf.New(command.NewMergePools(cfg, 0)),
	}, nil
}

// Add registers a producer. Producers record in parallel but their buffers
// are merged in the order they were added. The merged buffer is resized to
// hold every producer's records, so Add invalidates the last Merged buffer.
func (f *Frame) Add(name string, p Producer) error {
	for _, n := range f.names {
		if n == name {
			return fmt.Errorf("%w: %q", ErrDuplicateProducer, name)
		}
	}
	f.names = append(f.names, name)
	f.producers = append(f.producers, p)
	f.recorders = append(f.recorders, NewRecorder(name, f.cfg))
	f.merged.Clear()
	f.merged = cmdbuf.New(command.NewMergePools(f.cfg, len(f.recorders)))
	return nil
}

// Render records, merges and submits one frame.
//
// If any producer returns an error nothing is submitted, every recorded
// buffer is discarded and the errors are returned joined. The ring does not
// advance for a discarded frame.
func (f *Frame) Render() error {
	log := gfxcmd.Logger()
	slot := f.ring.WriteIndex()

	errs := make([]error, len(f.producers))
	tasks := make([]func(), len(f.producers))
	for i := range f.producers {
		rec := f.recorders[i]
		p := f.producers[i]
		tasks[i] = func() {
			rec.begin(slot)
			if err := p.Record(rec); err != nil {
				errs[i] = fmt.Errorf("frame: producer %q: %w", rec.name, err)
				return
			}
			rec.finish()
		}
	}
	f.pool.Run(tasks)

	if err := errors.Join(errs...); err != nil {
		for _, rec := range f.recorders {
			rec.discard()
		}
		log.Warn("frame: discarded", "frame", f.frames, "error", err)
		return err
	}

	f.merged.Clear()
	for _, rec := range f.recorders {
		if rec.buf.Len() == 0 {
			continue
		}
		f.merged.BeginScope(rec.name)
		f.merged.AppendBuffer(rec.buf)
		f.merged.EndScope()
	}

	if err := f.exec.Execute(f.merged); err != nil {
		return fmt.Errorf("frame %d: %w", f.frames, err)
	}

	for _, rec := range f.recorders {
		rec.pools.LogStats()
		rec.buf.Clear()
	}
	log.Info("frame: submitted", "frame", f.frames, "slot", slot,
		"producers", len(f.producers), "records", f.merged.Len())

	f.ring.Advance()
	f.frames++
	return nil
}

// Merged returns the buffer submitted by the last Render. It stays valid
// until the next Render.
func (f *Frame) Merged() *cmdbuf.Buffer { return f.merged }

// Ring returns the frame's ring buffer.
func (f *Frame) Ring() *ring.Buffer { return f.ring }

// Executor returns the frame's executor.
func (f *Frame) Executor() *submit.Executor { return f.exec }

// Frames returns the number of submitted frames.
func (f *Frame) Frames() int { return f.frames }

// Close stops the worker pool.
func (f *Frame) Close() {
	f.pool.Close()
}
