package frame

import (
	"github.com/gogpu/gfxcmd"
	"github.com/gogpu/gfxcmd/cmdbuf"
	"github.com/gogpu/gfxcmd/command"
)

// Producer records GPU work for one frame. Record runs on a worker
// goroutine and must only touch the recorder it is given.
type Producer interface {
	Record(rec *Recorder) error
}

// ProducerFunc adapts a function to the Producer interface.
type ProducerFunc func(rec *Recorder) error

// Record calls f(rec).
func (f ProducerFunc) Record(rec *Recorder) error { return f(rec) }

// Recorder is one producer's private recording state: its own pools,
// command buffer and ledger. Recorders persist across frames so their
// pools and slices are reused.
type Recorder struct {
	name   string
	pools  *command.Pools
	buf    *cmdbuf.Buffer
	ledger *cmdbuf.Ledger
	slot   uint32
}

// NewRecorder returns a recorder with pools sized from cfg.
func NewRecorder(name string, cfg gfxcmd.Config) *Recorder {
	pools := command.NewPools(cfg)
	return &Recorder{
		name:   name,
		pools:  pools,
		buf:    cmdbuf.New(pools),
		ledger: cmdbuf.NewLedger(),
	}
}

// Name returns the producer name the recorder belongs to.
func (r *Recorder) Name() string { return r.name }

// Buffer returns the command buffer to append to.
func (r *Recorder) Buffer() *cmdbuf.Buffer { return r.buf }

// Ledger returns the ledger of pending locks and transitions.
func (r *Recorder) Ledger() *cmdbuf.Ledger { return r.ledger }

// Slot returns the ring slot written this frame.
func (r *Recorder) Slot() uint32 { return r.slot }

// Lock adds a buffer lock for the current ring slot to the ledger.
func (r *Recorder) Lock(buf command.BufferID, rng command.Range, dir command.SyncDirection) {
	r.ledger.Lock(command.BufferLock{Buffer: buf, Range: rng, Direction: dir, Slot: r.slot})
}

// Barrier flushes the pending ledger entries into a MemoryBarrier record.
// Work recorded after it observes the locked writes.
func (r *Recorder) Barrier() bool {
	return r.ledger.Flush(r.buf)
}

func (r *Recorder) begin(slot uint32) {
	r.slot = slot
	r.buf.Clear()
	r.ledger.Reset()
}

// finish flushes entries the producer left pending.
func (r *Recorder) finish() {
	r.ledger.Flush(r.buf)
}

func (r *Recorder) discard() {
	r.ledger.Reset()
	r.buf.Clear()
}
