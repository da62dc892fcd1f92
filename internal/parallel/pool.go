// Package parallel runs recording tasks on a fixed set of goroutines.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs batches of tasks on a fixed set of worker goroutines.
//
// Each worker owns a queue; a worker whose queue is empty steals from the
// others, so a slow producer does not hold back the rest of the batch.
// A panic inside a task is captured and re-raised on the goroutine that
// called Run once the whole batch has finished.
//
// WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int
	queues  []chan func()

	// mu is held shared while Run queues a batch and exclusively while
	// Close stops the workers, so no task is queued after a worker exits.
	mu      sync.RWMutex
	done    chan struct{}
	wg      sync.WaitGroup
	running atomic.Bool
}

// NewWorkerPool starts a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	queueSize := max(workers*4, 8)

	p := &WorkerPool{
		workers: workers,
		queues:  make([]chan func(), workers),
		done:    make(chan struct{}),
	}
	for i := range workers {
		p.queues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()
	own := p.queues[id]
	for {
		select {
		case <-p.done:
			drain(own)
			return
		case task := <-own:
			task()
		default:
			if task := p.steal(id); task != nil {
				task()
				continue
			}
			select {
			case <-p.done:
				drain(own)
				return
			case task := <-own:
				task()
			}
		}
	}
}

func drain(q chan func()) {
	for {
		select {
		case task := <-q:
			task()
		default:
			return
		}
	}
}

func (p *WorkerPool) steal(id int) func() {
	for i := range p.workers {
		if i == id {
			continue
		}
		select {
		case task := <-p.queues[i]:
			return task
		default:
		}
	}
	return nil
}

// Run executes every task and waits for all of them. Task i is queued on
// worker i mod Workers. If any task panicked, Run panics with the value of
// the lowest-indexed one after the batch completes. On a closed pool the
// tasks run on the calling goroutine. A task must not call Close on its own
// pool.
func (p *WorkerPool) Run(tasks []func()) {
	if len(tasks) == 0 {
		return
	}
	panics := make([]any, len(tasks))

	p.mu.RLock()
	if !p.running.Load() {
		p.mu.RUnlock()
		for i, task := range tasks {
			runTask(task, &panics[i], nil)
		}
	} else {
		var wg sync.WaitGroup
		wg.Add(len(tasks))
		for i, task := range tasks {
			p.queues[i%p.workers] <- func() { runTask(task, &panics[i], &wg) }
		}
		p.mu.RUnlock()
		wg.Wait()
	}

	for _, v := range panics {
		if v != nil {
			panic(v)
		}
	}
}

func runTask(task func(), slot *any, wg *sync.WaitGroup) {
	defer func() {
		if r := recover(); r != nil {
			*slot = r
		}
		if wg != nil {
			wg.Done()
		}
	}()
	task()
}

// Close stops the pool after the queued tasks have run. A Run racing with
// Close either queues its whole batch before the workers stop or runs it
// on the calling goroutine. Close is safe to call multiple times.
func (p *WorkerPool) Close() {
	p.mu.Lock()
	if !p.running.CompareAndSwap(true, false) {
		p.mu.Unlock()
		return
	}
	close(p.done)
	p.mu.Unlock()
	p.wg.Wait()
}

// Workers returns the number of workers.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool accepts work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
