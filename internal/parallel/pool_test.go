package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestWorkerPool_Create(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	if pool.Workers() != 4 {
		t.Errorf("Workers() = %d, want 4", pool.Workers())
	}
	if !pool.IsRunning() {
		t.Error("Pool should be running after creation")
	}
}

func TestWorkerPool_CreateDefaultWorkers(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewWorkerPool(n)
		if pool.Workers() != runtime.GOMAXPROCS(0) {
			t.Errorf("NewWorkerPool(%d).Workers() = %d, want GOMAXPROCS", n, pool.Workers())
		}
		pool.Close()
	}
}

func TestWorkerPool_Run(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	results := make([]int, 100)
	tasks := make([]func(), len(results))
	for i := range tasks {
		tasks[i] = func() { results[i] = i * i }
	}
	pool.Run(tasks)

	for i, v := range results {
		if v != i*i {
			t.Fatalf("results[%d] = %d, want %d", i, v, i*i)
		}
	}
}

func TestWorkerPool_RunUnevenLoad(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Close()

	var done atomic.Int32
	tasks := []func(){
		func() { time.Sleep(20 * time.Millisecond); done.Add(1) },
		func() { done.Add(1) },
		func() { done.Add(1) },
		func() { done.Add(1) },
	}
	pool.Run(tasks)

	if done.Load() != int32(len(tasks)) {
		t.Errorf("completed %d tasks, want %d", done.Load(), len(tasks))
	}
}

func TestWorkerPool_RunReraisesPanic(t *testing.T) {
	pool := NewWorkerPool(3)
	defer pool.Close()

	var ran atomic.Int32
	tasks := []func(){
		func() { ran.Add(1) },
		func() { panic("second") },
		func() { ran.Add(1) },
		func() { panic("fourth") },
	}

	defer func() {
		r := recover()
		if r != "second" {
			t.Errorf("recovered %v, want %q", r, "second")
		}
		if ran.Load() != 2 {
			t.Errorf("%d healthy tasks ran, want 2", ran.Load())
		}
	}()
	pool.Run(tasks)
	t.Error("Run did not panic")
}

func TestWorkerPool_RunAfterClose(t *testing.T) {
	pool := NewWorkerPool(2)
	pool.Close()
	pool.Close()

	if pool.IsRunning() {
		t.Error("IsRunning() after Close")
	}
	var n atomic.Int32
	pool.Run([]func(){func() { n.Add(1) }, func() { n.Add(1) }})
	if n.Load() != 2 {
		t.Errorf("ran %d tasks on closed pool, want 2", n.Load())
	}
}

func TestWorkerPool_RunRacingClose(t *testing.T) {
	for range 50 {
		pool := NewWorkerPool(2)

		const batches, perBatch = 8, 32
		var ran atomic.Int32
		var wg sync.WaitGroup
		wg.Add(batches)
		for range batches {
			go func() {
				defer wg.Done()
				tasks := make([]func(), perBatch)
				for i := range tasks {
					tasks[i] = func() { ran.Add(1) }
				}
				pool.Run(tasks)
			}()
		}
		pool.Close()

		finished := make(chan struct{})
		go func() {
			wg.Wait()
			close(finished)
		}()
		select {
		case <-finished:
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return after Close")
		}
		if got := ran.Load(); got != batches*perBatch {
			t.Fatalf("ran %d tasks, want %d", got, batches*perBatch)
		}
	}
}

func TestWorkerPool_RunEmpty(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Close()
	pool.Run(nil)
}
