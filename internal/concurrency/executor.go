// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across a fixed set of worker goroutines from a
// shared FIFO backlog.

package concurrency

import (
	"errors"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/eapache/queue"
)

// ErrExecutorClosed is returned by Submit after Close.
var ErrExecutorClosed = errors.New("executor closed")

// TaskFunc is a unit of work to execute.
type TaskFunc func()

// Executor manages a pool of worker goroutines.
type Executor struct {
	mu      sync.Mutex
	ready   *sync.Cond
	backlog *queue.Queue
	closed  bool
	wg      sync.WaitGroup

	numWorkers int

	// statistics
	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
}

// NewExecutor starts numWorkers workers. If numWorkers <= 0, defaults to
// runtime.NumCPU().
func NewExecutor(numWorkers int) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		backlog:    queue.New(),
		numWorkers: numWorkers,
	}
	e.ready = sync.NewCond(&e.mu)
	e.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go e.run(i)
	}
	return e
}

// Submit enqueues a task for execution.
func (e *Executor) Submit(task TaskFunc) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	e.totalTasks.Add(1)
	e.backlog.Add(task)
	e.ready.Signal()
	return nil
}

// NumWorkers returns the number of workers.
func (e *Executor) NumWorkers() int {
	return e.numWorkers
}

// Close stops accepting tasks, lets the workers finish the backlog and
// waits for them to exit.
func (e *Executor) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		e.ready.Broadcast()
	}
	e.mu.Unlock()
	e.wg.Wait()
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total, done := e.totalTasks.Load(), e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": done,
		"pending_tasks":   total - done,
		"panics":          e.panics.Load(),
		"num_workers":     int64(e.numWorkers),
	}
}

// next blocks until a task is queued or the executor is closed and drained.
func (e *Executor) next() (TaskFunc, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for e.backlog.Length() == 0 {
		if e.closed {
			return nil, false
		}
		e.ready.Wait()
	}
	return e.backlog.Remove().(TaskFunc), true
}

func (e *Executor) run(id int) {
	defer e.wg.Done()
	for {
		task, ok := e.next()
		if !ok {
			return
		}
		e.execute(id, task)
	}
}

// execute runs the task, keeping the worker alive across panics.
func (e *Executor) execute(id int, task TaskFunc) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			log.Printf("[concurrency] worker %d: task panicked: %v", id, r)
		}
		e.completedTasks.Add(1)
	}()
	task()
}
