package worker

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

// Task is a function that represents a background job
type Task func(ctx context.Context) error

// Pool runs submitted tasks on a fixed set of workers. Failures are logged
// and swallowed; nothing on the submit side ever blocks on a task.
type Pool struct {
	taskQueue chan Task
	wg        sync.WaitGroup
	isClosing atomic.Bool
	dropped   atomic.Uint64
}

func NewPool(size, queueDepth int) *Pool {
	if size < 1 {
		size = 1
	}
	if queueDepth < 1 {
		queueDepth = 256
	}
	p := &Pool{
		taskQueue: make(chan Task, queueDepth),
	}

	// Start the workers
	for range size {
		p.wg.Add(1)
		go p.startWorker()
	}

	return p
}

func (p *Pool) startWorker() {
	defer p.wg.Done()
	for task := range p.taskQueue {
		if err := task(context.Background()); err != nil {
			log.Printf("Worker task failed: %v", err)
		}
	}
}

// Submit enqueues a task. A full queue drops the task rather than blocking
// the caller.
func (p *Pool) Submit(t Task) {
	if p.isClosing.Load() {
		log.Println("Warning: task submitted during shutdown, dropping.")
		return
	}
	select {
	case p.taskQueue <- t:
	default:
		p.dropped.Add(1)
		log.Printf("Task queue full, dropping task (%d dropped so far)", p.dropped.Load())
	}
}

// Dropped reports how many tasks were discarded because the queue was full.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}

// Shutdown closes the queue and waits for workers to finish
func (p *Pool) Shutdown() {
	p.isClosing.Store(true)
	close(p.taskQueue) // Stop accepting new tasks
	p.wg.Wait()        // Wait for all active workers to finish tasks
}
