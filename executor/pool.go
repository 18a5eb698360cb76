// Package executor provides the non-blocking submission sink the
// resourcegroup admission core uses to start queries in the
// background, adapted from the teacher's bounded worker pool
// (common/async.Pool) so that Submit never blocks the caller on work
// a worker might do.
package executor

import (
	"container/list"
	"context"
	"sync"

	"go.uber.org/atomic"
)

// Job is a unit of work submitted to a Pool.
type Job func(ctx context.Context)

// Submitter is the non-blocking submission contract the admission core
// depends on. Submit must return immediately; rejection is not part of
// this contract (a Pool never rejects — it queues unboundedly and runs
// with a bounded number of workers).
type Submitter interface {
	Submit(job Job)
}

const defaultMaxWorkers = 4

// Pool runs up to MaxWorkers jobs concurrently, queuing the rest.
// Enqueue never blocks: jobs accumulate on an unbounded internal queue
// until a worker is free.
type Pool struct {
	mu         sync.Mutex
	maxWorkers int
	numWorkers int
	stopChan   chan struct{}

	queue *jobQueue

	submitted atomic.Int64
	completed atomic.Int64
}

// Options configures a Pool.
type Options struct {
	// MaxWorkers is the maximum number of jobs run concurrently. A
	// value <= 0 is replaced with defaultMaxWorkers.
	MaxWorkers int
}

// New returns a started Pool.
func New(o Options) *Pool {
	if o.MaxWorkers <= 0 {
		o.MaxWorkers = defaultMaxWorkers
	}
	p := &Pool{
		maxWorkers: o.MaxWorkers,
		queue:      newJobQueue(),
	}
	p.start()
	return p
}

// Submit enqueues job for execution by a worker. It never blocks.
func (p *Pool) Submit(job Job) {
	p.submitted.Inc()
	p.queue.enqueue(job)
}

// Submitted returns the number of jobs ever submitted.
func (p *Pool) Submitted() int64 {
	return p.submitted.Load()
}

// Completed returns the number of jobs that have finished running.
func (p *Pool) Completed() int64 {
	return p.completed.Load()
}

func (p *Pool) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopChan = make(chan struct{})
	for i := 0; i < p.maxWorkers; i++ {
		go p.runWorker(p.stopChan)
	}
	p.numWorkers = p.maxWorkers
}

// Stop signals all workers to exit after their current job, if any.
// It does not wait for queued jobs to drain.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopChan == nil {
		return
	}
	close(p.stopChan)
	p.stopChan = nil
}

func (p *Pool) runWorker(stopChan <-chan struct{}) {
	for {
		job := p.queue.dequeue(stopChan)
		if job == nil {
			return
		}
		job(context.Background())
		p.completed.Inc()
	}
}

// jobQueue is an unbounded FIFO of Jobs, adapted from async.queue: a
// linked list guarded by a mutex, drained through a channel so workers
// can select on it alongside a stop signal.
type jobQueue struct {
	mu             sync.Mutex
	list           *list.List
	enqueueSignal  chan struct{}
	dequeueChannel chan Job
}

func newJobQueue() *jobQueue {
	q := &jobQueue{
		list:           list.New(),
		enqueueSignal:  make(chan struct{}, 1),
		dequeueChannel: make(chan Job),
	}
	go q.run()
	return q
}

func (q *jobQueue) enqueue(job Job) {
	q.mu.Lock()
	q.list.PushBack(job)
	q.mu.Unlock()

	select {
	case q.enqueueSignal <- struct{}{}:
	default:
	}
}

func (q *jobQueue) dequeue(stopChan <-chan struct{}) Job {
	select {
	case <-stopChan:
		return nil
	case job := <-q.dequeueChannel:
		return job
	}
}

func (q *jobQueue) run() {
	for {
		q.mu.Lock()
		front := q.list.Front()
		if front == nil {
			q.mu.Unlock()
			<-q.enqueueSignal
			continue
		}
		q.list.Remove(front)
		q.mu.Unlock()

		q.dequeueChannel <- front.Value.(Job)
	}
}
