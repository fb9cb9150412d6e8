// Copyright Mia srl
// SPDX-License-Identifier: AGPL-3.0-only or Commercial

package queue

import (
	"context"
	"sync"
	"time"

	"github.com/mia-platform/hooklog/internal/logger"
)

const (
	loggerName = "hooklog:queue"

	// DefaultDelay can be returned by a Job to wait the queue minimum spacing before the next job.
	DefaultDelay time.Duration = -1
)

// Job is a unit of deferred work. It returns how long the queue must wait before running the
// next job. Jobs are expected to handle their own failures and turn them into a delay.
type Job func(ctx context.Context) time.Duration

// Stats is a snapshot of the queue counters.
type Stats struct {
	Pushed    int  `json:"pushed"`
	Completed int  `json:"completed"`
	Recovered int  `json:"recovered"`
	Pending   int  `json:"pending"`
	Busy      bool `json:"busy"`
}

// Queue is a multi-producer, single-consumer FIFO of jobs. At most one job is in flight at any
// time and the worker goroutine only exists while there is something to run.
type Queue struct {
	ctx        context.Context
	minSpacing time.Duration

	lock      sync.Mutex
	pending   []Job
	busy      bool
	idle      chan struct{}
	pushed    int
	completed int
	recovered int
}

// New returns an empty queue. ctx bounds the lifetime of the worker sleeps and is handed to
// every job; its logger receives the queue diagnostics.
func New(ctx context.Context, minSpacing time.Duration) *Queue {
	return &Queue{
		ctx:        ctx,
		minSpacing: minSpacing,
	}
}

// MinSpacing returns the base interval between two dispatches.
func (q *Queue) MinSpacing() time.Duration {
	return q.minSpacing
}

// Push enqueues job and returns immediately, starting the worker if none is running.
func (q *Queue) Push(job Job) {
	q.lock.Lock()
	defer q.lock.Unlock()

	q.pending = append(q.pending, job)
	q.pushed++
	if q.busy {
		return
	}

	q.busy = true
	q.idle = make(chan struct{})
	go q.process(q.idle)
}

// Len returns the number of jobs waiting to run.
func (q *Queue) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return len(q.pending)
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.lock.Lock()
	defer q.lock.Unlock()

	return Stats{
		Pushed:    q.pushed,
		Completed: q.completed,
		Recovered: q.recovered,
		Pending:   len(q.pending),
		Busy:      q.busy,
	}
}

// Wait blocks until the worker has nothing left to run or ctx is done.
func (q *Queue) Wait(ctx context.Context) error {
	q.lock.Lock()
	if !q.busy {
		q.lock.Unlock()
		return nil
	}
	idle := q.idle
	q.lock.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// process is the worker loop: it runs the head job, sleeps the delay it returned and repeats
// until the queue is empty.
func (q *Queue) process(idle chan struct{}) {
	log := logger.Named(q.ctx, loggerName)
	log.Trace("queue worker started")

	for {
		job, ok := q.next(idle)
		if !ok {
			log.Trace("queue worker stopped")
			return
		}

		delay := q.run(log, job)
		if delay <= 0 {
			continue
		}

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-q.ctx.Done():
			timer.Stop()
		}
	}
}

// next pops the head job. When the queue is empty it clears the busy flag and signals the
// waiters in the same critical section, so a concurrent Push always starts a new worker.
func (q *Queue) next(idle chan struct{}) (Job, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if len(q.pending) == 0 {
		q.busy = false
		close(idle)
		return nil, false
	}

	job := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return job, true
}

// run invokes job and never lets a panic escape the worker loop.
func (q *Queue) run(log logger.Logger, job Job) (delay time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("delivery job panicked", "panic", r)
			q.lock.Lock()
			q.recovered++
			q.lock.Unlock()
			delay = q.minSpacing
		}
	}()

	delay = job(q.ctx)
	if delay < 0 {
		delay = q.minSpacing
	}

	q.lock.Lock()
	q.completed++
	q.lock.Unlock()

	log.Trace("delivery job completed", "delay", delay)
	return delay
}
