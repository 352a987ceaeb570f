// Package dispatch provides execution contexts that notification callbacks
// are forwarded onto.
//
// A Context delivers a function synchronously: Send returns only after the
// function has run. Three contexts are provided:
//   - Inline runs the function on the calling goroutine.
//   - Queue runs functions one at a time on a dedicated worker goroutine,
//     in the order they were sent.
//   - MainThread runs functions on the process main thread (see
//     golang.design/x/mainthread), for UI toolkits that require it.
package dispatch

import (
	"errors"
	"sync"

	"golang.design/x/mainthread"
)

// ErrClosed is returned by Send on a Queue that has been closed.
var ErrClosed = errors.New("dispatch: queue closed")

// Context delivers a function and waits for it to complete.
type Context interface {
	Send(fn func()) error
}

// Inline invokes functions directly on the calling goroutine.
type Inline struct{}

// Send runs fn immediately.
func (Inline) Send(fn func()) error {
	fn()
	return nil
}

// Run calls main with the main thread reserved for MainThread. It must be
// called from main.main and returns when main returns.
func Run(main func()) {
	mainthread.Init(main)
}

// MainThread schedules functions on the main thread. The program must have
// been started through Run.
type MainThread struct{}

// Send blocks until fn has run on the main thread.
func (MainThread) Send(fn func()) error {
	mainthread.Call(fn)
	return nil
}

type job struct {
	fn   func()
	done chan struct{}
}

// Queue is a single-worker execution context.
type Queue struct {
	jobs chan job
	quit chan struct{}
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts a queue with the given buffer size.
func NewQueue(buffer int) *Queue {
	if buffer < 0 {
		buffer = 0
	}
	q := &Queue{
		jobs: make(chan job, buffer),
		quit: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case j := <-q.jobs:
			q.exec(j)
		case <-q.quit:
			// drain what was accepted before Close
			for {
				select {
				case j := <-q.jobs:
					q.exec(j)
				default:
					return
				}
			}
		}
	}
}

func (q *Queue) exec(j job) {
	defer close(j.done)
	j.fn()
}

// Send posts fn to the worker and waits for it to finish. Send must not be
// called from a function running on the same queue.
func (q *Queue) Send(fn func()) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrClosed
	}
	j := job{fn: fn, done: make(chan struct{})}
	q.jobs <- j
	q.mu.RUnlock()

	<-j.done
	return nil
}

// Close stops accepting work, runs already queued functions and waits for the
// worker to exit. Close is idempotent.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.quit)
	q.mu.Unlock()

	q.wg.Wait()
	return nil
}
