// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"sync"
)

// A Queue is the execution context a request delivers its completion
// on.
type Queue interface {
	Dispatch(f func())
}

// QueueFunc is an adapter to allow the use of ordinary functions as
// queues.
type QueueFunc func(f func())

// Dispatch calls q(f).
func (q QueueFunc) Dispatch(f func()) {
	q(f)
}

var (
	// Inline runs functions on the dispatching goroutine. It is used
	// when a request is started with a nil queue.
	Inline Queue = QueueFunc(func(f func()) { f() })

	// Background runs each function on a new goroutine.
	Background Queue = QueueFunc(func(f func()) { go f() })
)

// A SerialQueue runs functions one at a time, in dispatch order, on a
// single goroutine of its own. It plays the part of an application's
// main queue.
type SerialQueue struct {
	mu      sync.Mutex
	pending []func()
	closed  bool
	wake    chan struct{}
	done    chan struct{}
}

// NewSerialQueue starts a serial queue. Close it to stop its goroutine.
func NewSerialQueue() *SerialQueue {
	q := &SerialQueue{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go q.loop()
	return q
}

// Dispatch queues f. Dispatching to a closed queue panics.
func (q *SerialQueue) Dispatch(f func()) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		panic("netkit: dispatch to closed queue")
	}
	q.pending = append(q.pending, f)
	q.mu.Unlock()
	q.signal()
}

// Close runs the functions already queued, then stops the queue's
// goroutine. It must not be called from a function running on q.
func (q *SerialQueue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	q.mu.Unlock()
	q.signal()
	<-q.done
}

func (q *SerialQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *SerialQueue) loop() {
	defer close(q.done)
	for {
		q.mu.Lock()
		fs, closed := q.pending, q.closed
		q.pending = nil
		q.mu.Unlock()
		for _, f := range fs {
			f()
		}
		if len(fs) > 0 {
			continue
		}
		if closed {
			return
		}
		<-q.wake
	}
}
