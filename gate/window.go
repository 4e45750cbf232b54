// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package gate

import (
	"sync"
	"time"

	"github.com/gogama/netkit"
)

// A Limit specifies the maximum number of requests allowed to start
// per unit time.
type Limit struct {
	MaxRequests int
	Period      time.Duration
}

// A Window lets requests past the gate as long as doing so keeps within
// all of its limits. For example, the following gate holds requests
// back once 10 have started in the last half second, or 15 in the last
// second:
//
//	w := gate.NewWindow(
//		gate.Limit{MaxRequests: 10, Period: 500*time.Millisecond},
//		gate.Limit{MaxRequests: 15, Period: 1*time.Second})
//
// Held requests are let through in no particular order as the windows
// slide.
type Window struct {
	lock   sync.Mutex
	limits []limitQueue
	now    func() time.Time
}

// NewWindow returns a Window enforcing limits. It panics if a limit
// has a non-positive MaxRequests or Period.
func NewWindow(limits ...Limit) *Window {
	w := &Window{
		limits: make([]limitQueue, len(limits)),
		now:    time.Now,
	}
	for i, l := range limits {
		if l.MaxRequests < 1 || l.Period <= 0 {
			panic("netkit/gate: invalid limit")
		}
		w.limits[i] = newLimitQueue(l.Period, l.MaxRequests)
	}
	return w
}

// Control lets r proceed once all the windows have room for it.
func (w *Window) Control(r *netkit.Request, proceed func(done func())) {
	wait := w.reserve()
	if wait == 0 {
		proceed(nil)
		return
	}
	go func() {
		ctx := r.Context()
		timer := time.NewTimer(wait)
		defer timer.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
			if wait = w.reserve(); wait == 0 {
				proceed(nil)
				return
			}
			timer.Reset(wait)
		}
	}()
}

// reserve records a start and returns zero if every window has room,
// or otherwise how long to wait before trying again.
func (w *Window) reserve() time.Duration {
	w.lock.Lock()
	defer w.lock.Unlock()
	now := w.now()
	var wait time.Duration
	for i := range w.limits {
		if d := w.limits[i].expire(now); d > wait {
			wait = d
		}
	}
	if wait > 0 {
		return wait
	}
	for i := range w.limits {
		w.limits[i].add(now)
	}
	return 0
}

// limitQueue is a ring buffer of the start times within one period.
type limitQueue struct {
	period     time.Duration
	a          []time.Time
	start, len int
}

func newLimitQueue(period time.Duration, cap int) limitQueue {
	return limitQueue{
		period: period,
		a:      make([]time.Time, cap),
	}
}

// expire drops the start times which have left the window and returns
// zero if there is room for another, or otherwise the time until the
// oldest one leaves.
func (q *limitQueue) expire(now time.Time) time.Duration {
	cutoff := now.Add(-q.period)
	for q.len > 0 && !cutoff.Before(q.a[q.start]) {
		q.start = (q.start + 1) % len(q.a)
		q.len--
	}
	if q.len < len(q.a) {
		return 0
	}
	return q.a[q.start].Sub(cutoff)
}

func (q *limitQueue) add(t time.Time) {
	q.a[(q.start+q.len)%len(q.a)] = t
	q.len++
}
