// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package gate

import (
	"github.com/gogama/netkit"
	"golang.org/x/sync/semaphore"
)

// A Limiter lets at most a fixed number of requests past the gate
// until they complete.
type Limiter struct {
	sem *semaphore.Weighted
}

// NewLimiter returns a Limiter admitting n concurrent requests. It
// panics if n is less than one.
func NewLimiter(n int64) *Limiter {
	if n < 1 {
		panic("netkit/gate: limit must be positive")
	}
	return &Limiter{sem: semaphore.NewWeighted(n)}
}

// Control lets r proceed once a place is free. The place is held until
// r completes.
func (l *Limiter) Control(r *netkit.Request, proceed func(done func())) {
	release := func() { l.sem.Release(1) }
	if l.sem.TryAcquire(1) {
		proceed(release)
		return
	}
	go func() {
		if err := l.sem.Acquire(r.Context(), 1); err != nil {
			return
		}
		proceed(release)
	}()
}
