// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package gate

import (
	"context"
	"sync"

	"github.com/gogama/netkit"
)

// A Chain is a gate made of other gates, passed in order. The places
// held in earlier gates are given back if the request is cancelled
// while waiting at a later one.
type Chain []netkit.Controller

// Control passes r through each gate in turn, then lets it proceed.
func (c Chain) Control(r *netkit.Request, proceed func(done func())) {
	h := &held{}
	stop := context.AfterFunc(r.Context(), h.release)
	c.step(0, r, h, func() {
		stop()
		proceed(h.release)
	})
}

func (c Chain) step(i int, r *netkit.Request, h *held, last func()) {
	if i == len(c) {
		last()
		return
	}
	var once sync.Once
	c[i].Control(r, func(done func()) {
		once.Do(func() {
			h.add(done)
			c.step(i+1, r, h, last)
		})
	})
}

// held collects the done functions of the gates passed so far.
type held struct {
	mu       sync.Mutex
	dones    []func()
	released bool
}

func (h *held) add(done func()) {
	if done == nil {
		return
	}
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		done()
		return
	}
	h.dones = append(h.dones, done)
	h.mu.Unlock()
}

// release calls the collected done functions in reverse order. Only
// the first call has any effect.
func (h *held) release() {
	h.mu.Lock()
	if h.released {
		h.mu.Unlock()
		return
	}
	h.released = true
	dones := h.dones
	h.dones = nil
	h.mu.Unlock()
	for i := len(dones) - 1; i >= 0; i-- {
		dones[i]()
	}
}
