// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package gate

import (
	"github.com/gogama/netkit"
	"golang.org/x/time/rate"
)

// A Rate lets requests past the gate at a steady rate, allowing bursts.
type Rate struct {
	lim *rate.Limiter
}

// NewRate returns a Rate admitting r requests per second on average,
// with bursts of up to burst requests. It panics if burst is less than
// one.
func NewRate(r rate.Limit, burst int) *Rate {
	if burst < 1 {
		panic("netkit/gate: burst must be positive")
	}
	return &Rate{lim: rate.NewLimiter(r, burst)}
}

// Limiter returns the underlying token bucket, so its rate can be
// changed while requests are running.
func (g *Rate) Limiter() *rate.Limiter {
	return g.lim
}

// Control lets r proceed as soon as the token bucket allows.
func (g *Rate) Control(r *netkit.Request, proceed func(done func())) {
	if g.lim.Allow() {
		proceed(nil)
		return
	}
	go func() {
		if err := g.lim.Wait(r.Context()); err != nil {
			return
		}
		proceed(nil)
	}()
}
