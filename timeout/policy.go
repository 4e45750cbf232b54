// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"strings"
	"time"

	"github.com/gogama/netkit/request"
)

// A Policy defines a timeout policy which may be plugged into a
// netkit.Client to direct how to set the transport timeout for
// requests that have no timeout of their own.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the wire request described
	// by p. A zero return value means no timeout is set, leaving the
	// decision to the transport.
	Timeout(p *request.Plan) time.Duration
}

// None is a built-in timeout policy which never sets a timeout, so that
// only the transport's own deadlines apply. None is the default policy.
var None Policy = Fixed(0)

// DefaultPolicy is the default timeout policy, used when a client has
// no policy configured.
var DefaultPolicy = None

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that uses the same value for every
// request. The return value is a timeout policy that always returns the
// value d.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (f fixed) Timeout(_ *request.Plan) time.Duration {
	return time.Duration(f)
}

// ByMethod constructs a timeout policy that chooses the timeout based
// on the HTTP method of the request. Method names are matched case
// insensitively. Requests whose method is not in m get the timeout
// chosen by fallback, or no timeout if fallback is nil.
//
// Consider the following timeout policy:
//
// 	p := ByMethod(map[string]time.Duration{
// 		"GET":  2 * time.Second,
// 		"POST": 30 * time.Second,
// 	}, Fixed(10*time.Second))
//
// The policy p gives reads a short timeout, uploads a long one, and
// every other method 10 seconds.
func ByMethod(m map[string]time.Duration, fallback Policy) Policy {
	c := make(map[string]time.Duration, len(m))
	for k, v := range m {
		c[strings.ToUpper(k)] = v
	}
	if fallback == nil {
		fallback = None
	}
	return &byMethod{m: c, fallback: fallback}
}

type byMethod struct {
	m        map[string]time.Duration
	fallback Policy
}

func (p *byMethod) Timeout(plan *request.Plan) time.Duration {
	method := "GET"
	if plan != nil && plan.Method != "" {
		method = strings.ToUpper(plan.Method)
	}
	if d, ok := p.m[method]; ok {
		return d
	}

	return p.fallback.Timeout(plan)
}
