// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

// A HandlerGroup is a group of event handler chains which can be
// installed in a Client.
type HandlerGroup struct {
	handlers [][]Handler
}

// PushBack adds an event handler to the back of the event handler chain
// for a specific event type.
func (g *HandlerGroup) PushBack(evt Event, h Handler) {
	if h == nil {
		panic("netkit: nil handler")
	}

	if g.handlers == nil {
		g.handlers = make([][]Handler, numEvents)
	}

	g.handlers[evt] = append(g.handlers[evt], h)
}

func (g *HandlerGroup) run(evt Event, r *Request) {
	i := int(evt)
	if i < len(g.handlers) {
		run(g.handlers[i], evt, r)
	}
}

func run(chain []Handler, evt Event, r *Request) {
	for _, h := range chain {
		h.Handle(evt, r)
	}
}

// A Handler handles the occurrence of an event during a request
// lifecycle. The request's Execution describes its progress.
//
// Handlers run on lifecycle and transport goroutines, so a handler
// installed in a shared client must be safe for concurrent use.
type Handler interface {
	Handle(Event, *Request)
}

// The HandlerFunc type is an adapter to allow the use of ordinary
// functions as event handlers. If f is a function with appropriate
// signature, then HandlerFunc(f) is a Handler that calls f.
type HandlerFunc func(Event, *Request)

// Handle calls f(evt, r).
func (f HandlerFunc) Handle(evt Event, r *Request) {
	f(evt, r)
}
