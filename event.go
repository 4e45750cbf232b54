// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to observe the requests
// it runs.
type Event int

const (
	// RequestStarted identifies the event that occurs just before a
	// request's transport task is resumed.
	//
	// RequestStarted only fires when the client has Notifications
	// enabled. When it fires, the request's execution holds the plan
	// that is about to be sent.
	RequestStarted Event = iota
	// RequestEnded identifies the event that occurs when the transport
	// hands back the result of a request's task, before the body is
	// decoded.
	//
	// RequestEnded only fires when the client has Notifications
	// enabled, and always after RequestStarted for the same request.
	// When it fires, the execution's response, body and error fields
	// hold what the transport returned.
	RequestEnded
	// RequestCompleted identifies the event that occurs once per
	// started request, just before its completion is delivered.
	//
	// RequestCompleted fires on every path, including mock
	// substitution and failures before dispatch. When it fires, the
	// execution is final and its end time is set.
	RequestCompleted
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"RequestStarted",
	"RequestEnded",
	"RequestCompleted",
}

// Events returns a slice containing all events which can occur in a
// request lifecycle, in the order in which they would occur.
func Events() []Event {
	return []Event{
		RequestStarted,
		RequestEnded,
		RequestCompleted,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
