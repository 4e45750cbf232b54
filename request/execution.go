// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/netkit/transient"
)

// An Execution records the state of a single request lifecycle.
//
// The lifecycle creates an Execution when a request is started and
// updates it as the lifecycle progresses: the Plan is set once the wire
// request is built, Response, Body and Err once the transport answers,
// and Decoded once the body is decoded. The Execution is handed to
// notification handlers and is available from the request after
// completion.
//
// Handlers may store their own data using SetValue and read it back
// with Value, but should otherwise treat the exported fields as
// read-only.
type Execution struct {
	// UID is the unique identifier of the request being executed.
	UID uint64

	// Plan is the wire-level request. It is nil until the lifecycle
	// has built it, and remains nil if the request was served from a
	// mock or failed before dispatch.
	Plan *Plan

	// Start is the time the lifecycle started.
	Start time.Time

	// End is the time the lifecycle completed. It contains the zero
	// value until the lifecycle has completed.
	End time.Time

	// Mock is true when the response was substituted by a mock
	// manager instead of being fetched from the network.
	Mock bool

	// Response is the HTTP response, if any.
	Response *http.Response

	// Body is the raw response body, if any.
	Body []byte

	// Decoded is the decoded response body. When no decoder matched
	// the response content type, or decoding failed, Decoded holds Body.
	Decoded interface{}

	// DecodeErr is the error returned by the content decoder, if the
	// response body could not be decoded. It does not make the
	// request fail.
	DecodeErr error

	// Err is the error that ended the lifecycle, if any.
	Err error

	data context.Context
}

// StatusCode returns the status code of the HTTP response. If there is
// no HTTP response, 0 is returned.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}

	return e.Response.StatusCode
}

// Header returns the HTTP response headers. If there is no HTTP
// response, the nil header is returned.
//
// Note that a nil return value is always safe for read-only operations,
// since http.Header is a map type.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}

	return e.Response.Header
}

// Duration returns the duration of the execution.
//
// If the execution has not yet started, the duration is zero. If the
// execution has ended, the duration returned is equal to End minus
// Start. Otherwise, it is equal to the current time minus Start.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}

	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err is a timeout.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// Cancelled indicates whether Err is a cancellation.
func (e *Execution) Cancelled() bool {
	return transient.Categorize(e.Err) == transient.Cancelled
}

// SetValue allows handlers to store arbitrary data in the execution.
//
// The key must follow the same rules as the key parameter in
// context.WithValue, namely it:
//
// • it may not be nil;
//
// • it must be comparable;
//
// • it should not be of type string or any other built-in type to avoid
// collisions between different handlers putting data into the same
// execution.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}

	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with this execution for key,
// or nil if there is no value associated with key.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}

	return ctx.Value(key)
}
