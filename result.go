// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"fmt"
	"net/http"
	"reflect"
)

// A Kind tells the three outcomes of a Result apart.
type Kind int

const (
	// KindSuccess is a response in the success range, carrying a value.
	KindSuccess Kind = iota
	// KindIssue is a response outside the success range.
	KindIssue
	// KindFailure is an error, with or without a response.
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindIssue:
		return "Issue"
	case KindFailure:
		return "Failure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// An Issue describes a response whose status code is outside the
// request's success range.
type Issue struct {
	// Response is the HTTP response.
	Response *http.Response
	// Body is the raw response body.
	Body []byte
	// Reason is the reason extracted from the body by the endpoint's
	// ReasonExtractor, if any.
	Reason string
}

// StatusCode returns the status code of the response.
func (i *Issue) StatusCode() int {
	if i.Response == nil {
		return 0
	}
	return i.Response.StatusCode
}

func (i *Issue) Error() string {
	code := i.StatusCode()
	msg := fmt.Sprintf("netkit: HTTP %d %s", code, http.StatusText(code))
	if i.Reason != "" {
		msg += ": " + i.Reason
	}
	return msg
}

// A Result is the outcome of a request begun with Begin: a value of
// type T, an Issue, or a failure. Results are immutable.
type Result[T any] struct {
	kind  Kind
	value T
	issue *Issue
	err   error
}

// Success returns a successful result holding v.
func Success[T any](v T) Result[T] {
	return Result[T]{kind: KindSuccess, value: v}
}

// Issued returns a result holding the issue i.
func Issued[T any](i *Issue) Result[T] {
	return Result[T]{kind: KindIssue, issue: i}
}

// Failure returns a failed result holding err.
func Failure[T any](err error) Result[T] {
	return Result[T]{kind: KindFailure, err: err}
}

// Kind returns the kind of the result.
func (r Result[T]) Kind() Kind {
	return r.kind
}

// Value returns the value of a successful result.
func (r Result[T]) Value() (T, bool) {
	return r.value, r.kind == KindSuccess
}

// Issue returns the issue of an issue result.
func (r Result[T]) Issue() (*Issue, bool) {
	return r.issue, r.kind == KindIssue
}

// Err returns nil for a successful result, the issue for an issue
// result, and the error for a failed one.
func (r Result[T]) Err() error {
	switch r.kind {
	case KindIssue:
		return r.issue
	case KindFailure:
		return r.err
	default:
		return nil
	}
}

// Get returns the value and Err.
func (r Result[T]) Get() (T, error) {
	return r.value, r.Err()
}

// Map applies f to the value of a successful result. Other results pass
// through unchanged.
func Map[T, U any](r Result[T], f func(T) U) Result[U] {
	if r.kind == KindSuccess {
		return Success(f(r.value))
	}
	return Result[U]{kind: r.kind, issue: r.issue, err: r.err}
}

// FlatMap applies f to the value of a successful result and returns the
// result of f. Other results pass through unchanged.
func FlatMap[T, U any](r Result[T], f func(T) Result[U]) Result[U] {
	if r.kind == KindSuccess {
		return f(r.value)
	}
	return Result[U]{kind: r.kind, issue: r.issue, err: r.err}
}

// Begin starts r and delivers its outcome to f, on q, as a Result.
//
// When there is a response, its status code decides: inside the
// request's success range the result is a success holding the decoded
// value, which must be a T (otherwise the result is a failure with a
// *TypeError), and outside it the result is an Issue whose reason
// comes from the endpoint's ReasonExtractor. An empty body yields the
// zero T. Without a response, the result is a failure holding the
// error.
//
// A response takes precedence over an error delivered with it. A 2xx
// response whose body could not be read completely is therefore a
// success holding the zero T; the read error is still available from
// the request's Execution.
//
// Begin panics if the request has already been started.
func Begin[T any](r *Request, q Queue, f func(Result[T])) {
	if f == nil {
		panic("netkit: nil result function")
	}
	r.Start(q, func(value interface{}, resp *http.Response, err error) {
		f(classify[T](r, value, resp, err))
	})
}

func classify[T any](r *Request, value interface{}, resp *http.Response, err error) Result[T] {
	if resp == nil && err != nil {
		return Failure[T](err)
	}
	if resp != nil && !r.successCodes().Contains(resp.StatusCode) {
		body := r.exec.Body
		var reason string
		if x := r.hooks.reason; x != nil {
			reason = x.ExtractReason(body, resp)
		}
		return Issued[T](&Issue{Response: resp, Body: body, Reason: reason})
	}
	if value == nil {
		var zero T
		return Success(zero)
	}
	if v, ok := value.(T); ok {
		return Success(v)
	}
	return Failure[T](&TypeError{Type: reflect.TypeOf((*T)(nil)).Elem(), Value: value})
}
