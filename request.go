// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/netkit/content"
	"github.com/gogama/netkit/request"
)

// A State is a step of the request lifecycle.
type State int32

const (
	// StateIdle is the state of a request which has not been started.
	StateIdle State = iota
	// StatePreparing covers mock substitution, session resolution and
	// configuration.
	StatePreparing
	// StateAwaitingControl is the state of a request waiting for its
	// endpoint's control gate.
	StateAwaitingControl
	// StateBuilding covers building and rewriting the wire request.
	StateBuilding
	// StateDispatched is the state of a request whose task is with the
	// transport.
	StateDispatched
	// StateParsing covers decoding and response parsing.
	StateParsing
	// StateCompleted is the state of a request whose completion has
	// been delivered, or is being delivered.
	StateCompleted
	// StateCancelled is the state of a request completed with the
	// cancellation error.
	StateCancelled
)

var stateNames = []string{
	"Idle",
	"Preparing",
	"AwaitingControl",
	"Building",
	"Dispatched",
	"Parsing",
	"Completed",
	"Cancelled",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// A MockMode overrides an endpoint's mocking setting for one request.
type MockMode int

const (
	// MockDefault follows the endpoint's mock manager.
	MockDefault MockMode = iota
	// MockOn serves the request from the mock manager.
	MockOn
	// MockOff sends the request to the network.
	MockOff
)

// A StatusRange is a half-open range [Min, Max) of HTTP status codes.
type StatusRange struct {
	Min, Max int
}

// DefaultSuccessCodes is the success range of a request with a zero
// SuccessCodes field.
var DefaultSuccessCodes = StatusRange{Min: 200, Max: 300}

// Contains reports whether code is in the range.
func (sr StatusRange) Contains(code int) bool {
	return code >= sr.Min && code < sr.Max
}

var uidCounter atomic.Uint64

var methods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodConnect: true,
	http.MethodOptions: true,
}

// A Request is a one-shot unit of work: it is configured, started once,
// and completes exactly once.
//
// The exported fields may be set between creation and Start, by the
// caller or by the endpoint's Configurer. Changing them after Start has
// no defined effect on the request.
type Request struct {
	// Method is the HTTP method.
	Method string
	// URL builds the request URL. Its scheme is preset to "https".
	URL request.URLBuilder
	// Header holds the request headers.
	Header http.Header
	// Body is the optional request body.
	Body content.Converter
	// Timeout is the transport timeout. Zero means the client's
	// timeout policy decides.
	Timeout time.Duration
	// Flags is handed to every endpoint hook.
	Flags Flags
	// Session is the transport session. If nil, the endpoint's session
	// provider or DefaultSession is used.
	Session Session
	// Scope is the registry caching the endpoint's session. If nil,
	// the client's registry is used.
	Scope *SessionRegistry
	// MockKey names the stored response substituting for this request.
	// Requests without a key are never mocked or recorded.
	MockKey string
	// Mock overrides the endpoint's mocking setting.
	Mock MockMode
	// SuccessCodes is the range of status codes Begin treats as a
	// success. The zero value means DefaultSuccessCodes.
	SuccessCodes StatusRange
	// Quiet suppresses debug logging of the request.
	Quiet bool
	// Retries is informational only. Requests are never retried.
	Retries int

	client   *Client
	endpoint Endpoint
	hooks    hooks
	uid      uint64
	ctx      context.Context

	started   atomic.Bool
	executing atomic.Bool
	cancelled atomic.Bool
	completed atomic.Bool
	state     atomic.Int32

	mu       sync.Mutex
	task     Task
	cancelFn context.CancelFunc

	exec request.Execution
}

// NewRequest creates a request for ep, which may be nil, using
// DefaultClient.
func NewRequest(ep Endpoint, method string) (*Request, error) {
	return DefaultClient.NewRequest(ep, method)
}

// NewRequest creates a request for ep, which may be nil. An empty method
// means GET. Methods other than GET, POST, PUT, PATCH, DELETE, HEAD,
// CONNECT and OPTIONS are rejected.
func (c *Client) NewRequest(ep Endpoint, method string) (*Request, error) {
	if method == "" {
		method = http.MethodGet
	}
	m := strings.ToUpper(method)
	if !methods[m] {
		return nil, fmt.Errorf("netkit: invalid method %q", method)
	}
	return &Request{
		Method:   m,
		URL:      request.URLBuilder{Scheme: "https"},
		Header:   make(http.Header),
		Flags:    make(Flags),
		client:   c,
		endpoint: ep,
		hooks:    resolveHooks(ep),
		uid:      uidCounter.Add(1),
	}, nil
}

// UID returns the unique identifier of the request. Identifiers
// increase in creation order.
func (r *Request) UID() uint64 {
	return r.uid
}

// Endpoint returns the endpoint the request was created for.
func (r *Request) Endpoint() Endpoint {
	return r.endpoint
}

// Client returns the client the request was created from.
func (r *Request) Client() *Client {
	if r.client == nil {
		return DefaultClient
	}
	return r.client
}

// Context returns the request's context. The returned context is
// always non-nil; it defaults to the background context.
//
// Once the request is started, Context returns the lifecycle context,
// derived from the context set with SetContext, which is cancelled
// when the request is cancelled or completes. Control gates waiting on
// a shared resource should give up when it is done.
func (r *Request) Context() context.Context {
	if r.ctx != nil {
		return r.ctx
	}
	return context.Background()
}

// SetContext sets the context inherited by the wire request and by
// mock loading. It must be called before Start.
func (r *Request) SetContext(ctx context.Context) {
	if ctx == nil {
		panic("netkit: nil context")
	}
	r.ctx = ctx
}

// Started reports whether the request has been started.
func (r *Request) Started() bool {
	return r.started.Load()
}

// Executing reports whether the request has been started and has not
// yet completed.
func (r *Request) Executing() bool {
	return r.executing.Load()
}

// Cancelled reports whether the request has been cancelled.
func (r *Request) Cancelled() bool {
	return r.cancelled.Load()
}

// State returns the lifecycle state of the request.
func (r *Request) State() State {
	return State(r.state.Load())
}

// Execution returns the record of the request's lifecycle. It is
// complete once the request has completed; event handlers may read it
// while the request runs.
func (r *Request) Execution() *request.Execution {
	return &r.exec
}

// Cancel cancels the request. It is safe to call from any goroutine at
// any time. A request cancelled before it is dispatched never reaches
// the network, and one cancelled while its task runs delivers the
// cancellation error whatever the transport returns. Cancelling a
// completed request has no effect.
func (r *Request) Cancel() {
	if r.completed.Load() {
		return
	}
	r.cancelled.Store(true)
	r.mu.Lock()
	t, cancel := r.task, r.cancelFn
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if t != nil {
		t.Cancel()
	}
}

func (r *Request) successCodes() StatusRange {
	if r.SuccessCodes == (StatusRange{}) {
		return DefaultSuccessCodes
	}
	return r.SuccessCodes
}

func (r *Request) setState(s State) {
	r.state.Store(int32(s))
}
