// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gogama/netkit/request"
	"github.com/tidwall/gjson"
)

// An Endpoint is a long-lived collaborator describing one logical API
// family. Requests created for an endpoint consult it at fixed points
// of their lifecycle.
//
// Beyond its identifier, an endpoint may implement any subset of the
// capability interfaces SessionProvider, Configurer, Controller,
// URLRequestConfigurer, ResponseParser, MockSupplier and
// ReasonExtractor. The capabilities are resolved once, when a request
// is created.
//
// An endpoint is shared by every request created for it, so its
// methods must be safe for concurrent use by multiple goroutines.
type Endpoint interface {
	// Identifier returns a stable name for the endpoint. Sessions are
	// cached by identifier.
	Identifier() string
}

// Named is an Endpoint with no capabilities beyond its identifier.
type Named string

// Identifier returns n.
func (n Named) Identifier() string {
	return string(n)
}

// Flags is an opaque map set by the caller on a request and handed to
// every endpoint hook.
type Flags map[string]interface{}

// A SessionProvider creates the transport session used by the requests
// of an endpoint. Session is called at most once per identifier and
// session registry, under the registry's lock, so it must not start
// requests itself.
type SessionProvider interface {
	Session(r *Request) (Session, error)
}

// A Configurer prepares a request before it is built, for example by
// setting the URL host or adding headers. An error fails the request
// with the error as it is.
type Configurer interface {
	Configure(r *Request, flags Flags) error
}

// A Controller gates the dispatch of requests.
//
// Control is called once per request. The request waits until proceed
// is called, which may happen from any goroutine at any time, including
// before Control returns. Calls after the first are ignored. The done
// function given to proceed, if not nil, is called exactly once when
// the request completes, so a gate can release whatever slot it
// granted.
//
// A request whose gate never proceeds waits until it is cancelled or
// Client.GateTimeout expires. With no timeout it waits forever.
type Controller interface {
	Control(r *Request, proceed func(done func()))
}

// A URLRequestConfigurer rewrites the wire request after it is built and
// before it is dispatched, for example to sign it. An error fails the
// request with the error as it is, and no network call is made.
type URLRequestConfigurer interface {
	ConfigureURLRequest(p *request.Plan, r *Request, flags Flags) error
}

// An Outcome is the triple delivered to a request's completion.
type Outcome struct {
	// Value is the decoded body, or the raw body bytes when no decoder
	// applied.
	Value interface{}
	// Response is the HTTP response, if any.
	Response *http.Response
	// Err is the error, if any.
	Err error
}

// A Verdict is returned by a ResponseParser.
type Verdict struct {
	outcome Outcome
	pending bool
}

// Ready returns a verdict completing the request with o.
func Ready(o Outcome) Verdict {
	return Verdict{outcome: o}
}

// Pending returns a verdict deferring completion until the parser calls
// the resume function it was given.
func Pending() Verdict {
	return Verdict{pending: true}
}

// IsPending reports whether v defers completion.
func (v Verdict) IsPending() bool {
	return v.pending
}

// Outcome returns the outcome of a ready verdict.
func (v Verdict) Outcome() Outcome {
	return v.outcome
}

// A ResponseParser post-processes the outcome of a request before it is
// delivered. It receives the raw body and the decoded outcome, and
// either returns Ready with a possibly rewritten outcome or returns
// Pending and later calls resume exactly once. The request completes
// only once however the two are combined.
type ResponseParser interface {
	ParseResponse(r *Request, body []byte, o Outcome, resume func(Outcome)) Verdict
}

// A MockManager substitutes stored responses for network responses.
type MockManager interface {
	// MockingEnabled reports whether requests with a mock key should be
	// served by LoadMock. A request may override it with its Mock
	// field.
	MockingEnabled() bool
	// LoadMock returns the stored body and response for key.
	LoadMock(ctx context.Context, key string, u *url.URL) ([]byte, *http.Response, error)
}

// A MockRecorder is a MockManager which can also capture real
// responses for later substitution.
type MockRecorder interface {
	RecordingEnabled() bool
	RecordMock(ctx context.Context, key string, u *url.URL, body []byte, resp *http.Response) error
}

// A MockSupplier is an endpoint whose requests may be served by mocks.
// The manager returned may also implement MockRecorder.
type MockSupplier interface {
	Mocks() MockManager
}

// A ReasonExtractor pulls a human readable reason out of the body of an
// unsuccessful response, for inclusion in an Issue.
type ReasonExtractor interface {
	ExtractReason(body []byte, resp *http.Response) string
}

// ReasonFunc is an adapter to allow the use of ordinary functions as
// reason extractors.
type ReasonFunc func(body []byte, resp *http.Response) string

// ExtractReason calls f(body, resp).
func (f ReasonFunc) ExtractReason(body []byte, resp *http.Response) string {
	return f(body, resp)
}

// JSONReason is a ReasonExtractor which reads the reason from a JSON
// error body. Each element is a gjson path, and the first path yielding
// a non-empty value wins. Endpoints usually embed it:
//
// 	type api struct {
// 		netkit.Named
// 		netkit.JSONReason
// 	}
//
// 	ep := api{"api", netkit.JSONReason{"error.message", "message"}}
type JSONReason []string

// ExtractReason returns the first non-empty value found at one of the
// paths, or the empty string if the body is not JSON.
func (paths JSONReason) ExtractReason(body []byte, _ *http.Response) string {
	if !gjson.ValidBytes(body) {
		return ""
	}
	for _, path := range paths {
		if v := gjson.GetBytes(body, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}

type hooks struct {
	id        string
	session   SessionProvider
	configure Configurer
	control   Controller
	urlReq    URLRequestConfigurer
	parse     ResponseParser
	mocks     MockManager
	recorder  MockRecorder
	reason    ReasonExtractor
}

func resolveHooks(ep Endpoint) hooks {
	var h hooks
	if ep == nil {
		return h
	}
	h.id = ep.Identifier()
	h.session, _ = ep.(SessionProvider)
	h.configure, _ = ep.(Configurer)
	h.control, _ = ep.(Controller)
	h.urlReq, _ = ep.(URLRequestConfigurer)
	h.parse, _ = ep.(ResponseParser)
	h.reason, _ = ep.(ReasonExtractor)
	if ms, ok := ep.(MockSupplier); ok {
		h.mocks = ms.Mocks()
		h.recorder, _ = h.mocks.(MockRecorder)
	}
	return h
}
