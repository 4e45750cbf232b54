// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "netkit/request: nil context"
	nilURLMsg = "netkit/request: nil URL"
)

// A Plan is the materialised, wire-level form of a netkit request: the
// method, URL, headers, and fully encoded body that will be handed to
// a transport session.
//
// The request lifecycle builds a Plan from the request's URL builder,
// headers, and body converter after the endpoint has configured the
// request. Endpoints implementing URL request configuration receive the
// Plan and may rewrite it (for example to add signing headers) before it
// is dispatched.
//
// Like the http.Request structure, a Plan has a context which is
// inherited by the transport request and can be used to cancel the
// in-flight exchange.
type Plan struct {
	// Method specifies the HTTP method (GET, POST, PUT, etc.).
	// An empty string means GET.
	Method string

	// URL specifies the URL to access. It is never nil on a Plan
	// produced by NewPlan.
	URL *url.URL

	// Header contains the request header fields to be sent.
	Header http.Header

	// Body is the encoded request body to be sent. A nil or empty body
	// indicates no request body should be sent.
	Body []byte

	// Timeout is the overall timeout the transport should apply to the
	// exchange. Zero means the transport's own policy applies.
	Timeout time.Duration

	// Close stipulates whether to close the connection after sending
	// the request and reading the response.
	Close bool

	// Host optionally overrides the Host header to send. If empty, the
	// value of URL.Host will be sent.
	Host string

	// ctx is inherited by the transport request. It should only be
	// modified by copying the whole Plan using WithContext.
	ctx context.Context
}

// NewPlan wraps NewPlanWithContext using the background context.
func NewPlan(method string, u *url.URL, body []byte) (*Plan, error) {
	return NewPlanWithContext(context.Background(), method, u, body)
}

// NewPlanWithContext returns a new Plan given a method, URL, and
// optional encoded body.
//
// An empty method means GET. The URL is copied, so later changes to u
// do not affect the plan.
func NewPlanWithContext(ctx context.Context, method string, u *url.URL, body []byte) (*Plan, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if u == nil {
		return nil, errors.New(nilURLMsg)
	}
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("netkit/request: invalid method %q", method)
	}
	u2 := new(url.URL)
	*u2 = *u
	u2.Host = removeEmptyPort(u2.Host)
	return &Plan{
		ctx:    ctx,
		Method: method,
		URL:    u2,
		Header: make(http.Header),
		Body:   body,
		Host:   u2.Host,
	}, nil
}

// Context returns the plan's context. The returned context is always
// non-nil; it defaults to the background context.
func (p *Plan) Context() context.Context {
	if p.ctx != nil {
		return p.ctx
	}
	return context.Background()
}

// WithContext returns a shallow copy of p with its context changed to
// ctx, which must be non-nil.
func (p *Plan) WithContext(ctx context.Context) *Plan {
	if ctx == nil {
		panic(nilCtxMsg)
	}
	p2 := new(Plan)
	*p2 = *p
	p2.ctx = ctx
	return p2
}

// SetBody replaces the plan body and sets the Content-Type and
// Content-Length headers to match. An empty mimeType leaves the
// Content-Type header untouched.
func (p *Plan) SetBody(mimeType string, body []byte) {
	p.Body = body
	if mimeType != "" {
		p.Header.Set("Content-Type", mimeType)
	}
	p.Header.Set("Content-Length", strconv.Itoa(len(body)))
}

// AddCookie adds a cookie to the plan. Per RFC 6265 section 5.4,
// AddCookie does not attach more than one Cookie header field. That
// means all cookies, if any, are written into the same line,
// separated by semicolons.
func (p *Plan) AddCookie(c *http.Cookie) {
	c2 := &http.Cookie{Name: c.Name, Value: c.Value}
	s := c2.String()
	if h := p.Header.Get("Cookie"); h != "" {
		p.Header.Set("Cookie", h+"; "+s)
	} else {
		p.Header.Set("Cookie", s)
	}
}

// SetBasicAuth sets the plan's Authorization header to use HTTP Basic
// Authentication with the provided username and password.
func (p *Plan) SetBasicAuth(username, password string) {
	p.Header.Set("Authorization", "Basic "+basicAuth(username, password))
}

// ToRequest creates an HTTP request corresponding to the plan. The
// context of the new request is set to ctx, which may not be nil.
//
// The Content-Length header, if present, is not copied into the header
// map of the HTTP request since net/http derives it from the body.
func (p *Plan) ToRequest(ctx context.Context) *http.Request {
	r := template.WithContext(ctx)
	r.Method = p.Method
	r.URL = p.URL
	r.Header = p.Header
	if p.Header.Get("Content-Length") != "" {
		r.Header = p.Header.Clone()
		r.Header.Del("Content-Length")
	}
	if len(p.Body) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(p.Body))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(p.Body)), nil
		}
		r.ContentLength = int64(len(p.Body))
	}
	r.Close = p.Close
	r.Host = p.Host
	return r
}

// basicAuth is lifted verbatim from net/http/client.go.
//
// See 2 (end of page 4) https://www.ietf.org/rfc/rfc2617.txt
// "To receive authorization, the client sends the userid and password,
// separated by a single colon (":") character, within a base64
// encoded string in the credentials."
// It is not meant to be urlencoded.
func basicAuth(username, password string) string {
	auth := username + ":" + password
	return base64.StdEncoding.EncodeToString([]byte(auth))
}

func validMethod(method string) bool {
	/*
	     Method         = "OPTIONS"                ; Section 9.2
	                    | "GET"                    ; Section 9.3
	                    | "HEAD"                   ; Section 9.4
	                    | "POST"                   ; Section 9.5
	                    | "PUT"                    ; Section 9.6
	                    | "DELETE"                 ; Section 9.7
	                    | "TRACE"                  ; Section 9.8
	                    | "CONNECT"                ; Section 9.9
	                    | extension-method
	   extension-method = token
	     token          = 1*<any CHAR except CTLs or separators>

	   We don't need to check for length more than 1 because we always
	   interpret the empty string as "GET".
	*/
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !isTokenRune(r)
}

// isTokenRune is lifted verbatim from x/net/http/httpguts/httplex.go
// (but converted to non-exported). It classifies a rune as being valid
// for a token as defined in https://tools.ietf.org/html/rfc7230#section-3.2.6
func isTokenRune(r rune) bool {
	i := int(r)
	return i < len(isTokenTable) && isTokenTable[i]
}

var isTokenTable = [127]bool{
	'!':  true,
	'#':  true,
	'$':  true,
	'%':  true,
	'&':  true,
	'\'': true,
	'*':  true,
	'+':  true,
	'-':  true,
	'.':  true,
	'0':  true,
	'1':  true,
	'2':  true,
	'3':  true,
	'4':  true,
	'5':  true,
	'6':  true,
	'7':  true,
	'8':  true,
	'9':  true,
	'A':  true,
	'B':  true,
	'C':  true,
	'D':  true,
	'E':  true,
	'F':  true,
	'G':  true,
	'H':  true,
	'I':  true,
	'J':  true,
	'K':  true,
	'L':  true,
	'M':  true,
	'N':  true,
	'O':  true,
	'P':  true,
	'Q':  true,
	'R':  true,
	'S':  true,
	'T':  true,
	'U':  true,
	'W':  true,
	'V':  true,
	'X':  true,
	'Y':  true,
	'Z':  true,
	'^':  true,
	'_':  true,
	'`':  true,
	'a':  true,
	'b':  true,
	'c':  true,
	'd':  true,
	'e':  true,
	'f':  true,
	'g':  true,
	'h':  true,
	'i':  true,
	'j':  true,
	'k':  true,
	'l':  true,
	'm':  true,
	'n':  true,
	'o':  true,
	'p':  true,
	'q':  true,
	'r':  true,
	's':  true,
	't':  true,
	'u':  true,
	'v':  true,
	'w':  true,
	'x':  true,
	'y':  true,
	'z':  true,
	'|':  true,
	'~':  true,
}

