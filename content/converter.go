// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"net/http"
	"sync"
)

// A Converter holds a value destined for a request body and knows how
// to serialise it.
//
// Encode must be idempotent: once it has been called, later calls
// return byte-identical output (and the same error). The converters in
// this package memoise the first encoding to satisfy this.
type Converter interface {
	// MimeType returns the MIME type of the encoded value, including any
	// parameters, for use as a Content-Type header value.
	MimeType() string
	// Headers returns extra headers describing the value. They are
	// written as part headers when the converter is a multipart child
	// and ignored otherwise.
	Headers() http.Header
	// Encode returns the wire representation of the value.
	Encode() ([]byte, error)
}

// A Decoder converts a response body into a typed value. Parameter
// params holds the lower-cased media type parameters of the response
// Content-Type, for example "charset" or "boundary".
type Decoder func(body []byte, params map[string]string) (interface{}, error)

type memo struct {
	once sync.Once
	b    []byte
	err  error
}

func (m *memo) do(f func() ([]byte, error)) ([]byte, error) {
	m.once.Do(func() {
		m.b, m.err = f()
	})
	return m.b, m.err
}

type partHeader struct {
	mu sync.Mutex
	h  http.Header
}

// Headers returns the part headers, which callers may modify before
// the converter is encoded.
func (p *partHeader) Headers() http.Header {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.h == nil {
		p.h = make(http.Header)
	}
	return p.h
}
