// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package mock

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned by stores which have no record for a key.
var ErrNotFound = errors.New("netkit/mock: no record for key")

// ErrReadOnly is returned by stores which cannot save records.
var ErrReadOnly = errors.New("netkit/mock: store is read-only")

// A Record is a stored response.
type Record struct {
	// URL is the URL of the request the response was recorded for.
	URL string `json:"url"`
	// StatusCode is the HTTP status code. Zero means 200.
	StatusCode int `json:"status"`
	// Header is the response header.
	Header http.Header `json:"header,omitempty"`
	// Body is the response body.
	Body []byte `json:"body,omitempty"`
	// SavedAt is the time the record was saved.
	SavedAt time.Time `json:"saved_at"`
}

// NewRecord captures a response received for u.
func NewRecord(u *url.URL, body []byte, resp *http.Response) *Record {
	rec := &Record{
		StatusCode: http.StatusOK,
		Body:       append([]byte(nil), body...),
		SavedAt:    time.Now().UTC(),
	}
	if u != nil {
		rec.URL = u.String()
	}
	if resp != nil {
		rec.StatusCode = resp.StatusCode
		rec.Header = resp.Header.Clone()
		// The body is stored decoded and whole.
		rec.Header.Del("Content-Encoding")
		rec.Header.Del("Content-Length")
		rec.Header.Del("Transfer-Encoding")
	}
	return rec
}

// Response builds an HTTP response replaying the record.
func (rec *Record) Response() *http.Response {
	code := rec.StatusCode
	if code == 0 {
		code = http.StatusOK
	}
	h := rec.Header.Clone()
	if h == nil {
		h = make(http.Header)
	}
	h.Set("Content-Length", strconv.Itoa(len(rec.Body)))
	return &http.Response{
		Status:        strconv.Itoa(code) + " " + http.StatusText(code),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(rec.Body)),
		ContentLength: int64(len(rec.Body)),
	}
}
