// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"github.com/gogama/netkit/request"
)

// A Raw converter sends a body that is already in wire form.
type Raw struct {
	partHeader
	memo
	mimeType string
	body     interface{}
}

// NewRaw returns a converter sending body with the given MIME type.
//
// The body parameter may be nil, or it may be a string, []byte,
// io.Reader, or io.ReadCloser, as accepted by request.BodyBytes. A
// reader is consumed the first time the converter is encoded.
func NewRaw(mimeType string, body interface{}) *Raw {
	return &Raw{mimeType: mimeType, body: body}
}

// MimeType returns the MIME type given to NewRaw.
func (r *Raw) MimeType() string {
	return r.mimeType
}

// Encode returns the body bytes.
func (r *Raw) Encode() ([]byte, error) {
	return r.do(func() ([]byte, error) {
		return request.BodyBytes(r.body)
	})
}
