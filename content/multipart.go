// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// MultipartTypes lists the media types DecodeMultipart is registered
// for in DefaultRegistry.
var MultipartTypes = []string{
	"multipart/mixed",
	"multipart/alternative",
	"multipart/digest",
	"multipart/parallel",
}

// ErrNoParts is returned by NewMultipart when it is given no parts.
var ErrNoParts = errors.New("netkit/content: multipart with no parts")

// ErrNoBoundary is returned by DecodeMultipart when the Content-Type
// has no boundary parameter.
var ErrNoBoundary = errors.New("netkit/content: multipart with no boundary")

const boundaryPrefix = "netkit.boundary."

// A Multipart converter encodes an ordered list of child converters as
// a single multipart body.
type Multipart struct {
	partHeader
	memo
	mimeType string
	boundary string
	parts    []Converter
}

// NewMultipart returns a converter joining parts under the multipart
// subtype given, which is one of "mixed", "alternative", "digest" or
// "parallel" (optionally with the "multipart/" prefix). A random
// boundary is generated for each converter.
func NewMultipart(subtype string, parts ...Converter) (*Multipart, error) {
	if len(parts) == 0 {
		return nil, ErrNoParts
	}
	mt := strings.ToLower(subtype)
	if !strings.HasPrefix(mt, "multipart/") {
		mt = "multipart/" + mt
	}
	if !contains(MultipartTypes, mt) {
		return nil, fmt.Errorf("netkit/content: unsupported multipart subtype %q", subtype)
	}
	for _, p := range parts {
		if p == nil {
			return nil, errors.New("netkit/content: nil multipart part")
		}
	}
	return &Multipart{
		mimeType: mt,
		boundary: newBoundary(),
		parts:    append([]Converter(nil), parts...),
	}, nil
}

func newBoundary() string {
	u := uuid.New()
	return boundaryPrefix + hex.EncodeToString(u[:8])
}

// Boundary returns the boundary token separating the parts.
func (m *Multipart) Boundary() string {
	return m.boundary
}

// Parts returns the child converters in order.
func (m *Multipart) Parts() []Converter {
	return append([]Converter(nil), m.parts...)
}

// MimeType returns the multipart media type with its boundary
// parameter.
func (m *Multipart) MimeType() string {
	return m.mimeType + "; boundary=" + m.boundary
}

// Encode serialises each part as its own headers, a Content-Type line,
// a blank line and the part bytes, each part followed by a boundary
// line. The last boundary line is the closing boundary.
func (m *Multipart) Encode() ([]byte, error) {
	return m.do(func() ([]byte, error) {
		var buf bytes.Buffer
		buf.WriteString("--" + m.boundary + "\r\n")
		for i, p := range m.parts {
			h := p.Headers()
			keys := make([]string, 0, len(h))
			for k := range h {
				if textproto.CanonicalMIMEHeaderKey(k) != "Content-Type" {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			for _, k := range keys {
				for _, v := range h[k] {
					fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
				}
			}
			fmt.Fprintf(&buf, "Content-Type: %s\r\n\r\n", p.MimeType())
			b, err := p.Encode()
			if err != nil {
				return nil, fmt.Errorf("netkit/content: multipart part %d: %w", i, err)
			}
			buf.Write(b)
			buf.WriteString("\r\n--" + m.boundary)
			if i == len(m.parts)-1 {
				buf.WriteString("--")
			}
			buf.WriteString("\r\n")
		}
		return buf.Bytes(), nil
	})
}

// A Part is one decoded part of a multipart body.
type Part struct {
	Header textproto.MIMEHeader
	Body   []byte
}

// ContentType returns the Content-Type header of the part.
func (p Part) ContentType() string {
	return p.Header.Get("Content-Type")
}

// DecodeMultipart splits a multipart body into its parts using the
// "boundary" parameter. The result is a []Part.
func DecodeMultipart(body []byte, params map[string]string) (interface{}, error) {
	boundary := params["boundary"]
	if boundary == "" {
		return nil, ErrNoBoundary
	}
	r := multipart.NewReader(bytes.NewReader(body), boundary)
	var parts []Part
	for {
		p, err := r.NextRawPart()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		b, err := io.ReadAll(p)
		_ = p.Close()
		if err != nil {
			return nil, err
		}
		parts = append(parts, Part{Header: p.Header, Body: b})
	}
	return parts, nil
}

func contains(set []string, s string) bool {
	for _, x := range set {
		if x == s {
			return true
		}
	}
	return false
}
