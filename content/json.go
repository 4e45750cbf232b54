// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"encoding/json"
	"errors"
)

// JSONMimeType is the MIME type produced by JSON converters.
const JSONMimeType = "application/json;charset=UTF-8"

// JSONTypes lists the media types DecodeJSON is registered for in
// DefaultRegistry.
var JSONTypes = []string{
	"application/json",
	"application/x-javascript",
	"text/javascript",
	"text/x-javascript",
	"text/x-json",
}

// ErrInvalidJSON is returned when a JSON converter is given a string or
// byte slice that is not valid serialised JSON.
var ErrInvalidJSON = errors.New("netkit/content: invalid JSON")

// A JSON converter encodes a JSON-compatible value.
type JSON struct {
	partHeader
	memo
	v interface{}
	f func() (interface{}, error)
}

// NewJSON returns a converter for v.
//
// Values of type string, []byte and json.RawMessage are taken to be
// already serialised and are sent as they are, after checking that they
// hold valid JSON. Any other value is serialised with encoding/json.
func NewJSON(v interface{}) *JSON {
	return &JSON{v: v}
}

// JSONFunc returns a converter whose value is produced by calling f the
// first time the converter is encoded.
func JSONFunc(f func() (interface{}, error)) *JSON {
	if f == nil {
		panic("netkit/content: nil JSON provider")
	}
	return &JSON{f: f}
}

// MimeType returns JSONMimeType.
func (j *JSON) MimeType() string {
	return JSONMimeType
}

// Encode returns the serialised value.
func (j *JSON) Encode() ([]byte, error) {
	return j.do(func() ([]byte, error) {
		v := j.v
		if j.f != nil {
			var err error
			if v, err = j.f(); err != nil {
				return nil, err
			}
		}
		return marshalJSON(v)
	})
}

func marshalJSON(v interface{}) ([]byte, error) {
	var b []byte
	switch x := v.(type) {
	case string:
		b = []byte(x)
	case []byte:
		b = x
	case json.RawMessage:
		b = x
	default:
		return json.Marshal(v)
	}
	if !json.Valid(b) {
		return nil, ErrInvalidJSON
	}
	return b, nil
}

// DecodeJSON parses body as a single JSON value. Top-level scalars are
// allowed. Objects decode to map[string]interface{} and arrays to
// []interface{}, as with encoding/json. Malformed input is an error.
func DecodeJSON(body []byte, _ map[string]string) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, err
	}
	return v, nil
}
