// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"mime"
	"strings"
	"sync"
)

// A Registry maps media types to decoders. Entries are consulted in
// registration order and the first entry whose type set contains the
// media type wins.
//
// A Registry is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

type entry struct {
	types map[string]struct{}
	dec   Decoder
}

// DefaultRegistry holds the JSON, image and multipart decoders. It is
// used by clients that have no registry of their own.
var DefaultRegistry = NewDefaultRegistry()

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// NewDefaultRegistry returns a registry holding DecodeJSON for
// JSONTypes, DecodeImage for ImageTypes and DecodeMultipart for
// MultipartTypes, in that order.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(DecodeJSON, JSONTypes...)
	r.Register(DecodeImage, ImageTypes...)
	r.Register(DecodeMultipart, MultipartTypes...)
	return r
}

// Register adds an entry matching the given media types, which are
// compared case-insensitively. Registering a nil decoder panics.
func (r *Registry) Register(dec Decoder, types ...string) {
	if dec == nil {
		panic("netkit/content: nil decoder")
	}
	set := make(map[string]struct{}, len(types))
	for _, t := range types {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry{types: set, dec: dec})
}

// Lookup finds the decoder for a Content-Type header value. The media
// type is lower-cased and its parameters are stripped before matching;
// the parameters are returned for passing to the decoder.
func (r *Registry) Lookup(contentType string) (Decoder, map[string]string, bool) {
	mediaType, params := ParseContentType(contentType)
	if mediaType == "" {
		return nil, nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if _, ok := e.types[mediaType]; ok {
			return e.dec, params, true
		}
	}
	return nil, nil, false
}

// ParseContentType splits a Content-Type header value into its
// lower-cased media type and its parameters. Values that do not parse
// strictly are split on the first semicolon.
func ParseContentType(contentType string) (string, map[string]string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err == nil {
		return mediaType, params
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return strings.ToLower(strings.TrimSpace(contentType)), map[string]string{}
}
