// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package content converts between typed values and wire bytes keyed by
// MIME type.
//
// Request bodies are described by a Converter, which knows its own MIME
// type and lazily encodes its value exactly once:
//
// 	body := content.NewJSON(map[string]interface{}{"name": "Ham"})
// 	b, err := body.Encode() // same bytes on every call
//
// Response bodies are decoded by a Decoder chosen from a Registry by the
// response Content-Type. Lookup is case-insensitive and ignores media
// type parameters, which are passed to the decoder instead:
//
// 	dec, params, ok := content.DefaultRegistry.Lookup("Application/JSON; charset=utf-8")
// 	if ok {
// 		v, err := dec(body, params)
// 		...
// 	}
//
// DefaultRegistry understands JSON, images and multipart bodies. Entries
// are literal strings, so "image/*" only matches a Content-Type that is
// exactly "image/*".
package content
