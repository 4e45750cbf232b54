// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"strings"

	"golang.org/x/net/html/charset"
)

// DecodeText converts body to a string using the character set named
// by label, for example "iso-8859-1" or "windows-1252". An empty or
// unknown label is treated as UTF-8, and invalid UTF-8 sequences are
// replaced with U+FFFD.
func DecodeText(body []byte, label string) (string, error) {
	if label != "" {
		if enc, name := charset.Lookup(label); enc != nil && name != "utf-8" {
			b, err := enc.NewDecoder().Bytes(body)
			if err != nil {
				return "", err
			}
			return string(b), nil
		}
	}
	return strings.ToValidUTF8(string(body), "\uFFFD"), nil
}

// DecodeHTML is a Decoder producing the body of a text/html response as
// a string, honouring the "charset" parameter.
func DecodeHTML(body []byte, params map[string]string) (interface{}, error) {
	return DecodeText(body, params["charset"])
}
