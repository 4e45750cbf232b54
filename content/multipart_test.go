// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMultipart(t *testing.T) {
	t.Run("no parts", func(t *testing.T) {
		m, err := NewMultipart("mixed")
		assert.Nil(t, m)
		assert.Same(t, ErrNoParts, err)
	})
	t.Run("bad subtype", func(t *testing.T) {
		m, err := NewMultipart("form-data", NewRaw("text/plain", "x"))
		assert.Nil(t, m)
		assert.EqualError(t, err, `netkit/content: unsupported multipart subtype "form-data"`)
	})
	t.Run("nil part", func(t *testing.T) {
		_, err := NewMultipart("mixed", nil)
		assert.Error(t, err)
	})
	t.Run("subtypes", func(t *testing.T) {
		for _, st := range []string{"mixed", "alternative", "digest", "parallel", "multipart/Mixed"} {
			m, err := NewMultipart(st, NewRaw("text/plain", "x"))
			require.NoError(t, err, st)
			assert.True(t, strings.HasPrefix(m.MimeType(), "multipart/"), st)
		}
	})
	t.Run("fresh boundary per instance", func(t *testing.T) {
		a, err := NewMultipart("mixed", NewRaw("text/plain", "x"))
		require.NoError(t, err)
		b, err := NewMultipart("mixed", NewRaw("text/plain", "x"))
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^netkit\.boundary\.[0-9a-f]{16}$`), a.Boundary())
		assert.NotEqual(t, a.Boundary(), b.Boundary())
		assert.Equal(t, "multipart/mixed; boundary="+a.Boundary(), a.MimeType())
	})
}

func TestMultipart_Encode(t *testing.T) {
	text := NewRaw("text/plain", "hello")
	text.Headers().Set("Content-Disposition", `inline; name="greeting"`)
	m, err := NewMultipart("mixed", text, NewJSON(map[string]interface{}{"ok": true}))
	require.NoError(t, err)
	b, err := m.Encode()
	require.NoError(t, err)
	bd := m.Boundary()
	expected := "--" + bd + "\r\n" +
		"Content-Disposition: inline; name=\"greeting\"\r\n" +
		"Content-Type: text/plain\r\n\r\n" +
		"hello" +
		"\r\n--" + bd + "\r\n" +
		"Content-Type: " + JSONMimeType + "\r\n\r\n" +
		`{"ok":true}` +
		"\r\n--" + bd + "--\r\n"
	assert.Equal(t, expected, string(b))
	assert.Equal(t, 3, strings.Count(string(b), bd))

	b2, err := m.Encode()
	require.NoError(t, err)
	assert.Equal(t, b, b2)

	t.Run("decode", func(t *testing.T) {
		dec, params, ok := DefaultRegistry.Lookup(m.MimeType())
		require.True(t, ok)
		v, err := dec(b, params)
		require.NoError(t, err)
		parts := v.([]Part)
		require.Len(t, parts, 2)
		assert.Equal(t, "text/plain", parts[0].ContentType())
		assert.Equal(t, `inline; name="greeting"`, parts[0].Header.Get("Content-Disposition"))
		assert.Equal(t, "hello", string(parts[0].Body))
		assert.Equal(t, JSONMimeType, parts[1].ContentType())
		j, err := DecodeJSON(parts[1].Body, nil)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"ok": true}, j)
	})
}

func TestMultipart_EncodePartError(t *testing.T) {
	expectedErr := errors.New("part failed")
	m, err := NewMultipart("mixed", JSONFunc(func() (interface{}, error) { return nil, expectedErr }))
	require.NoError(t, err)
	_, err = m.Encode()
	assert.ErrorIs(t, err, expectedErr)
}

func TestDecodeMultipart_NoBoundary(t *testing.T) {
	_, err := DecodeMultipart([]byte("--x\r\n\r\nbody\r\n--x--\r\n"), map[string]string{})
	assert.Same(t, ErrNoBoundary, err)
}
