// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeText(t *testing.T) {
	testCases := []struct {
		name  string
		body  []byte
		label string
		want  string
	}{
		{"utf-8", []byte("<html>ok</html>"), "utf-8", "<html>ok</html>"},
		{"no label", []byte("héllo"), "", "héllo"},
		{"unknown label", []byte("plain"), "x-no-such-charset", "plain"},
		{"latin-1", []byte{'c', 'a', 'f', 0xe9}, "iso-8859-1", "café"},
		{"windows-1252", []byte{0x80}, "windows-1252", "€"},
		{"invalid utf-8", []byte{'a', 0xff, 'b'}, "", "a�b"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			s, err := DecodeText(testCase.body, testCase.label)
			require.NoError(t, err)
			assert.Equal(t, testCase.want, s)
		})
	}
}

func TestDecodeHTML(t *testing.T) {
	v, err := DecodeHTML([]byte("<p>\xe9</p>"), map[string]string{"charset": "latin1"})
	require.NoError(t, err)
	assert.Equal(t, "<p>é</p>", v)
}
