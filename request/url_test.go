// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLBuilder_URL(t *testing.T) {
	testCases := []struct {
		name    string
		builder URLBuilder
		want    string
		wantErr bool
	}{
		{
			name:    "empty",
			wantErr: true,
		},
		{
			name:    "no host",
			builder: URLBuilder{Scheme: "https", Path: "/a"},
			wantErr: true,
		},
		{
			name:    "no scheme",
			builder: URLBuilder{Host: "example.test"},
			wantErr: true,
		},
		{
			name:    "bad port",
			builder: URLBuilder{Scheme: "http", Host: "example.test", Port: 70000},
			wantErr: true,
		},
		{
			name:    "host only",
			builder: URLBuilder{Scheme: "https", Host: "example.test"},
			want:    "https://example.test",
		},
		{
			name:    "path without slash",
			builder: URLBuilder{Scheme: "https", Host: "example.test", Path: "a/b"},
			want:    "https://example.test/a/b",
		},
		{
			name:    "port and query",
			builder: URLBuilder{Scheme: "http", Host: "example.test", Port: 8080, Path: "/q", Query: url.Values{"b": {"2"}, "a": {"1"}}},
			want:    "http://example.test:8080/q?a=1&b=2",
		},
		{
			name:    "ipv6",
			builder: URLBuilder{Scheme: "http", Host: "::1", Port: 80},
			want:    "http://[::1]:80",
		},
		{
			name:    "fragment and user",
			builder: URLBuilder{Scheme: "https", Host: "example.test", User: url.UserPassword("u", "p"), Fragment: "top"},
			want:    "https://u:p@example.test#top",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			u, err := testCase.builder.URL()
			if testCase.wantErr {
				assert.Nil(t, u)
				assert.Same(t, ErrBadURL, err)
				assert.Equal(t, "", testCase.builder.String())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.want, u.String())
			assert.Equal(t, testCase.want, testCase.builder.String())
		})
	}
}

func TestURLBuilder_SetString(t *testing.T) {
	var b URLBuilder
	require.NoError(t, b.SetString("http://example.test:81/a/b?x=1&x=2#f"))
	assert.Equal(t, "http", b.Scheme)
	assert.Equal(t, "example.test", b.Host)
	assert.Equal(t, 81, b.Port)
	assert.Equal(t, "/a/b", b.Path)
	assert.Equal(t, []string{"1", "2"}, b.Query["x"])
	assert.Equal(t, "f", b.Fragment)
	assert.Equal(t, "http://example.test:81/a/b?x=1&x=2#f", b.String())
	assert.Error(t, b.SetString(":::"))
}

func TestURLBuilder_Query(t *testing.T) {
	b := URLBuilder{Scheme: "https", Host: "example.test"}
	b.AddQuery("sensor", "true")
	b.AddQuery("sensor", "false")
	assert.Equal(t, []string{"true", "false"}, b.Query["sensor"])
	b.SetQuery("sensor", "maybe")
	assert.Equal(t, []string{"maybe"}, b.Query["sensor"])
	assert.Equal(t, "https://example.test?sensor=maybe", b.String())
}
