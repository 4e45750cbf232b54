// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/items":
			w.Header().Set("Content-Type", "application/json")
			_, _ = fmt.Fprintf(w, `{"method":%q,"agent":%q}`, r.Method, r.Header.Get("X-Agent"))
		case "/echo":
			b, _ := io.ReadAll(r.Body)
			w.Header().Set("Content-Type", "text/plain")
			_, _ = fmt.Fprintf(w, "%s %s", r.Header.Get("Content-Type"), b)
		case "/auth":
			name, password, _ := r.BasicAuth()
			w.Header().Set("Content-Type", "text/plain")
			_, _ = fmt.Fprintf(w, "%s:%s %s", name, password, r.Header.Get("Cookie"))
		default:
			http.Error(w, "nope", http.StatusTeapot)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSettings(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	fixtures := filepath.Join(dir, "fixtures")
	file := filepath.Join(dir, "netkit.yaml")
	settings := fmt.Sprintf("log_level: error\nmock:\n  store: dir\n  path: %s\n", fixtures)
	require.NoError(t, os.WriteFile(file, []byte(settings), 0o644))
	return file, fixtures
}

func TestFetch(t *testing.T) {
	server := newTestServer(t)
	file, fixtures := writeSettings(t)

	t.Run("json", func(t *testing.T) {
		out, _, err := execute(t, "fetch", "--config", file, "-H", "X-Agent: cli", server.URL+"/items")
		require.NoError(t, err)
		assert.Equal(t, "200 OK\n{\n  \"agent\": \"cli\",\n  \"method\": \"GET\"\n}\n", out)
	})
	t.Run("body", func(t *testing.T) {
		out, _, err := execute(t, "fetch", "--config", file, "-X", "post", "-d", "hello", server.URL+"/echo")
		require.NoError(t, err)
		assert.Equal(t, "200 OK\ntext/plain; charset=utf-8 hello", out)
	})
	t.Run("include headers", func(t *testing.T) {
		out, _, err := execute(t, "fetch", "--config", file, "-i", server.URL+"/items")
		require.NoError(t, err)
		assert.Contains(t, out, "Content-Type: application/json\n")
	})
	t.Run("error status", func(t *testing.T) {
		out, _, err := execute(t, "fetch", "--config", file, server.URL+"/teapot")
		assert.EqualError(t, err, "HTTP 418")
		assert.Contains(t, out, "418 I'm a teapot\n")
	})
	t.Run("record and replay", func(t *testing.T) {
		_, errOut, err := execute(t, "fetch", "--config", file, "--mock-key", "items", "--record", server.URL+"/items")
		require.NoError(t, err)
		assert.Equal(t, "recorded items\n", errOut)
		entries, err := os.ReadDir(fixtures)
		require.NoError(t, err)
		assert.Len(t, entries, 1)

		out, _, err := execute(t, "fetch", "--config", file, "--mock-key", "items", "--mock", "http://unreachable.invalid/items")
		require.NoError(t, err)
		assert.Contains(t, out, "200 OK (mock)\n")
		assert.Contains(t, out, `"method": "GET"`)
	})
	t.Run("mock without key", func(t *testing.T) {
		_, _, err := execute(t, "fetch", "--config", file, "--mock", server.URL)
		assert.EqualError(t, err, "--mock and --record need --mock-key")
	})
	t.Run("credentials and cookies", func(t *testing.T) {
		out, _, err := execute(t, "fetch", "--config", file, "-u", "ann:secret", "-b", "a=1; b=2", "-b", "c=3", server.URL+"/auth")
		require.NoError(t, err)
		assert.Equal(t, "200 OK\nann:secret a=1; b=2; c=3", out)
	})
	t.Run("bad cookie", func(t *testing.T) {
		_, _, err := execute(t, "fetch", "--config", file, "-b", "=", server.URL)
		assert.ErrorContains(t, err, `bad cookie "="`)
	})
	t.Run("bad header", func(t *testing.T) {
		_, _, err := execute(t, "fetch", "--config", file, "-H", "nocolon", server.URL)
		assert.EqualError(t, err, `bad header "nocolon": want 'Name: value'`)
	})
	t.Run("bad method", func(t *testing.T) {
		_, _, err := execute(t, "fetch", "--config", file, "-X", "BREW", server.URL)
		assert.EqualError(t, err, `netkit: invalid method "BREW"`)
	})
	t.Run("args", func(t *testing.T) {
		_, _, err := execute(t, "fetch")
		assert.Error(t, err)
	})
}

func TestPrintValue(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printValue(&buf, nil))
	require.NoError(t, printValue(&buf, []byte("raw")))
	require.NoError(t, printValue(&buf, "text"))
	require.NoError(t, printValue(&buf, []interface{}{1.0}))
	assert.Equal(t, "rawtext\n[\n  1\n]\n", buf.String())
}
