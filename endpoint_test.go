// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJSONReason(t *testing.T) {
	paths := JSONReason{"error.message", "errors.0.detail", "message"}
	testCases := []struct {
		name     string
		body     string
		expected string
	}{
		{"first path", `{"error":{"message":"denied"},"message":"other"}`, "denied"},
		{"array path", `{"errors":[{"detail":"bad id"}]}`, "bad id"},
		{"empty value skipped", `{"error":{"message":""},"message":"fallback"}`, "fallback"},
		{"no match", `{"code":7}`, ""},
		{"not json", `<html>oops</html>`, ""},
		{"empty body", ``, ""},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, paths.ExtractReason([]byte(testCase.body), nil))
		})
	}
}

func TestResolveHooks(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, hooks{}, resolveHooks(nil))
	})
	t.Run("named", func(t *testing.T) {
		h := resolveHooks(Named("plain"))
		assert.Equal(t, "plain", h.id)
		assert.Nil(t, h.session)
		assert.Nil(t, h.control)
		assert.Nil(t, h.mocks)
	})
	t.Run("full", func(t *testing.T) {
		mocks := newFakeMocks()
		h := resolveHooks(fullEndpoint{&testEndpoint{id: "full", mockManager: mocks}})
		assert.Equal(t, "full", h.id)
		assert.NotNil(t, h.session)
		assert.NotNil(t, h.configure)
		assert.NotNil(t, h.control)
		assert.NotNil(t, h.urlReq)
		assert.NotNil(t, h.parse)
		assert.NotNil(t, h.reason)
		assert.Same(t, mocks, h.mocks)
		assert.Same(t, mocks, h.recorder)
	})
	t.Run("reason func", func(t *testing.T) {
		type ep struct {
			Named
			ReasonFunc
		}
		h := resolveHooks(ep{"r", func([]byte, *http.Response) string { return "why" }})
		assert.Equal(t, "why", h.reason.ExtractReason(nil, nil))
	})
}
