// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"errors"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogama/netkit/request"
	"github.com/gogama/netkit/transient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHTTPSession_DataTask(t *testing.T) {
	for _, server := range servers {
		t.Run(serverName(server), func(t *testing.T) {
			s := NewHTTPSession(server.Client())
			t.Run("body", func(t *testing.T) {
				i := &serverInstruction{
					StatusCode:  201,
					ContentType: "text/plain",
					Body: []bodyChunk{
						{Data: []byte("hello, ")},
						{Data: []byte("world")},
					},
				}
				body, resp, err := doSync(s, i.toPlan("GET", server))
				require.NoError(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, 201, resp.StatusCode)
				assert.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
				assert.Equal(t, "hello, world", string(body))
			})
			t.Run("post body", func(t *testing.T) {
				p := (&serverInstruction{StatusCode: 200, Echo: true}).toPlan("POST", server)
				p.SetBody("application/json", []byte(`{"a":1}`))
				body, resp, err := doSync(s, p)
				require.NoError(t, err)
				assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
				assert.Equal(t, `{"a":1}`, string(body))
			})
			t.Run("timeout", func(t *testing.T) {
				p := (&serverInstruction{StatusCode: 200, HeaderPause: 500 * time.Millisecond}).toPlan("GET", server)
				p.Timeout = 20 * time.Millisecond
				body, resp, err := doSync(s, p)
				assert.Nil(t, body)
				assert.Nil(t, resp)
				require.Error(t, err)
				var ue *url.Error
				require.ErrorAs(t, err, &ue)
				assert.Equal(t, transient.Timeout, transient.Categorize(err))
			})
			t.Run("cancel", func(t *testing.T) {
				p := (&serverInstruction{StatusCode: 200, HeaderPause: 500 * time.Millisecond}).toPlan("GET", server)
				ch := make(chan error, 1)
				task, err := s.DataTask(p, func(_ []byte, _ *http.Response, err error) {
					ch <- err
				})
				require.NoError(t, err)
				task.Resume()
				task.Resume()
				task.Cancel()
				select {
				case err = <-ch:
					assert.True(t, IsCancelled(err))
				case <-time.After(5 * time.Second):
					t.Fatal("task handler not called")
				}
			})
		})
	}
}

func TestHTTPSession_UploadTask(t *testing.T) {
	s := NewHTTPSession(httpServer.Client())
	file := filepath.Join(t.TempDir(), "upload")
	require.NoError(t, os.WriteFile(file, []byte("file contents"), 0o600))
	p := (&serverInstruction{StatusCode: 200, Echo: true}).toPlan("PUT", httpServer)
	p.Header.Set("Content-Type", "text/plain")
	ch := make(chan []byte, 1)
	task, err := s.UploadTask(p, file, func(body []byte, resp *http.Response, err error) {
		assert.NoError(t, err)
		ch <- body
	})
	require.NoError(t, err)
	task.Resume()
	assert.Equal(t, "file contents", string(<-ch))
	assert.Eventually(t, func() bool {
		_, err := os.Stat(file)
		return os.IsNotExist(err)
	}, time.Second, 10*time.Millisecond)
}

func TestHTTPSession_Invalidate(t *testing.T) {
	s := NewHTTPSession(nil)
	s.ID = "bg"
	assert.Equal(t, "bg", s.BackgroundID())
	assert.False(t, s.Invalidated())
	s.Invalidate()
	assert.True(t, s.Invalidated())
	p, err := request.NewPlan("GET", &url.URL{Scheme: "http", Host: "example.test"}, nil)
	require.NoError(t, err)
	task, err := s.DataTask(p, func([]byte, *http.Response, error) {})
	assert.Nil(t, task)
	assert.Same(t, ErrSessionInvalidated, err)
	task, err = s.UploadTask(p, "nope", func([]byte, *http.Response, error) {})
	assert.Nil(t, task)
	assert.Same(t, ErrSessionInvalidated, err)
}

func TestHTTPSession_DoerError(t *testing.T) {
	expectedErr := errors.New("no route")
	doer := &mockDoer{}
	doer.On("Do", mock.Anything).Return(nil, expectedErr).Once()
	s := NewHTTPSession(doer)
	p, err := request.NewPlan("DELETE", &url.URL{Scheme: "http", Host: "example.test", Path: "/x"}, nil)
	require.NoError(t, err)
	_, _, err = doSync(s, p)
	var ue *url.Error
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Delete", ue.Op)
	assert.Equal(t, "http://example.test/x", ue.URL)
	assert.Same(t, expectedErr, ue.Err)
	doer.AssertExpectations(t)
}

type mockDoer struct {
	mock.Mock
}

func (m *mockDoer) Do(r *http.Request) (*http.Response, error) {
	args := m.Called(r)
	resp, _ := args.Get(0).(*http.Response)
	return resp, args.Error(1)
}
