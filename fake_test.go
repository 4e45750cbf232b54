// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogama/netkit/request"
	"github.com/stretchr/testify/require"
)

// fakeSession is a Session which answers tasks with a canned response
// and counts network calls.
type fakeSession struct {
	respond func(p *request.Plan) ([]byte, *http.Response, error)
	// release, if not nil, holds resumed tasks until it is closed.
	release chan struct{}
	// resumed receives each plan as its task is resumed.
	resumed chan *request.Plan

	createErr   error
	createPanic bool

	calls atomic.Int32

	mu      sync.Mutex
	plans   []*request.Plan
	files   []string
	uploads []string
	tasks   []*fakeTask
}

func newFakeSession(status int, contentType, body string) *fakeSession {
	return &fakeSession{
		respond: func(*request.Plan) ([]byte, *http.Response, error) {
			return []byte(body), newResponse(status, contentType), nil
		},
		resumed: make(chan *request.Plan, 16),
	}
}

func newResponse(status int, contentType string) *http.Response {
	resp := &http.Response{
		Status:     strconv.Itoa(status) + " " + http.StatusText(status),
		StatusCode: status,
		Header:     make(http.Header),
		Body:       io.NopCloser(bytes.NewReader(nil)),
	}
	if contentType != "" {
		resp.Header.Set("Content-Type", contentType)
	}
	return resp
}

func (s *fakeSession) DataTask(p *request.Plan, h TaskHandler) (Task, error) {
	return s.newTask(p, "", h)
}

func (s *fakeSession) UploadTask(p *request.Plan, file string, h TaskHandler) (Task, error) {
	return s.newTask(p, file, h)
}

func (s *fakeSession) newTask(p *request.Plan, file string, h TaskHandler) (Task, error) {
	if file != "" {
		s.mu.Lock()
		s.files = append(s.files, file)
		s.mu.Unlock()
	}
	if s.createPanic {
		panic("session is invalid")
	}
	if s.createErr != nil {
		return nil, s.createErr
	}
	t := &fakeTask{s: s, p: p, file: file, h: h}
	s.mu.Lock()
	s.plans = append(s.plans, p)
	s.tasks = append(s.tasks, t)
	s.mu.Unlock()
	return t, nil
}

func (s *fakeSession) lastPlan() *request.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.plans) == 0 {
		return nil
	}
	return s.plans[len(s.plans)-1]
}

type fakeTask struct {
	s         *fakeSession
	p         *request.Plan
	file      string
	h         TaskHandler
	once      sync.Once
	cancelled atomic.Bool
}

func (t *fakeTask) Resume() {
	t.once.Do(func() {
		t.s.calls.Add(1)
		go t.run()
	})
}

func (t *fakeTask) run() {
	if t.s.resumed != nil {
		t.s.resumed <- t.p
	}
	if t.file != "" {
		b, err := os.ReadFile(t.file)
		_ = os.Remove(t.file)
		if err != nil {
			t.h(nil, nil, err)
			return
		}
		t.s.mu.Lock()
		t.s.uploads = append(t.s.uploads, string(b))
		t.s.mu.Unlock()
	}
	if t.s.release != nil {
		<-t.s.release
	}
	t.h(t.s.respond(t.p))
}

func (t *fakeTask) Cancel() {
	t.cancelled.Store(true)
}

type outcome struct {
	value interface{}
	resp  *http.Response
	err   error
}

// startAndWait starts r and returns its outcome, failing the test if
// the completion is not delivered exactly once.
func startAndWait(t *testing.T, r *Request) outcome {
	t.Helper()
	ch := make(chan outcome, 2)
	r.Start(Inline, func(v interface{}, resp *http.Response, err error) {
		ch <- outcome{v, resp, err}
	})
	return waitOutcome(t, ch)
}

func waitOutcome(t *testing.T, ch chan outcome) outcome {
	t.Helper()
	var o outcome
	select {
	case o = <-ch:
	case <-time.After(5 * time.Second):
		require.FailNow(t, "completion not delivered")
	}
	select {
	case <-ch:
		require.FailNow(t, "completion delivered twice")
	case <-time.After(20 * time.Millisecond):
	}
	return o
}

// testEndpoint is an Endpoint whose capabilities are switched on by
// setting the corresponding function.
type testEndpoint struct {
	id string

	session       func(r *Request) (Session, error)
	sessionCalls  atomic.Int32
	configure     func(r *Request, flags Flags) error
	control       func(r *Request, proceed func(done func()))
	configureURL  func(p *request.Plan, r *Request, flags Flags) error
	parse         func(r *Request, body []byte, o Outcome, resume func(Outcome)) Verdict
	mockManager   MockManager
	extractReason func(body []byte, resp *http.Response) string
}

func (e *testEndpoint) Identifier() string {
	return e.id
}

type sessionEndpoint struct{ *testEndpoint }

func (e sessionEndpoint) Session(r *Request) (Session, error) {
	e.sessionCalls.Add(1)
	return e.session(r)
}

type configureEndpoint struct{ *testEndpoint }

func (e configureEndpoint) Configure(r *Request, flags Flags) error {
	return e.configure(r, flags)
}

type fullEndpoint struct{ *testEndpoint }

func (e fullEndpoint) Session(r *Request) (Session, error) {
	e.sessionCalls.Add(1)
	if e.session == nil {
		return nil, nil
	}
	return e.session(r)
}

func (e fullEndpoint) Configure(r *Request, flags Flags) error {
	if e.configure == nil {
		return nil
	}
	return e.configure(r, flags)
}

func (e fullEndpoint) Control(r *Request, proceed func(done func())) {
	if e.control == nil {
		proceed(nil)
		return
	}
	e.control(r, proceed)
}

func (e fullEndpoint) ConfigureURLRequest(p *request.Plan, r *Request, flags Flags) error {
	if e.configureURL == nil {
		return nil
	}
	return e.configureURL(p, r, flags)
}

func (e fullEndpoint) ParseResponse(r *Request, body []byte, o Outcome, resume func(Outcome)) Verdict {
	if e.parse == nil {
		return Ready(o)
	}
	return e.parse(r, body, o, resume)
}

func (e fullEndpoint) Mocks() MockManager {
	return e.mockManager
}

func (e fullEndpoint) ExtractReason(body []byte, resp *http.Response) string {
	if e.extractReason == nil {
		return ""
	}
	return e.extractReason(body, resp)
}

// fakeMocks is a MockManager and MockRecorder over a map.
type fakeMocks struct {
	enabled   bool
	recording bool

	mu       sync.Mutex
	bodies   map[string][]byte
	urls     map[string]*url.URL
	recorded chan string
	// loading, if not nil, receives each key as LoadMock starts, and
	// LoadMock then waits for release to be closed.
	loading chan string
	release chan struct{}
}

var errNoMock = errors.New("no mock")

func newFakeMocks() *fakeMocks {
	return &fakeMocks{
		bodies:   make(map[string][]byte),
		urls:     make(map[string]*url.URL),
		recorded: make(chan string, 4),
	}
}

func (m *fakeMocks) MockingEnabled() bool {
	return m.enabled
}

func (m *fakeMocks) LoadMock(_ context.Context, key string, u *url.URL) ([]byte, *http.Response, error) {
	if m.loading != nil {
		m.loading <- key
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bodies[key]
	if !ok {
		return nil, nil, errNoMock
	}
	m.urls[key] = u
	return b, newResponse(200, "application/json"), nil
}

func (m *fakeMocks) RecordingEnabled() bool {
	return m.recording
}

func (m *fakeMocks) RecordMock(_ context.Context, key string, u *url.URL, body []byte, _ *http.Response) error {
	m.mu.Lock()
	m.bodies[key] = body
	m.urls[key] = u
	m.mu.Unlock()
	m.recorded <- key
	return nil
}

func (m *fakeMocks) body(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bodies[key]
}
