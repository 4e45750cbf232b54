// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"context"
	"io"
	"net/http"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gogama/netkit/request"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response following
	// policy (such as redirects, cookies, auth) configured on the
	// HTTPDoer.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package.
	Do(r *http.Request) (*http.Response, error)
}

// A TaskHandler receives the result of a task: the fully read response
// body, the response, and the error. It is called exactly once per
// resumed task, from any goroutine.
type TaskHandler func(body []byte, resp *http.Response, err error)

// A Task is one exchange created by a Session. It does nothing until
// resumed.
type Task interface {
	// Resume starts the exchange. Calls after the first do nothing.
	Resume()
	// Cancel aborts the exchange. The task handler still runs, with an
	// error, if the task was resumed.
	Cancel()
}

// A Session is the transport beneath the request lifecycle. Sessions
// must be safe for concurrent use by multiple goroutines.
type Session interface {
	// DataTask creates a task sending p, with its body held in memory.
	DataTask(p *request.Plan, h TaskHandler) (Task, error)
	// UploadTask creates a task sending p with its body read from file.
	// The session owns file and removes it once the task is over.
	UploadTask(p *request.Plan, file string, h TaskHandler) (Task, error)
}

// A BackgroundSession is a session able to carry transfers on behalf of
// a background identifier. Requests using one register their endpoint
// in the client's BackgroundRegistry under that identifier.
type BackgroundSession interface {
	Session
	BackgroundID() string
}

// An Invalidator is a session which can be shut down.
type Invalidator interface {
	Invalidate()
}

// DefaultSession is the shared session used by requests which have no
// session of their own and whose endpoint provides none.
var DefaultSession Session = NewHTTPSession(nil)

// An HTTPSession is a Session sending requests with an HTTPDoer.
//
// Each task reads and buffers the entire response body and closes it.
// A plan timeout is applied as a context deadline. Errors are returned
// as *url.Error.
type HTTPSession struct {
	// Doer sends the requests. If nil, http.DefaultClient is used.
	Doer HTTPDoer
	// ID is the optional background identifier of the session.
	ID string

	invalid atomic.Bool
}

// NewHTTPSession returns a session sending requests with doer.
func NewHTTPSession(doer HTTPDoer) *HTTPSession {
	return &HTTPSession{Doer: doer}
}

// BackgroundID returns s.ID.
func (s *HTTPSession) BackgroundID() string {
	return s.ID
}

// Invalidate stops s from creating new tasks. Tasks already created are
// unaffected.
func (s *HTTPSession) Invalidate() {
	s.invalid.Store(true)
}

// Invalidated reports whether Invalidate has been called.
func (s *HTTPSession) Invalidated() bool {
	return s.invalid.Load()
}

// DataTask returns a task sending p.
func (s *HTTPSession) DataTask(p *request.Plan, h TaskHandler) (Task, error) {
	return s.newTask(p, "", h)
}

// UploadTask returns a task sending p with the body read from file.
func (s *HTTPSession) UploadTask(p *request.Plan, file string, h TaskHandler) (Task, error) {
	return s.newTask(p, file, h)
}

func (s *HTTPSession) newTask(p *request.Plan, file string, h TaskHandler) (Task, error) {
	if s.invalid.Load() {
		return nil, ErrSessionInvalidated
	}
	if p == nil || h == nil {
		panic("netkit: nil plan or task handler")
	}
	var ctx context.Context
	var cancel context.CancelFunc
	if p.Timeout > 0 {
		ctx, cancel = context.WithTimeout(p.Context(), p.Timeout)
	} else {
		ctx, cancel = context.WithCancel(p.Context())
	}
	return &httpTask{
		doer:   s.doer(),
		p:      p,
		file:   file,
		h:      h,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

func (s *HTTPSession) doer() HTTPDoer {
	if s.Doer == nil {
		return http.DefaultClient
	}

	return s.Doer
}

type httpTask struct {
	doer   HTTPDoer
	p      *request.Plan
	file   string
	h      TaskHandler
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func (t *httpTask) Resume() {
	t.once.Do(func() {
		go t.run()
	})
}

func (t *httpTask) Cancel() {
	t.cancel()
}

func (t *httpTask) run() {
	defer t.cancel()
	if t.file != "" {
		defer func() {
			_ = os.Remove(t.file)
		}()
	}
	r := t.p.ToRequest(t.ctx)
	if t.file != "" {
		f, err := os.Open(t.file)
		if err != nil {
			t.h(nil, nil, t.wrap(err))
			return
		}
		defer func() {
			_ = f.Close()
		}()
		fi, err := f.Stat()
		if err != nil {
			t.h(nil, nil, t.wrap(err))
			return
		}
		r.Body = f
		r.ContentLength = fi.Size()
		r.GetBody = func() (io.ReadCloser, error) {
			return os.Open(t.file)
		}
	}
	resp, err := t.doer.Do(r)
	if err != nil {
		t.h(nil, nil, t.wrap(err))
		return
	}
	body, err := readBody(resp)
	if err != nil {
		t.h(nil, resp, t.wrap(err))
		return
	}
	t.h(body, resp, nil)
}

func (t *httpTask) wrap(err error) error {
	return urlErrorWrap(t.p.Method, t.p.URL.String(), err)
}

func readBody(resp *http.Response) ([]byte, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	return io.ReadAll(resp.Body)
}
