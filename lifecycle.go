// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogama/netkit/content"
	"github.com/gogama/netkit/request"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// A Completion receives the outcome of a request: the decoded body (or
// the raw body bytes when no decoder applied), the HTTP response, and
// the error. Exactly one of the response and the error is usually set.
// A response outside the success range is not an error.
type Completion func(value interface{}, resp *http.Response, err error)

// Start starts the request. The completion is called exactly once, on
// q, when the request completes. A nil q means Inline, in which case
// the completion runs on a lifecycle goroutine.
//
// The lifecycle runs in the background, so Start returns immediately.
// Its steps, each of which may complete the request early, are: mock
// substitution, session resolution, configuration, the control gate,
// building and rewriting the wire request, dispatch, decoding, mock
// recording and response parsing.
//
// Start panics if the request has already been started.
func (r *Request) Start(q Queue, c Completion) {
	r.start(q, c, nil)
}

// StartUpload starts the request as an upload: the encoded body is
// written to a temporary file and sent from there by the session's
// UploadTask. If onTask is not nil, it is called on the lifecycle
// goroutine with the created task, or with the error if task creation
// failed. Otherwise StartUpload behaves as Start.
func (r *Request) StartUpload(q Queue, onTask func(Task, error), c Completion) {
	if onTask == nil {
		onTask = func(Task, error) {}
	}
	r.start(q, c, onTask)
}

func (r *Request) start(q Queue, c Completion, onTask func(Task, error)) {
	if c == nil {
		panic("netkit: nil completion")
	}
	if !r.started.CompareAndSwap(false, true) {
		panic("netkit: request already started")
	}
	if q == nil {
		q = Inline
	}
	cl := r.Client()
	ctx, cancel := context.WithCancel(r.Context())
	r.mu.Lock()
	r.ctx = ctx
	r.cancelFn = cancel
	r.mu.Unlock()
	if r.cancelled.Load() {
		cancel()
	}
	r.exec = request.Execution{UID: r.uid, Start: time.Now()}
	r.executing.Store(true)
	cl.inFlight.Add(1)
	l := &lifecycle{
		r:      r,
		c:      cl,
		q:      q,
		done:   c,
		onTask: onTask,
		ctx:    ctx,
		cancel: cancel,
		log: cl.logger().WithFields(logrus.Fields{
			"uid":    r.uid,
			"method": r.Method,
		}),
	}
	go l.run()
}

type lifecycle struct {
	r       *Request
	c       *Client
	q       Queue
	done    Completion
	onTask  func(Task, error)
	ctx     context.Context
	cancel  context.CancelFunc
	log     *logrus.Entry
	session Session
	arrived atomic.Bool

	mu       sync.Mutex
	gateDone func()
	finished bool
}

func (l *lifecycle) run() {
	r := l.r
	r.setState(StatePreparing)
	if m, u, ok := l.mockTarget(); ok {
		l.loadMock(m, u)
		return
	}
	if err := l.resolveSession(); err != nil {
		l.fail(err)
		return
	}
	if h := r.hooks.configure; h != nil {
		if err := h.Configure(r, r.Flags); err != nil {
			l.fail(err)
			return
		}
	}
	l.awaitControl()
}

func (l *lifecycle) mockTarget() (MockManager, *url.URL, bool) {
	r := l.r
	m := r.hooks.mocks
	if m == nil || r.MockKey == "" {
		return nil, nil, false
	}
	switch r.Mock {
	case MockOff:
		return nil, nil, false
	case MockDefault:
		if !m.MockingEnabled() {
			return nil, nil, false
		}
	}
	u, err := r.URL.URL()
	if err != nil {
		return nil, nil, false
	}
	return m, u, true
}

func (l *lifecycle) loadMock(m MockManager, u *url.URL) {
	if l.r.Cancelled() {
		l.fail(l.cancelErr(u.String()))
		return
	}
	l.r.exec.Mock = true
	l.debug("loading mock", logrus.Fields{"url": u.String(), "key": l.r.MockKey})
	body, resp, err := m.LoadMock(l.ctx, l.r.MockKey, u)
	if l.r.Cancelled() {
		l.fail(l.cancelErr(u.String()))
		return
	}
	l.r.exec.Response, l.r.exec.Body, l.r.exec.Err = resp, body, err
	l.decode(u, body, resp, err)
}

func (l *lifecycle) resolveSession() error {
	r := l.r
	if r.Session != nil {
		l.session = r.Session
		return nil
	}
	if sp := r.hooks.session; sp != nil {
		reg := r.Scope
		if reg == nil {
			reg = l.c.sessions()
		}
		s, err := reg.GetOrCreate(r.hooks.id, func() (Session, error) {
			return sp.Session(r)
		})
		if err != nil {
			return err
		}
		if s != nil {
			if bs, ok := s.(BackgroundSession); ok {
				if id := bs.BackgroundID(); id != "" {
					l.c.background().Register(id, r.endpoint)
				}
			}
			l.session = s
			return nil
		}
	}
	l.session = DefaultSession
	return nil
}

func (l *lifecycle) awaitControl() {
	r := l.r
	ctrl := r.hooks.control
	if ctrl == nil {
		l.build()
		return
	}
	r.setState(StateAwaitingControl)
	proceeded := make(chan struct{})
	var once sync.Once
	ctrl.Control(r, func(done func()) {
		once.Do(func() {
			l.setGateDone(done)
			close(proceeded)
		})
	})
	var expired <-chan time.Time
	if d := l.c.GateTimeout; d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		expired = timer.C
	}
	select {
	case <-proceeded:
		l.build()
	case <-expired:
		l.fail(urlErrorWrap(r.Method, r.URL.String(), ErrGateTimeout))
	case <-l.ctx.Done():
		l.fail(l.ctxErr(r.URL.String()))
	}
}

// setGateDone keeps the gate's done function for completion, or runs it
// at once if the request has already completed.
func (l *lifecycle) setGateDone(done func()) {
	if done == nil {
		return
	}
	l.mu.Lock()
	if l.finished {
		l.mu.Unlock()
		done()
		return
	}
	l.gateDone = done
	l.mu.Unlock()
}

func (l *lifecycle) build() {
	r := l.r
	r.setState(StateBuilding)
	if r.Cancelled() {
		l.fail(l.cancelErr(r.URL.String()))
		return
	}
	u, err := r.URL.URL()
	if err != nil {
		l.fail(urlErrorWrap(r.Method, "", err))
		return
	}
	var body []byte
	if r.Body != nil {
		if body, err = r.Body.Encode(); err != nil {
			l.fail(err)
			return
		}
	}
	p, err := request.NewPlanWithContext(l.ctx, r.Method, u, nil)
	if err != nil {
		l.fail(err)
		return
	}
	for k, vs := range r.Header {
		p.Header[k] = append([]string(nil), vs...)
	}
	if r.Body != nil {
		mimeType := r.Body.MimeType()
		if p.Header.Get("Content-Type") != "" {
			mimeType = ""
		}
		p.SetBody(mimeType, body)
	}
	p.Timeout = r.Timeout
	if p.Timeout == 0 {
		p.Timeout = l.c.timeoutPolicy().Timeout(p)
	}
	if ua := l.c.UserAgent; ua != "" && p.Header.Get("User-Agent") == "" {
		p.Header.Set("User-Agent", ua)
	}
	r.exec.Plan = p
	if h := r.hooks.urlReq; h != nil {
		if err = h.ConfigureURLRequest(p, r, r.Flags); err != nil {
			l.fail(err)
			return
		}
	}
	l.dispatch(p)
}

func (l *lifecycle) dispatch(p *request.Plan) {
	r := l.r
	if r.Cancelled() {
		l.fail(l.cancelErr(p.URL.String()))
		return
	}
	r.setState(StateDispatched)
	t, err := l.newTask(p)
	if l.onTask != nil {
		l.onTask(t, err)
	}
	if err != nil {
		l.fail(err)
		return
	}
	r.mu.Lock()
	r.task = t
	r.mu.Unlock()
	if r.Cancelled() {
		t.Cancel()
	}
	l.debug("sending request", logrus.Fields{
		"url":  p.URL.String(),
		"size": sizeOf(p.Body),
	})
	if l.c.Notifications {
		l.c.handlers().run(RequestStarted, r)
	}
	t.Resume()
}

// newTask creates the task on the session. Failures of the session, and
// panics, are reported as cancellation.
func (l *lifecycle) newTask(p *request.Plan) (t Task, err error) {
	var file string
	defer func() {
		if x := recover(); x != nil {
			l.log.WithField("panic", fmt.Sprint(x)).Warn("session failed to create task")
			t, err = nil, l.cancelErr(p.URL.String())
		}
		if err != nil && file != "" {
			_ = os.Remove(file)
		}
	}()
	h := func(body []byte, resp *http.Response, err error) {
		l.arrive(p, body, resp, err)
	}
	if l.onTask == nil {
		t, err = l.session.DataTask(p, h)
	} else {
		var name string
		if name, err = writeUploadFile(p.Body); err != nil {
			return nil, urlErrorWrap(p.Method, p.URL.String(), err)
		}
		file = name
		t, err = l.session.UploadTask(p, file, h)
	}
	if err == nil && t == nil {
		err = ErrSessionInvalidated
	}
	if err != nil {
		l.log.WithError(err).Warn("session failed to create task")
		return nil, l.cancelErr(p.URL.String())
	}
	return t, nil
}

// writeUploadFile writes body to a new temporary file, atomically, and
// returns its name.
func writeUploadFile(body []byte) (string, error) {
	name := filepath.Join(os.TempDir(), "netkit-upload-"+uuid.NewString())
	tmp := name + ".part"
	if err := os.WriteFile(tmp, body, 0o600); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, name); err != nil {
		_ = os.Remove(tmp)
		return "", err
	}
	return name, nil
}

func (l *lifecycle) arrive(p *request.Plan, body []byte, resp *http.Response, err error) {
	if !l.arrived.CompareAndSwap(false, true) {
		return
	}
	r := l.r
	r.exec.Response, r.exec.Body, r.exec.Err = resp, body, err
	if l.c.Notifications {
		l.c.handlers().run(RequestEnded, r)
	}
	if r.Cancelled() {
		l.fail(l.cancelErr(p.URL.String()))
		return
	}
	go l.decode(p.URL, body, resp, err)
}

func (l *lifecycle) decode(u *url.URL, body []byte, resp *http.Response, err error) {
	r := l.r
	r.setState(StateParsing)
	var value interface{}
	if err == nil && len(body) > 0 {
		value = body
		var ct string
		if resp != nil {
			ct = resp.Header.Get("Content-Type")
		}
		var v interface{}
		var derr error
		var ok bool
		if mediaType, params := content.ParseContentType(ct); mediaType == "text/html" {
			v, derr = content.DecodeHTML(body, params)
			ok = true
		} else if dec, params, found := l.c.registry().Lookup(ct); found {
			v, derr = dec(body, params)
			ok = true
		}
		if derr != nil {
			r.exec.DecodeErr = derr
			l.log.WithError(derr).WithField("content_type", ct).Warn("failed to decode response body")
		} else if ok {
			value = v
		}
	}
	r.exec.Decoded = value
	l.logResponse(body, resp, err)
	l.record(u, body, resp, err)
	o := Outcome{Value: value, Response: resp, Err: err}
	if h := r.hooks.parse; h != nil {
		v := h.ParseResponse(r, body, o, l.finish)
		if !v.IsPending() {
			l.finish(v.Outcome())
		}
		return
	}
	l.finish(o)
}

func (l *lifecycle) record(u *url.URL, body []byte, resp *http.Response, err error) {
	r := l.r
	rec := r.hooks.recorder
	if rec == nil || r.exec.Mock || err != nil || resp == nil || r.MockKey == "" || !rec.RecordingEnabled() {
		return
	}
	ctx := context.WithoutCancel(l.ctx)
	key, log := r.MockKey, l.log
	go func() {
		if err := rec.RecordMock(ctx, key, u, body, resp); err != nil {
			log.WithError(err).WithField("key", key).Warn("failed to record mock")
		}
	}()
}

func (l *lifecycle) fail(err error) {
	l.finish(Outcome{Err: err})
}

// finish delivers o. Only the first call has any effect.
func (l *lifecycle) finish(o Outcome) {
	r := l.r
	l.mu.Lock()
	if l.finished {
		l.mu.Unlock()
		return
	}
	l.finished = true
	gateDone := l.gateDone
	l.gateDone = nil
	l.mu.Unlock()

	r.completed.Store(true)
	r.exec.Decoded, r.exec.Response, r.exec.Err = o.Value, o.Response, o.Err
	r.exec.End = time.Now()
	if IsCancelled(o.Err) {
		r.setState(StateCancelled)
	} else {
		r.setState(StateCompleted)
	}
	if o.Err != nil {
		l.debug("request failed", logrus.Fields{
			logrus.ErrorKey: o.Err,
			"duration":      r.exec.Duration(),
		})
	}
	l.c.handlers().run(RequestCompleted, r)
	if gateDone != nil {
		gateDone()
	}
	r.executing.Store(false)
	l.c.inFlight.Add(-1)
	l.cancel()
	l.q.Dispatch(func() {
		l.done(o.Value, o.Response, o.Err)
	})
}

func (l *lifecycle) cancelErr(rawURL string) error {
	return urlErrorWrap(l.r.Method, rawURL, context.Canceled)
}

func (l *lifecycle) ctxErr(rawURL string) error {
	if err := l.ctx.Err(); err != nil && !l.r.Cancelled() {
		return urlErrorWrap(l.r.Method, rawURL, err)
	}
	return l.cancelErr(rawURL)
}
