// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"github.com/dustin/go-humanize"
	"github.com/gogama/netkit"
	"github.com/sirupsen/logrus"
)

// An AccessLog writes one logrus entry per completed request: at Info
// level for requests with a response, and at Warn level for failures.
// Quiet requests are not logged.
type AccessLog struct {
	// Logger receives the entries. If nil, logrus.StandardLogger() is
	// used.
	Logger logrus.FieldLogger
}

// Attach installs a in g.
func (a *AccessLog) Attach(g *netkit.HandlerGroup) {
	g.PushBack(netkit.RequestCompleted, a)
}

// Handle logs a completed request. Other events are ignored.
func (a *AccessLog) Handle(evt netkit.Event, r *netkit.Request) {
	if evt != netkit.RequestCompleted || r.Quiet {
		return
	}
	logger := a.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	e := r.Execution()
	fields := logrus.Fields{
		"uid":      e.UID,
		"method":   r.Method,
		"url":      r.URL.String(),
		"status":   outcome(r),
		"duration": e.Duration(),
		"mock":     e.Mock,
	}
	if ep := endpointID(r); ep != "" {
		fields["endpoint"] = ep
	}
	if e.Response != nil {
		fields["size"] = humanize.Bytes(uint64(len(e.Body)))
	}
	entry := logger.WithFields(fields)
	if e.Err != nil {
		entry.WithError(e.Err).Warn("request failed")
		return
	}
	entry.Info("request completed")
}
