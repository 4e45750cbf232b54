// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package netkit

import (
	"sync/atomic"
	"time"

	"github.com/gogama/netkit/content"
	"github.com/gogama/netkit/timeout"
	"github.com/sirupsen/logrus"
)

var emptyHandlers = HandlerGroup{}

// A Client holds the settings shared by the requests created from it.
// Its zero value is a valid configuration.
//
// The zero value client caches sessions in a process-wide registry,
// decodes bodies with content.DefaultRegistry, sets no timeout on
// requests that do not have their own, sends no User-Agent header,
// logs to the logrus standard logger, waits forever for control gates,
// and runs no event handlers.
//
// A Client is safe for concurrent use by multiple goroutines, but its
// fields should not be changed while requests created from it are in
// flight.
type Client struct {
	// Sessions caches endpoint sessions. If nil, a process-wide
	// registry is used.
	Sessions *SessionRegistry
	// Background records endpoints owning background sessions. If nil,
	// a process-wide registry is used.
	Background *BackgroundRegistry
	// Handlers allows custom handler chains to be invoked when
	// designated events occur during a request lifecycle.
	//
	// If Handlers is nil, no custom handlers will be run.
	Handlers *HandlerGroup
	// Notifications enables the RequestStarted and RequestEnded
	// events. RequestCompleted fires regardless.
	Notifications bool
	// UserAgent, if not empty, is sent as the User-Agent header of
	// every request which does not set one itself.
	UserAgent string
	// Logger receives the lifecycle logs. If nil, the logrus standard
	// logger is used.
	Logger logrus.FieldLogger
	// Registry maps response content types to decoders. If nil,
	// content.DefaultRegistry is used.
	Registry *content.Registry
	// TimeoutPolicy chooses the timeout of requests which have none.
	//
	// If TimeoutPolicy is nil, timeout.DefaultPolicy is used.
	TimeoutPolicy timeout.Policy
	// GateTimeout bounds how long a request waits for its endpoint's
	// control gate. Zero means no bound.
	GateTimeout time.Duration

	inFlight atomic.Int64
}

// DefaultClient is the client used by NewRequest. Its fields hold the
// process-wide settings.
var DefaultClient = &Client{}

// InFlight returns the number of requests started from c which have not
// yet completed.
func (c *Client) InFlight() int {
	return int(c.inFlight.Load())
}

func (c *Client) sessions() *SessionRegistry {
	if c.Sessions == nil {
		return defaultSessions
	}

	return c.Sessions
}

func (c *Client) background() *BackgroundRegistry {
	if c.Background == nil {
		return defaultBackground
	}

	return c.Background
}

func (c *Client) handlers() *HandlerGroup {
	if c.Handlers == nil {
		return &emptyHandlers
	}

	return c.Handlers
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}

	return c.Logger
}

func (c *Client) registry() *content.Registry {
	if c.Registry == nil {
		return content.DefaultRegistry
	}

	return c.Registry
}

func (c *Client) timeoutPolicy() timeout.Policy {
	if c.TimeoutPolicy == nil {
		return timeout.DefaultPolicy
	}

	return c.TimeoutPolicy
}
