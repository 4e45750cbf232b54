// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"strconv"

	"github.com/gogama/netkit"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics of completed requests.
type Metrics struct {
	// RequestsTotal counts completed requests by endpoint, method,
	// status and mock. Status is the HTTP status code, or "error",
	// "cancelled" or "none".
	RequestsTotal *prometheus.CounterVec
	// RequestDuration observes lifecycle durations in seconds by
	// endpoint and method.
	RequestDuration *prometheus.HistogramVec
	// ResponseSize observes response body sizes in bytes by endpoint.
	ResponseSize *prometheus.HistogramVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "netkit",
				Name:      "requests_total",
				Help:      "Total number of completed requests",
			},
			[]string{"endpoint", "method", "status", "mock"},
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netkit",
				Name:      "request_duration_seconds",
				Help:      "Request lifecycle duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint", "method"},
		),
		ResponseSize: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netkit",
				Name:      "response_size_bytes",
				Help:      "Response body size in bytes",
				Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"endpoint"},
		),
	}
}

// Attach installs m in g.
func (m *Metrics) Attach(g *netkit.HandlerGroup) {
	g.PushBack(netkit.RequestCompleted, m)
}

// Handle records a completed request. Other events are ignored.
func (m *Metrics) Handle(evt netkit.Event, r *netkit.Request) {
	if evt != netkit.RequestCompleted {
		return
	}
	e := r.Execution()
	ep := endpointID(r)
	m.RequestsTotal.WithLabelValues(ep, r.Method, outcome(r), strconv.FormatBool(e.Mock)).Inc()
	m.RequestDuration.WithLabelValues(ep, r.Method).Observe(e.Duration().Seconds())
	if e.Response != nil {
		m.ResponseSize.WithLabelValues(ep).Observe(float64(len(e.Body)))
	}
}
