// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package observe provides netkit event handlers which report on
// completed requests: Prometheus metrics, OpenTelemetry spans and a
// logrus access log.
//
// Each reporter handles netkit.RequestCompleted, which fires for every
// started request whatever the path it took, and can be installed in a
// client's handler group with its Attach method:
//
//	handlers := &netkit.HandlerGroup{}
//	observe.NewMetrics(prometheus.DefaultRegisterer).Attach(handlers)
//	observe.NewTracer(otel.GetTracerProvider()).Attach(handlers)
//	client := &netkit.Client{Handlers: handlers}
package observe
