// Copyright 2021 The netkit Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package observe

import (
	"github.com/gogama/netkit"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the spans made by Tracer.
const TracerName = "github.com/gogama/netkit/observe"

// A Tracer records one OpenTelemetry client span per completed request,
// spanning the request's lifecycle. The span's parent is taken from the
// request's context.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer returns a Tracer using tp.
func NewTracer(tp trace.TracerProvider) *Tracer {
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// Attach installs t in g.
func (t *Tracer) Attach(g *netkit.HandlerGroup) {
	g.PushBack(netkit.RequestCompleted, t)
}

// Handle records the span of a completed request. Other events are
// ignored.
func (t *Tracer) Handle(evt netkit.Event, r *netkit.Request) {
	if evt != netkit.RequestCompleted {
		return
	}
	e := r.Execution()
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", r.Method),
		attribute.String("url.full", r.URL.String()),
		attribute.Int64("netkit.uid", int64(e.UID)),
		attribute.Bool("netkit.mock", e.Mock),
	}
	if ep := endpointID(r); ep != "" {
		attrs = append(attrs, attribute.String("netkit.endpoint", ep))
	}
	if e.Response != nil {
		attrs = append(attrs,
			attribute.Int("http.response.status_code", e.Response.StatusCode),
			attribute.Int("http.response.body.size", len(e.Body)))
	}
	_, span := t.tracer.Start(r.Context(), "HTTP "+r.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithTimestamp(e.Start),
		trace.WithAttributes(attrs...))
	switch {
	case e.Err != nil:
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	case e.Response != nil && e.Response.StatusCode >= 400:
		span.SetStatus(codes.Error, e.Response.Status)
	}
	span.End(trace.WithTimestamp(e.End))
}
