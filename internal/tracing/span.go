package tracing

import (
	"context"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/target"
)

const (
	AttrRequestID  = attribute.Key("volley.request_id")
	AttrServerTime = attribute.Key("volley.server_time_ms")
	AttrStatusCode = attribute.Key("http.response.status_code")
)

// StartRequestSpan starts a client span for one GET against tgt.
func (p *Provider) StartRequestSpan(ctx context.Context, tgt target.Target, requestID int64) (context.Context, trace.Span) {
	ctx, span := p.Tracer().Start(ctx, "GET "+tgt.Path,
		trace.WithSpanKind(trace.SpanKindClient),
	)
	span.SetAttributes(
		attribute.String("http.request.method", http.MethodGet),
		attribute.String("url.full", tgt.String()),
		attribute.String("server.address", tgt.Host),
		attribute.Int("server.port", tgt.Port),
		AttrRequestID.Int64(requestID),
	)
	return ctx, span
}

// Inject writes W3C trace context for ctx into headers.
func (p *Provider) Inject(ctx context.Context, headers http.Header) {
	if !p.ShouldPropagate() {
		return
	}
	p.propagator.Inject(ctx, propagation.HeaderCarrier(headers))
}

// EndRequestSpan records the outcome on span and ends it. Transport failures
// and 5xx responses mark the span as an error.
func EndRequestSpan(span trace.Span, o metrics.Outcome) {
	span.SetAttributes(AttrStatusCode.Int(o.Status))
	if o.HasServerTime() {
		span.SetAttributes(AttrServerTime.Int64(o.ServerTime))
	}
	switch {
	case o.Failed():
		span.RecordError(errors.New(o.Error))
		span.SetAttributes(attribute.String("error.type", o.ErrorKind))
		span.SetStatus(codes.Error, o.Error)
	case o.Status >= 500:
		span.SetStatus(codes.Error, http.StatusText(o.Status))
	default:
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
