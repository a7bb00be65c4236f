package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer names
const (
	TracerGate   = "foundationapi/gate"
	TracerServer = "foundationapi/server"
)

// Span attribute keys
const (
	AttrPath     = "gate.path"
	AttrArea     = "gate.area"
	AttrDecision = "gate.decision"
	AttrReason   = "gate.reason"
	AttrUserID   = "principal.id"
	AttrRole     = "principal.role"
)

// StartSpan starts a span on the named tracer.
//
//	ctx, span := telemetry.StartSpan(ctx, telemetry.TracerGate, "gate.Evaluate",
//	    attribute.String(telemetry.AttrPath, path),
//	)
//	defer span.End()
func StartSpan(ctx context.Context, tracerName, spanName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, spanName, trace.WithAttributes(attrs...))
}

// RecordError marks span failed with err. A nil err is ignored.
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
