package streamguard

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// defaultTracerName mirrors the teacher's "aleutian.trace" convention of
// naming the tracer after the package it instruments.
const defaultTracerName = "streamguard"

// traceFeed wraps one Feed call in an OpenTelemetry span, recording the
// engine name and decision kind as attributes. It never influences the
// returned Decision.
func traceFeed(ctx context.Context, tracer oteltrace.Tracer, engine string, fn func(context.Context) Decision) Decision {
	if tracer == nil {
		tracer = otel.Tracer(defaultTracerName)
	}
	ctx, span := tracer.Start(ctx, "streamguard.Engine.Feed",
		oteltrace.WithAttributes(attribute.String("engine", engine)))
	defer span.End()

	decision := fn(ctx)

	span.SetAttributes(attribute.String("decision", decision.Kind.String()))
	if decision.IsSuppress() {
		span.SetStatus(codes.Error, decision.Reason())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	return decision
}
