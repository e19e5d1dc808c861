package client

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the client's tracer.
const TracerName = "github.com/vango-dev/whistle/pkg/client"

func newTracer(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(TracerName)
}

// renderSpan traces the application of one patch batch.
type renderSpan struct {
	span   trace.Span
	failed int
}

func startRenderSpan(tracer trace.Tracer, p *Program, patches int) *renderSpan {
	_, span := tracer.Start(context.Background(), "whistle.render",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("whistle.program", p.name),
			attribute.String("whistle.program_id", p.id),
			attribute.Int("whistle.patch_count", patches),
		),
	)
	return &renderSpan{span: span}
}

func (s *renderSpan) recordError(err error) {
	s.failed++
	s.span.RecordError(err)
}

func (s *renderSpan) end(mounts int) {
	s.span.SetAttributes(attribute.Int("whistle.deferred_mounts", mounts))
	if s.failed > 0 {
		s.span.SetStatus(codes.Error, fmt.Sprintf("%d patches skipped", s.failed))
	} else {
		s.span.SetStatus(codes.Ok, "")
	}
	s.span.End()
}
