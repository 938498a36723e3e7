// Package tracing opens one OpenTelemetry span per invocation.
package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/unkn0wn-root/gridchain"
)

const instrumentation = "github.com/unkn0wn-root/gridchain"

type spanKey struct{}

// Stage starts a span before the command and ends it after the unwind of the
// inner stages. The span's context replaces the invocation's context so that
// store and container I/O below it is parented to the span.
type Stage struct {
	tracer trace.Tracer
}

// New uses the global tracer provider when tp is nil.
func New(tp trace.TracerProvider) *Stage {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Stage{tracer: tp.Tracer(instrumentation)}
}

func (s *Stage) Name() string { return "tracing" }

func (s *Stage) BeforeCommand(pc *gridchain.PipelineContext, cmd gridchain.Command) gridchain.Step {
	ctx, span := s.tracer.Start(pc.Context(), "gridchain."+gridchain.NameOf(cmd),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("gridchain.invocation", pc.ID().String()),
			attribute.StringSlice("gridchain.keys", gridchain.KeysOf(cmd)),
			attribute.String("gridchain.flags", gridchain.FlagsOf(cmd).String()),
		),
	)
	pc.Set(spanKey{}, span)
	pc.SetContext(ctx)
	return gridchain.Next()
}

func (s *Stage) AfterCommand(pc *gridchain.PipelineContext, _ gridchain.Command, _ any, err error) gridchain.Step {
	span, ok := pc.Value(spanKey{}).(trace.Span)
	if !ok {
		return gridchain.Next()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	return gridchain.Next()
}
