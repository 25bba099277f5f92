package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/andriiyaremenko/tinyioc"
)

const instrumentationName = "github.com/andriiyaremenko/tinyioc/observe"

var _ tinyioc.Observer = new(Tracer)

// Tracer turns container events into spans.
// Spans keep event timestamps, so they are recorded after the fact.
type Tracer struct {
	ctx    context.Context
	tracer trace.Tracer
}

// Returns Tracer that starts spans as children of the span in ctx, if any.
func NewTracer(ctx context.Context, tp trace.TracerProvider) *Tracer {
	return &Tracer{ctx: ctx, tracer: tp.Tracer(instrumentationName)}
}

func (t *Tracer) PhaseCompleted(e tinyioc.PhaseEvent) {
	_, span := t.tracer.Start(
		t.ctx,
		"tinyioc."+e.Phase.String(),
		trace.WithTimestamp(e.Started),
		trace.WithAttributes(
			attribute.String("tinyioc.phase", e.Phase.String()),
			attribute.Int("tinyioc.beans", e.Beans),
		),
	)

	end(span, e.Err, e.Finished)
}

func (t *Tracer) BeanInstantiated(e tinyioc.BeanEvent) {
	_, span := t.tracer.Start(
		t.ctx,
		"tinyioc.instantiate",
		trace.WithTimestamp(e.Started),
		trace.WithAttributes(
			attribute.String("tinyioc.bean.name", e.Name),
			attribute.String("tinyioc.bean.type", e.Type),
		),
	)

	end(span, e.Err, e.Finished)
}

func end(span trace.Span, err error, finished time.Time) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	span.End(trace.WithTimestamp(finished))
}
