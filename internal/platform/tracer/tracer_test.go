package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"amlgen/internal/platform/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanStage,
		tracer.String(tracer.AttrStage, "smurfing"),
		tracer.Bool(tracer.AttrParallel, true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Int(tracer.AttrTransactions, 11))
	span.AddEvent(tracer.EventVerified, tracer.Int64("count", 42))
	span.End(errors.New("stage failed"))
}

func TestOTelTracer_WithInjectedTracer(t *testing.T) {
	tr := tracer.NewOTel(tracer.WithOTelTracer(noop.NewTracerProvider().Tracer("test")))

	ctx, span := tr.Start(context.Background(), tracer.SpanRun,
		tracer.Uint64(tracer.AttrSeed, 42),
		tracer.Int(tracer.AttrUsers, 100),
		tracer.Float64("ratio", 0.5),
	)
	require.NotNil(t, ctx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Duration("elapsed", 1500*time.Millisecond))
	span.AddEvent(tracer.EventVerified)
	span.End(nil)
}

func TestOTelTracer_DefaultsToGlobalProvider(t *testing.T) {
	tr := tracer.NewOTel()
	_, span := tr.Start(context.Background(), tracer.SpanSink, tracer.String(tracer.AttrSink, "csv"))
	span.End(errors.New("disk full"))
}

func TestAttributeConstructors(t *testing.T) {
	assert.Equal(t, uint64(7), tracer.Uint64("seed", 7).Value)
	assert.Equal(t, 3, tracer.Int("n", 3).Value)
	assert.Equal(t, int64(150), tracer.Duration("latency", 150*time.Millisecond).Value)
	assert.Equal(t, "v", tracer.String("k", "v").Value)
}
