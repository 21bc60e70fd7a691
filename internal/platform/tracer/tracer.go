// Package tracer provides a lightweight tracing abstraction for generation runs.
//
// The Tracer interface keeps OpenTelemetry out of the generator packages. A run
// opens one parent span and a child span per stage, so a slow or failing stage
// can be located in a trace without reading logs.
//
// Implementations:
//   - NoopTracer: for tests and for binaries without a tracer provider
//   - OTelTracer: OpenTelemetry adapter
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err if non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use,
// since injectors may run in parallel.
type Tracer interface {
	// Start creates a new span with the given name and attributes.
	//
	// Example:
	//   ctx, span := tracer.Start(ctx, tracer.SpanStage,
	//       tracer.String(tracer.AttrStage, "mule_ring"),
	//   )
	//   defer span.End(err)
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Uint64(key string, value uint64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanRun   = "amlgen.run"
	SpanStage = "amlgen.stage"
	SpanSink  = "amlgen.sink"
)

// Attribute keys.
const (
	AttrSeed         = "seed"
	AttrStage        = "stage"
	AttrParallel     = "parallel"
	AttrSink         = "sink"
	AttrUsers        = "users"
	AttrTransactions = "transactions"
	AttrAlerts       = "alerts"
)

// Event names.
const (
	EventVerified = "dataset.verified"
)
