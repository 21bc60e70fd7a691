package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"amlgen/internal/generator/metrics"
	"amlgen/internal/platform/tracer"
	dErrors "amlgen/pkg/domain-errors"
)

// Sink persists an export somewhere outside the process.
type Sink interface {
	Name() string
	Write(ctx context.Context, export Export) error
}

// Writer fans an export out to every configured sink in order, stopping at
// the first failure.
type Writer struct {
	sinks   []Sink
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  tracer.Tracer
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

func WithLogger(logger *slog.Logger) WriterOption {
	return func(w *Writer) {
		w.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) WriterOption {
	return func(w *Writer) {
		w.metrics = m
	}
}

func WithTracer(t tracer.Tracer) WriterOption {
	return func(w *Writer) {
		w.tracer = t
	}
}

func NewWriter(sinks []Sink, opts ...WriterOption) *Writer {
	w := &Writer{sinks: sinks}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	if w.tracer == nil {
		w.tracer = tracer.NewNoop()
	}
	return w
}

// Write assembles d and hands the export to each sink.
func (w *Writer) Write(ctx context.Context, d *Dataset) error {
	export, err := d.Export()
	if err != nil {
		return err
	}
	for _, sink := range w.sinks {
		if err := w.writeOne(ctx, sink, export); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) writeOne(ctx context.Context, sink Sink, export Export) (err error) {
	ctx, span := w.tracer.Start(ctx, tracer.SpanSink, tracer.String(tracer.AttrSink, sink.Name()))
	defer func() { span.End(err) }()

	start := time.Now()
	if err = sink.Write(ctx, export); err != nil {
		w.logger.ErrorContext(ctx, "dataset sink failed", "sink", sink.Name(), "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, fmt.Sprintf("write %s sink: %v", sink.Name(), err))
	}
	elapsed := time.Since(start)
	if w.metrics != nil {
		w.metrics.ObserveSinkLatency(sink.Name(), elapsed)
	}
	w.logger.InfoContext(ctx, "dataset written",
		"sink", sink.Name(),
		"users", export.Users.Len(),
		"transactions", export.Transactions.Len(),
		"alerts", export.Alerts.Len(),
		"elapsed", elapsed,
	)
	return nil
}
