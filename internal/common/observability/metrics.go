package observability

import (
	"context"
	"time"

	"work-advisor/internal/common/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the otel meter and tracer used by the batch run loop.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          otelmetric.Meter
	tracer         trace.Tracer
	batchCounter   otelmetric.Int64Counter
	batchDuration  otelmetric.Float64Histogram
}

type Options struct {
	ServiceName   string
	TraceSampling float64
	// SpanProcessor is attached to the tracer provider when set (tests use a span recorder).
	SpanProcessor sdktrace.SpanProcessor
	Logger        logger.Logger
}

func New(opts Options) *Observability {
	log := logger.ForComponent(opts.Logger, "observability")

	tpOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(opts.TraceSampling))),
	}
	if opts.SpanProcessor != nil {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}
	tracerProvider := sdktrace.NewTracerProvider(tpOpts...)
	otel.SetTracerProvider(tracerProvider)

	o := &Observability{
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(opts.ServiceName),
	}

	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("Failed to create Prometheus exporter", map[string]interface{}{"error": err.Error()})
		return o
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(opts.ServiceName)

	batchCounter, _ := meter.Int64Counter(
		"batches.processed",
		otelmetric.WithDescription("Number of prediction batches processed"),
	)

	batchDuration, _ := meter.Float64Histogram(
		"batches.duration",
		otelmetric.WithDescription("Prediction batch duration"),
		otelmetric.WithUnit("ms"),
	)

	o.meterProvider = provider
	o.meter = meter
	o.batchCounter = batchCounter
	o.batchDuration = batchDuration
	return o
}

// Tracer returns a no-op tracer on a nil receiver.
func (o *Observability) Tracer() trace.Tracer {
	if o == nil || o.tracer == nil {
		return noop.NewTracerProvider().Tracer("")
	}
	return o.tracer
}

func (o *Observability) RecordBatchProcessed(ctx context.Context, status string) {
	if o != nil && o.batchCounter != nil {
		o.batchCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) RecordBatchDuration(ctx context.Context, duration time.Duration, status string) {
	if o != nil && o.batchDuration != nil {
		o.batchDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("status", status),
		))
	}
}

func (o *Observability) Shutdown() {
	if o == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
}
