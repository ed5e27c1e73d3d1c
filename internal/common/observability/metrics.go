package observability

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	otelmetric "go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// Observability bundles the OpenTelemetry meter and tracer used by a run.
type Observability struct {
	meterProvider  *metric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	stepCounter    otelmetric.Int64Counter
	stepDuration   otelmetric.Float64Histogram
}

// New wires an OTel meter provider into reg through the Prometheus exporter
// and a tracer provider with the given options (span processors, samplers).
func New(serviceName string, reg prometheus.Registerer, traceOpts ...sdktrace.TracerProviderOption) (*Observability, error) {
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	meterProvider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := meterProvider.Meter(serviceName)

	stepCounter, err := meter.Int64Counter(
		"seed.steps",
		otelmetric.WithDescription("Number of pipeline steps executed"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"seed.step.duration",
		otelmetric.WithDescription("Pipeline step duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOpts...)

	return &Observability{
		meterProvider:  meterProvider,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(serviceName),
		stepCounter:    stepCounter,
		stepDuration:   stepDuration,
	}, nil
}

// NewTraceExporter builds the span exporter named by kind. "none" yields a nil
// exporter and no error.
func NewTraceExporter(kind string, w io.Writer) (sdktrace.SpanExporter, error) {
	switch kind {
	case "", "none":
		return nil, nil
	case "stdout":
		exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		return exp, nil
	default:
		return nil, fmt.Errorf("unknown trace exporter %q", kind)
	}
}

// Noop returns an Observability that records nothing.
func Noop() *Observability {
	meter := metricnoop.NewMeterProvider().Meter("")
	counter, _ := meter.Int64Counter("seed.steps")
	hist, _ := meter.Float64Histogram("seed.step.duration")
	return &Observability{
		tracer:       tracenoop.NewTracerProvider().Tracer(""),
		stepCounter:  counter,
		stepDuration: hist,
	}
}

func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// RecordStep counts one pipeline step and its duration.
func (o *Observability) RecordStep(ctx context.Context, step string, duration time.Duration, status string) {
	attrs := otelmetric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	)
	o.stepCounter.Add(ctx, 1, attrs)
	o.stepDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// Shutdown flushes both providers.
func (o *Observability) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if o.tracerProvider != nil {
		_ = o.tracerProvider.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		_ = o.meterProvider.Shutdown(ctx)
	}
}
