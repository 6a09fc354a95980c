// Package observability provides OpenTelemetry tracing and metrics for the
// service layer. The engine and validators stay untouched; spans wrap the
// service entry points (evaluate, validate, publish).
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string        // e.g. "localhost:4317"
	SampleRate     float64       // 0.0 to 1.0
	BatchTimeout   time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns development defaults with telemetry disabled.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "keel",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        false,
	}
}

// Provider manages the trace and metric providers plus the engine-facing
// instruments.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	logger         *slog.Logger

	evaluations  metric.Int64Counter
	blocked      metric.Int64Counter
	validations  metric.Int64Counter
	publishes    metric.Int64Counter
	durationHist metric.Float64Histogram
}

// New creates an observability provider. With Enabled false, all
// instruments are no-ops and nothing is exported.
func New(ctx context.Context, config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	p := &Provider{
		config: config,
		logger: slog.Default().With("component", "observability"),
		tracer: noop.NewTracerProvider().Tracer("keel"),
	}
	if !config.Enabled {
		p.logger.InfoContext(ctx, "observability disabled")
		return p, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
			semconv.DeploymentEnvironment(config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if err := p.initTraceProvider(ctx, res); err != nil {
		return nil, err
	}
	if err := p.initMetricProvider(ctx, res); err != nil {
		return nil, err
	}

	p.tracer = otel.Tracer("keel", trace.WithInstrumentationVersion(config.ServiceVersion))
	meter := otel.Meter("keel", metric.WithInstrumentationVersion(config.ServiceVersion))
	if err := p.initInstruments(meter); err != nil {
		return nil, err
	}

	p.logger.InfoContext(ctx, "observability initialized",
		"service", config.ServiceName,
		"endpoint", config.OTLPEndpoint,
		"sample_rate", config.SampleRate,
	)
	return p, nil
}

func (p *Provider) initTraceProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}
	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	var sampler sdktrace.Sampler
	switch {
	case p.config.SampleRate >= 1.0:
		sampler = sdktrace.AlwaysSample()
	case p.config.SampleRate <= 0.0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(p.config.SampleRate)
	}

	p.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(p.config.BatchTimeout)),
		sdktrace.WithSampler(sampler),
	)
	otel.SetTracerProvider(p.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return nil
}

func (p *Provider) initMetricProvider(ctx context.Context, res *resource.Resource) error {
	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(p.config.OTLPEndpoint)}
	if p.config.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return fmt.Errorf("failed to create metric exporter: %w", err)
	}
	p.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
	)
	otel.SetMeterProvider(p.meterProvider)
	return nil
}

func (p *Provider) initInstruments(meter metric.Meter) error {
	var err error
	if p.evaluations, err = meter.Int64Counter("keel.evaluations",
		metric.WithDescription("Governance evaluations performed")); err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	if p.blocked, err = meter.Int64Counter("keel.evaluations.blocked",
		metric.WithDescription("Evaluations that resulted in a block")); err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	if p.validations, err = meter.Int64Counter("keel.validations",
		metric.WithDescription("Module validations performed")); err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	if p.publishes, err = meter.Int64Counter("keel.publishes",
		metric.WithDescription("Baseline publish attempts")); err != nil {
		return fmt.Errorf("failed to create counter: %w", err)
	}
	if p.durationHist, err = meter.Float64Histogram("keel.operation.duration",
		metric.WithDescription("Service operation duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return fmt.Errorf("failed to create histogram: %w", err)
	}
	return nil
}

// StartSpan opens a span for a service operation.
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// CountEvaluation records one evaluation and whether it blocked.
func (p *Provider) CountEvaluation(ctx context.Context, blocked bool) {
	if p.evaluations == nil {
		return
	}
	p.evaluations.Add(ctx, 1)
	if blocked {
		p.blocked.Add(ctx, 1)
	}
}

// CountValidation records one module validation.
func (p *Provider) CountValidation(ctx context.Context, kind string, valid bool) {
	if p.validations == nil {
		return
	}
	p.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("module", kind),
		attribute.Bool("valid", valid),
	))
}

// CountPublish records one publish attempt.
func (p *Provider) CountPublish(ctx context.Context, published bool) {
	if p.publishes == nil {
		return
	}
	p.publishes.Add(ctx, 1, metric.WithAttributes(attribute.Bool("published", published)))
}

// RecordDuration records one operation's elapsed time.
func (p *Provider) RecordDuration(ctx context.Context, op string, d time.Duration) {
	if p.durationHist == nil {
		return
	}
	p.durationHist.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(
		attribute.String("operation", op),
	))
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	var firstErr error
	if p.tracerProvider != nil {
		if err := p.tracerProvider.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if p.meterProvider != nil {
		if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
