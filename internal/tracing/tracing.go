// Package tracing sets up OpenTelemetry tracing and exposes span helpers for
// the ranking engine and the Postgres repository.
package tracing

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/talentmatch/pkg/logger"
)

const (
	exporterTimeout    = 10 * time.Second
	batchTimeout       = 5 * time.Second
	maxExportBatchSize = 512
)

// Config holds the tracing settings.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	Enabled        bool
	Endpoint       string  // OTLP/HTTP collector host:port
	SamplingRate   float64 // 0..1
	Insecure       bool
}

// Option applies a configuration option to the Provider.
type Option func(*Provider)

// WithLogger sets the logger used for lifecycle messages.
func WithLogger(l logger.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.log = l
		}
	}
}

// WithExporter replaces the OTLP exporter, e.g. with an in-memory one.
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(p *Provider) {
		p.exporter = exp
	}
}

// Provider owns the SDK tracer provider.
type Provider struct {
	tp       *sdktrace.TracerProvider
	exporter sdktrace.SpanExporter
	log      logger.Logger
	config   Config
}

// NewProvider builds and installs the global tracer provider. A disabled
// config yields a Provider that leaves the global no-op tracer in place.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	p := &Provider{config: cfg}
	for _, opt := range opts {
		opt(p)
	}

	if !cfg.Enabled {
		p.info(ctx, "tracing disabled")
		return p, nil
	}
	if cfg.ServiceName == "" {
		return nil, fmt.Errorf("%w: service name is required", ErrInvalidConfig)
	}
	if cfg.SamplingRate < 0 || cfg.SamplingRate > 1 {
		return nil, fmt.Errorf("%w: sampling rate must be between 0 and 1, got %f", ErrInvalidConfig, cfg.SamplingRate)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			attribute.String("environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	if p.exporter == nil {
		p.exporter, err = newHTTPExporter(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("create exporter: %w", err)
		}
	}

	var sampler sdktrace.Sampler
	switch cfg.SamplingRate {
	case 1:
		sampler = sdktrace.AlwaysSample()
	case 0:
		sampler = sdktrace.NeverSample()
	default:
		sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
	}

	p.tp = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sampler)),
		sdktrace.WithBatcher(p.exporter,
			sdktrace.WithBatchTimeout(batchTimeout),
			sdktrace.WithMaxExportBatchSize(maxExportBatchSize),
		),
	)
	otel.SetTracerProvider(p.tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	p.info(ctx, "tracing initialized",
		logger.String("service", cfg.ServiceName),
		logger.String("endpoint", cfg.Endpoint),
		logger.Float64("sampling_rate", cfg.SamplingRate),
	)
	return p, nil
}

func newHTTPExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	var opts []otlptracehttp.Option
	if cfg.Endpoint != "" {
		opts = append(opts, otlptracehttp.WithEndpoint(cfg.Endpoint))
	}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	ctx, cancel := context.WithTimeout(ctx, exporterTimeout)
	defer cancel()
	return otlptracehttp.New(ctx, opts...)
}

// Shutdown flushes pending spans and stops the provider.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	p.info(ctx, "shutting down tracer provider")
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown tracer provider: %w", err)
	}
	return nil
}

// Tracer returns a named tracer from this provider, or the global one when
// tracing is disabled.
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tp == nil {
		return otel.Tracer(name)
	}
	return p.tp.Tracer(name)
}

// IsEnabled reports whether spans are exported.
func (p *Provider) IsEnabled() bool {
	return p.tp != nil
}

func (p *Provider) info(ctx context.Context, msg string, fields ...logger.Field) {
	if p.log != nil {
		p.log.Info(ctx, msg, fields...)
	}
}
