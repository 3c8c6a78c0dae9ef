// Package observability sets up OpenTelemetry tracing. Spans come from
// otelgin on inbound requests, otelhttp on outbound calls and the scene
// generator.
package observability

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/Shimizu-Technology/storyboard-api/internal/logging"
)

// Config selects the exporter and sampling.
type Config struct {
	Enabled     bool
	ServiceName string
	Version     string
	Environment string
	Endpoint    string // OTLP/HTTP host:port; empty = stdout
	Insecure    bool
	SampleRatio float64
}

// Init installs the global tracer provider and returns its shutdown func.
// When tracing is disabled the returned func is a no-op and the global
// no-op provider stays in place.
func Init(ctx context.Context, log *logging.Logger, cfg Config) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return noop
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "storyboard-api"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		log.Warn("otel resource init failed (continuing)", "error", err)
	}

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		log.Warn("otel exporter init failed, tracing disabled", "error", err)
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(clampRatio(cfg.SampleRatio)))),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "stdout"
	}
	log.Info("🔭 Tracing initialized", "service", serviceName, "exporter", endpoint)
	return tp.Shutdown
}

func buildExporter(ctx context.Context, cfg Config) (sdktrace.SpanExporter, error) {
	if cfg.Endpoint == "" {
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	return otlptracehttp.New(ctx, opts...)
}

func clampRatio(r float64) float64 {
	switch {
	case r < 0:
		return 0
	case r > 1:
		return 1
	}
	return r
}
