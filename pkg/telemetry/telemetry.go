// Package telemetry provides OpenTelemetry tracing for the analysis
// pipeline.
//
// Configuration comes from the standard environment variables:
//
//	OTEL_ENABLED                  - enable tracing (default: false)
//	OTEL_SERVICE_NAME             - service name (default: twiggy)
//	OTEL_SERVICE_VERSION          - service version
//	OTEL_EXPORTER_OTLP_ENDPOINT   - OTLP collector endpoint
//	OTEL_EXPORTER_OTLP_PROTOCOL   - grpc or http/protobuf (default: grpc)
//	OTEL_EXPORTER_OTLP_HEADERS    - headers, e.g. Authorization=Bearer x
//	OTEL_EXPORTER_OTLP_INSECURE   - plain-text connection (default: false)
//	OTEL_TRACES_SAMPLER           - sampler (default: always_on)
//	OTEL_TRACES_SAMPLER_ARG       - sampler argument, e.g. a ratio
package telemetry

import (
	"context"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

var (
	globalConfig *Config
	configOnce   sync.Once
)

// ShutdownFunc flushes and shuts down the TracerProvider.
type ShutdownFunc func(ctx context.Context) error

func noopShutdown(_ context.Context) error { return nil }

// Init initializes OpenTelemetry and installs the global TracerProvider.
// When OTEL_ENABLED is not "true" it leaves the no-op provider in place.
func Init(ctx context.Context) (ShutdownFunc, error) {
	cfg := loadConfig()
	if !cfg.Enabled {
		return noopShutdown, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return noopShutdown, err
	}

	exporter, err := createExporter(ctx, cfg)
	if err != nil {
		return noopShutdown, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(createSampler(cfg)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp.Shutdown, nil
}

func createSampler(cfg *Config) sdktrace.Sampler {
	switch cfg.Sampler {
	case "always_off":
		return sdktrace.NeverSample()
	case "traceidratio", "parentbased_traceidratio":
		ratio := 1.0
		if v, err := strconv.ParseFloat(cfg.SamplerArg, 64); err == nil {
			ratio = v
		}
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	default:
		return sdktrace.AlwaysSample()
	}
}

// Enabled reports whether tracing is turned on.
func Enabled() bool {
	return loadConfig().Enabled
}

// Tracer returns the named tracer from the global provider.
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

func loadConfig() *Config {
	configOnce.Do(func() {
		globalConfig = LoadFromEnv()
	})
	return globalConfig
}
