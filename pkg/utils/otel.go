// Copyright Laneway and each contributor to Laneway.
// SPDX-License-Identifier: MIT

package utils

import (
	"context"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OTelConfig holds the OpenTelemetry configuration for the service.
type OTelConfig struct {
	ServiceName      string
	ServiceVersion   string
	ExporterEndpoint string
	ExporterInsecure bool
	TracesEnabled    bool
	SampleRatio      float64
}

// OTelConfigFromEnv builds the OTel configuration from the standard
// OTEL_* environment variables.
func OTelConfigFromEnv(defaultServiceName string) OTelConfig {
	cfg := OTelConfig{
		ServiceName:      os.Getenv("OTEL_SERVICE_NAME"),
		ServiceVersion:   os.Getenv("OTEL_SERVICE_VERSION"),
		ExporterEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ExporterInsecure: os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true",
		TracesEnabled:    os.Getenv("OTEL_TRACES_EXPORTER") != "none",
		SampleRatio:      1.0,
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}
	if ratio := os.Getenv("OTEL_TRACES_SAMPLE_RATIO"); ratio != "" {
		if parsed, err := strconv.ParseFloat(ratio, 64); err == nil && parsed >= 0 && parsed <= 1 {
			cfg.SampleRatio = parsed
		}
	}
	return cfg
}

// InitTracing sets up the global tracer provider and W3C propagation.
// The returned shutdown function flushes remaining spans; it is safe to
// call even when tracing is disabled.
func InitTracing(ctx context.Context, cfg OTelConfig) (func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !cfg.TracesEnabled || cfg.ExporterEndpoint == "" {
		return noop, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpointURL(cfg.ExporterEndpoint)}
	if cfg.ExporterInsecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return noop, err
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(cfg.ServiceName),
		semconv.ServiceVersion(cfg.ServiceVersion),
	))
	if err != nil {
		return noop, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
