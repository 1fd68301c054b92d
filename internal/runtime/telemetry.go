package runtime

import (
	"context"
	"fmt"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// sdkVersion is reported as the service version resource attribute.
const sdkVersion = "1.4.0"

const (
	otelProtocolEnv       = "OTEL_EXPORTER_OTLP_PROTOCOL"
	otelTracesEndpointEnv = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
)

// SetupTelemetry installs the global propagators and, when an OTLP endpoint
// is configured, a batching tracer provider exporting over grpc or
// http/protobuf (selected by OTEL_EXPORTER_OTLP_PROTOCOL). The returned
// shutdown function flushes buffered spans.
//
// With no endpoint, span export is disabled but inbound trace context is
// still propagated into per-request spans, so request handling never depends
// on exporter health.
func SetupTelemetry(ctx context.Context, serviceName, endpoint string) (func(context.Context) error, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if endpoint == "" {
		endpoint = os.Getenv(otelTracesEndpointEnv)
	}
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	if serviceName == "" {
		serviceName = "ndc-connector"
	}

	var (
		exporter sdktrace.SpanExporter
		err      error
	)
	switch protocol := os.Getenv(otelProtocolEnv); protocol {
	case "", "grpc":
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	case "http/protobuf":
		exporter, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	default:
		return nil, fmt.Errorf("ndc: invalid OTLP protocol %q", protocol)
	}
	if err != nil {
		return nil, fmt.Errorf("ndc: creating OTLP exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(sdkVersion),
		)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
