// Package tracing configures the OpenTelemetry tracer provider.
package tracing

import (
	"context"

	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

const TracerName = "github.com/dmitrijs2005/letterdesk"

// Init installs an OTLP HTTP exporter when endpoint is set. With an empty
// endpoint tracing stays a no-op and the returned shutdown does nothing.
func Init(ctx context.Context, log logging.Logger, endpoint, serviceName string) (func(context.Context) error, error) {
	if endpoint == "" {
		log.Info(ctx, "tracing disabled: OTEL_EXPORTER_OTLP_ENDPOINT not set")
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(endpoint), otlptracehttp.WithInsecure())
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	log.Info(ctx, "tracing initialized", "endpoint", endpoint)
	return tp.Shutdown, nil
}

// Tracer returns the project tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(TracerName)
}
