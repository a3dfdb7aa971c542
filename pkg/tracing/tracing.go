// Package tracing sets up the OpenTelemetry tracer provider that exports
// spans over OTLP/HTTP.
package tracing

import (
	"context"
	"errors"
	"net/url"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	errNoURL     = errors.New("url is empty")
	errNoSvcName = errors.New("service name is empty")
)

// NewProvider returns a tracer provider sampling fraction of the traces and
// sends them to the collector at collectorURL. It also becomes the global provider.
func NewProvider(ctx context.Context, svcName string, collectorURL url.URL, instanceID string, fraction float64) (*sdktrace.TracerProvider, error) {
	if collectorURL == (url.URL{}) {
		return nil, errNoURL
	}
	if svcName == "" {
		return nil, errNoSvcName
	}

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(collectorURL.Host),
		otlptracehttp.WithURLPath(collectorURL.Path),
	}
	if collectorURL.Scheme != "https" {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", svcName),
		attribute.String("host.id", instanceID),
	)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(fraction)),
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))

	return tp, nil
}
