// Package telemetry installs the global OpenTelemetry tracer provider used by
// the soap and playground tracing middlewares.
package telemetry

import (
	"context"
	"fmt"

	"github.com/coderi421/adkit/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/zipkin"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Shutdown flushes the pending spans.
type Shutdown func(ctx context.Context) error

func NewExporter(cfg config.TelemetryConfig) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "jaeger":
		return jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(cfg.Endpoint)))
	case "zipkin":
		return zipkin.New(cfg.Endpoint)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("telemetry: unknown exporter %q", cfg.Exporter)
	}
}

// NewProvider builds a tracer provider around exp. A nil exp gives a
// provider that samples nothing.
func NewProvider(cfg config.TelemetryConfig, exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))
	if exp == nil {
		return sdktrace.NewTracerProvider(
			sdktrace.WithResource(res),
			sdktrace.WithSampler(sdktrace.NeverSample()),
		)
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)
}

// Setup 设置全局的 TracerProvider 和 TextMapPropagator
func Setup(cfg config.TelemetryConfig) (Shutdown, error) {
	exp, err := NewExporter(cfg)
	if err != nil {
		return nil, err
	}
	tp := NewProvider(cfg, exp)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))
	return tp.Shutdown, nil
}
