package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/macropower/kls/pkg/version"
)

const tracingShutdownTimeout = 5 * time.Second

// setupTracing exports spans to the OTLP gRPC endpoint. The returned function
// flushes and stops the exporter.
func setupTracing(ctx context.Context, endpoint string, insecure bool) (func(context.Context) error, error) {
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	}

	exporter, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", cmdName),
			attribute.String("service.version", version.GetVersion()),
		)),
	)

	otel.SetTracerProvider(tp)

	slog.Debug("exporting traces", slog.String("endpoint", endpoint))

	return tp.Shutdown, nil
}

// shutdownTracing stops the tracer provider started by [setupTracing], if any.
func (ra *RootArgs) shutdownTracing() error {
	if ra.tracingShutdown == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), tracingShutdownTimeout)
	defer cancel()

	err := ra.tracingShutdown(ctx)
	ra.tracingShutdown = nil

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown tracing: %w", err)
	}

	return nil
}
