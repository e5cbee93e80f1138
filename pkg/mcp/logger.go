package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/macropower/kls/pkg/log"
)

// TracedToolHandler is the handler type wrapped by [WithTracing].
type TracedToolHandler[In, Out any] func(
	context.Context,
	*mcp.ServerSession,
	*mcp.CallToolParamsFor[In],
) (*mcp.CallToolResultFor[Out], error)

// WithTracing wraps a handler with an OpenTelemetry span per tool call and
// structured logging. Errors are recorded on the span, and the logger stored
// in the handler's context carries the trace ID.
func WithTracing[In, Out any](
	tracer trace.Tracer,
	handler TracedToolHandler[In, Out],
) mcp.ToolHandlerFor[In, Out] {
	return func(
		ctx context.Context,
		session *mcp.ServerSession,
		params *mcp.CallToolParamsFor[In],
	) (*mcp.CallToolResultFor[Out], error) {
		name := params.Name
		start := time.Now()

		ctx, span := tracer.Start(ctx, name, trace.WithAttributes(
			attribute.String("mcp.tool", name),
		))
		defer span.End()

		logger := log.WithContext(ctx).With(slog.String("tool", name))
		ctx = log.NewContext(ctx, logger)

		logger.DebugContext(ctx, "handling tool call",
			slog.Any("progress_token", params.GetProgressToken()),
		)

		result, err := handler(ctx, session, params)
		if err != nil {
			logger.ErrorContext(ctx, "tool call failed",
				slog.Duration("duration", time.Since(start)),
				slog.Any("error", err),
			)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())

			return result, err
		}

		logger.DebugContext(ctx, "tool call completed",
			slog.Duration("duration", time.Since(start)),
		)

		return result, nil
	}
}
