package middleware

import (
	"github.com/driftwood-collective/server/internal/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/driftwood-collective/server/internal/api"

// Tracing opens a span per request, named after the matched route
// pattern so unmatched paths do not explode span-name cardinality.
func Tracing() api.Middleware {
	tracer := otel.Tracer(tracerName)
	return func(c *api.Context, next api.Next) error {
		route := c.RoutePattern
		if route == "" {
			route = "unmatched"
		}
		ctx, span := tracer.Start(c.Request.Context(), c.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Request.Method),
				attribute.String("http.route", route),
				attribute.String("http.target", c.Request.URL.Path),
			),
		)
		defer span.End()
		c.Request = c.Request.WithContext(ctx)

		err := next()
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}
