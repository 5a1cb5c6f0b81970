package telemetry

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "ruckplan-api"

// TracingMiddleware returns a Fiber middleware that traces HTTP requests
func TracingMiddleware() fiber.Handler {
	tracer := otel.Tracer(tracerName)
	propagator := otel.GetTextMapPropagator()

	return func(c *fiber.Ctx) error {
		// Pick up trace context forwarded by the mobile clients
		ctx := propagator.Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))

		spanName := fmt.Sprintf("%s %s", c.Method(), c.Path())

		ctx, span := tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.url", c.OriginalURL()),
				attribute.String("http.route", c.Route().Path),
				attribute.String("http.host", c.Hostname()),
				attribute.String("http.user_agent", c.Get("User-Agent")),
				attribute.String("http.client_ip", c.IP()),
			),
		)
		defer span.End()

		// Make the span reachable from handlers and repositories
		c.SetUserContext(ctx)

		// Trace ID in the response lets support correlate a user report
		if span.SpanContext().HasTraceID() {
			c.Set("X-Trace-ID", span.SpanContext().TraceID().String())
		}

		err := c.Next()

		statusCode := c.Response().StatusCode()
		span.SetAttributes(
			attribute.Int("http.status_code", statusCode),
			attribute.Int("http.response_content_length", len(c.Response().Body())),
		)

		if statusCode >= 400 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", statusCode))
		} else {
			span.SetStatus(codes.Ok, "")
		}

		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}

		return err
	}
}

// MetricsMiddleware counts requests and records latency per route.
func MetricsMiddleware() fiber.Handler {
	meter := otel.Meter(tracerName)

	requests, err := meter.Int64Counter("http.server.requests",
		otelmetric.WithDescription("Completed HTTP requests"),
	)
	if err != nil {
		log.Printf("Warning: failed to create request counter: %v", err)
	}
	latency, err := meter.Float64Histogram("http.server.duration",
		otelmetric.WithDescription("Request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		log.Printf("Warning: failed to create latency histogram: %v", err)
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		attrs := otelmetric.WithAttributes(
			attribute.String("http.method", c.Method()),
			attribute.String("http.route", c.Route().Path),
			attribute.String("http.status_code", strconv.Itoa(c.Response().StatusCode())),
		)
		if requests != nil {
			requests.Add(c.UserContext(), 1, attrs)
		}
		if latency != nil {
			latency.Record(c.UserContext(), float64(time.Since(start).Microseconds())/1000, attrs)
		}

		return err
	}
}

// SpanFromContext gets the current span from Fiber context
func SpanFromContext(c *fiber.Ctx) trace.Span {
	return trace.SpanFromContext(c.UserContext())
}

// AddSpanEvent adds an event to the current span
func AddSpanEvent(c *fiber.Ctx, name string, attrs ...attribute.KeyValue) {
	span := SpanFromContext(c)
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
