package httpapi

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var apiTracer = otel.Tracer("esports-stats/internal/interfaces/httpapi")

// tracedGuards are middlewares that can reject a request on their own and so
// deserve a span next to the handler spans.
var tracedGuards = map[string]struct{}{
	"httpapi.RequireScrapeToken": {},
	"httpapi.RateLimit":          {},
}

// startSpan opens a child of the request span for handlers and guards only.
// Untraced requests (healthz, metrics) and plumbing get the parent back.
func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	parent := trace.SpanFromContext(ctx)
	if !parent.SpanContext().IsValid() || !spanWorthy(name) {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return apiTracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func spanWorthy(name string) bool {
	if strings.HasPrefix(name, "httpapi.Handler.") {
		return true
	}
	_, ok := tracedGuards[name]
	return ok
}
