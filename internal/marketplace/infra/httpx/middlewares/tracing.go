package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/course-marketplace/internal/pkg/reqctx"
)

// AttachTracingMetadata copies chi's request id into reqctx, the response
// headers and the active server span, then renames that span to the
// matched route pattern. It must run after middleware.RequestID and inside
// the otelhttp middleware that starts the span.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := middleware.GetReqID(ctx)
		ctx = reqctx.WithRequestID(ctx, requestID)
		w.Header().Set(reqctx.HeaderXRequestId, requestID)

		span := trace.SpanFromContext(ctx)
		span.SetAttributes(attribute.String("request.id", requestID))

		next.ServeHTTP(w, r.WithContext(ctx))

		if rctx := chi.RouteContext(ctx); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				span.SetName(r.Method + " " + pattern)
			}
		}
	})
}
