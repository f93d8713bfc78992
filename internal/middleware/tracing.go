package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/playtrade/storefront/internal/logging"
)

// TracingMiddleware assigns a trace ID to every request and logs the
// outcome. Incoming X-Trace-ID headers are honored so the frontend can
// correlate its own logs with the gateway's.
func TracingMiddleware(logger *logging.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get("X-Trace-ID")
			if traceID == "" {
				traceID = logging.NewTraceID()
			}

			ctx := logging.WithTraceID(r.Context(), traceID)
			w.Header().Set("X-Trace-ID", traceID)

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			start := time.Now()
			next.ServeHTTP(wrapped, r.WithContext(ctx))

			logger.LogRequest(ctx, r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
		})
	}
}
