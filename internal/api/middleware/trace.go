package middleware

import (
	"log/slog"
	"net/http"

	"github.com/taskflowhq/taskflow-api/internal/api/shared"
)

// TraceMiddleware attaches a trace ID to the request context. Apply it
// early so every downstream handler and error response can correlate
// with the logs.
func TraceMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := shared.SetTraceID(r.Context())

		slog.With(slog.String("trace_id", shared.GetTraceID(ctx))).
			Debug("request started",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
