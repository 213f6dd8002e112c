package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/hourdesk/appointments-api/pkg/logging"
)

// RequestLogger emits structured logs for every HTTP request. When the request
// carries an active trace span, the trace id is attached so logs can be joined
// with traces.
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}

			fields := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", reqID,
			}
			if spanCtx := trace.SpanContextFromContext(r.Context()); spanCtx.HasTraceID() {
				fields = append(fields, "trace_id", spanCtx.TraceID().String())
			}

			logger.Info("request started", append(fields, "remote_ip", r.RemoteAddr)...)
			next.ServeHTTP(w, r)
			logger.Info("request completed",
				append(fields, "duration_ms", time.Since(start).Milliseconds())...)
		})
	}
}
