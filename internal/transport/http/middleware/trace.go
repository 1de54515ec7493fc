package middleware

import (
	"net/http"

	"github.com/go-matchmaker/internal/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const TraceIDHeader = "X-Trace-ID"

// TraceID tags the request with a trace id, reusing the caller's X-Trace-ID
// when present, and attaches a child logger carrying it to the request context.
func TraceID(base *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := r.Header.Get(TraceIDHeader)
			if traceID == "" {
				traceID = uuid.NewString()
			}

			l := base.GetChildLogger()
			l.UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Str("trace_id", traceID)
			})

			w.Header().Set(TraceIDHeader, traceID)
			next.ServeHTTP(w, r.WithContext(l.WithContext(r.Context())))
		})
	}
}
