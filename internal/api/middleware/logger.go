package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"aurora/internal/logbus"
)

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += n
	return n, err
}

// NewLogger returns request logging middleware that emits a structured
// zerolog event per request and a paired →/← pair of events on bus, per
// the log bus's request/response categories.
func NewLogger(bus *logbus.Bus) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := newResponseWriter(w)

			if bus != nil {
				bus.Publish(logbus.CategoryRequest, "→ %s %s", r.Method, r.URL.Path)
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			if bus != nil {
				bus.Publish(logbus.CategoryResponse, "← %d %s %s (%s)", rw.statusCode, r.Method, r.URL.Path, duration)
			}

			event := log.Info()
			if rw.statusCode >= 400 {
				event = log.Warn()
			}
			if rw.statusCode >= 500 {
				event = log.Error()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rw.statusCode).
				Int("bytes", rw.bytes).
				Dur("duration", duration).
				Str("remote", r.RemoteAddr).
				Str("user_agent", r.UserAgent()).
				Msg("request")
		})
	}
}
