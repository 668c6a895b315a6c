package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/iudanet/gophdraw/internal/metrics"
)

// statusRecorder запоминает код ответа и размер тела
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *statusRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.bytes += int64(n)
	return n, err
}

// LoggingMiddleware логирует запросы к API и считает их в collector
// (может быть nil). Пути из quietPaths (health, /metrics) только считаются.
func LoggingMiddleware(logger *slog.Logger, collector *metrics.Collector, quietPaths ...string) func(http.Handler) http.Handler {
	quiet := make(map[string]bool, len(quietPaths))
	for _, p := range quietPaths {
		quiet[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			started := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			collector.HTTPRequest(r.Method, rec.status)
			if quiet[r.URL.Path] {
				return
			}

			// r.Pattern заполняет ServeMux при разборе маршрута
			logger.Log(r.Context(), levelFor(rec.status), "API request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", r.Pattern,
				"status", rec.status,
				"duration", time.Since(started),
				"bytes", rec.bytes,
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
