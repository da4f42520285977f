package middleware

import (
	"net/http"
	"time"

	"github.com/Riwi-io-Medellin/SQL/internal/metrics"
)

// Prometheus records request duration and count per route pattern, so static
// file paths collapse into "/*" instead of one series per file.
func Prometheus(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		statusW := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(statusW, r)
		if r.URL.Path == "/metrics" {
			return
		}
		route := routePattern(r)
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(r.Method, route, statusW.status, time.Since(start).Seconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
