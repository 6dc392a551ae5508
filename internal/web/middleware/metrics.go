package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pd_http_requests_total",
			Help: "HTTP requests handled, by method, route, and status.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pd_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// Metrics returns an HTTP middleware recording a request counter and a
// duration histogram per route. Dynamic path segments are normalized to
// route patterns so label cardinality stays bounded.
func Metrics() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(ww.status)

			httpRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

// normalizePath folds table names, row ids, and retrieval ids back into
// their route patterns.
func normalizePath(path string) string {
	switch path {
	case "/", "/healthz", "/metrics", "/api/toggle":
		return path
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch parts[0] {
	case "tables":
		switch len(parts) {
		case 2:
			return "/tables/{table}"
		case 3:
			switch parts[2] {
			case "register", "import", "export":
				return "/tables/{table}/" + parts[2]
			}
		case 4:
			if parts[2] == "rows" {
				return "/tables/{table}/rows/{id}"
			}
		}
	case "failed":
		if len(parts) == 2 {
			return "/failed/{id}"
		}
	}

	return path
}
