package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"kaluste-backend/internal/metrics"
)

// Metrics records request counts and latencies per route.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		status := strconv.Itoa(wrapped.statusCode)
		path := normalizePath(r.URL.Path)
		metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// normalizePath collapses id-bearing segments so the path label stays low
// cardinality: /api/v1/products/abc -> /api/v1/products/{id}.
func normalizePath(path string) string {
	segments := strings.Split(path, "/")
	// Everything after a known collection segment is an identifier
	collections := map[string]bool{
		"products": true, "categories": true, "zones": true, "rules": true,
		"zone-prices": true, "invoices": true, "reservations": true,
		"trade-in-requests": true,
	}
	for i := 1; i < len(segments)-1; i++ {
		if collections[segments[i]] && segments[i+1] != "" && segments[i+1] != "tree" {
			segments[i+1] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}
