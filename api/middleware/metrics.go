package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arepabuelas/arepabuelas-backend/pkg/metrics"
)

// Metrics records per-route request counters and latency histograms.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}
			start := time.Now()

			next.ServeHTTP(rec, r)

			status := rec.status
			if status == 0 {
				status = http.StatusOK
			}
			route := r.URL.Path
			if ctx := chi.RouteContext(r.Context()); ctx != nil {
				if pattern := ctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			m.Observe(route, r.Method, status, time.Since(start))
		})
	}
}
