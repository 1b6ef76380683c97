package middleware

import (
	"net/http"
	"time"

	"github.com/Richardv10/food-blog/internal/metrics"
)

// Metrics records request counts and latency by route pattern. It must wrap
// the ServeMux directly so the mux-set Request.Pattern is visible after
// ServeHTTP returns.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.RecordHTTPRequest(r.Method, r.Pattern, rec.status, time.Since(start))
	})
}
