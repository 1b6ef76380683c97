package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodblog_http_requests_total",
			Help: "Total number of HTTP requests by route pattern and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodblog_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Outbound recipe API calls
	APICallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodblog_recipe_api_calls_total",
			Help: "Total number of external recipe API calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	APICallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodblog_recipe_api_call_duration_seconds",
			Help:    "Duration of external recipe API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	SearchCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodblog_search_cache_lookups_total",
			Help: "Search cache lookups by result (hit or miss)",
		},
		[]string{"result"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "foodblog_websocket_clients",
			Help: "Number of connected feed websocket clients",
		},
	)
)

// RecordHTTPRequest records a served request. An empty route is reported as "unmatched".
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordAPICall records one call to the recipe API.
func RecordAPICall(endpoint string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	APICallsTotal.WithLabelValues(endpoint, outcome).Inc()
	APICallDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func RecordCacheLookup(hit bool) {
	if hit {
		SearchCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	SearchCacheLookups.WithLabelValues("miss").Inc()
}
