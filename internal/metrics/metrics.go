// Package metrics declares the prometheus collectors exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blt_http_requests_total",
			Help: "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blt_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	RateLimitDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blt_rate_limit_decisions_total",
			Help: "Admission decisions by outcome",
		},
		[]string{"outcome"},
	)

	RateLimitClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "blt_rate_limit_clients",
			Help: "Clients currently tracked by the rate limiter",
		},
	)

	AuthLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blt_auth_lookups_total",
			Help: "Token lookups by result",
		},
		[]string{"result"}, // "user", "anonymous", "error"
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "blt_db_query_duration_seconds",
			Help:    "Store query latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "blt_db_query_errors_total",
			Help: "Store query failures",
		},
		[]string{"operation"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "blt_db_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"breaker"},
	)
)

func RecordHTTP(route, method string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func RecordAdmission(allowed bool, clients int) {
	outcome := "allowed"
	if !allowed {
		outcome = "rejected"
	}
	RateLimitDecisions.WithLabelValues(outcome).Inc()
	RateLimitClients.Set(float64(clients))
}

func RecordQuery(op string, d time.Duration, err error) {
	DBQueryDuration.WithLabelValues(op).Observe(d.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(op).Inc()
	}
}
