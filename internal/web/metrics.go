package web

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "paysim_http_request_duration_seconds",
			Help:    "HTTP request latencies by method, endpoint and status",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint", "status"},
	)

	paymentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paysim_payment_operations_total",
			Help: "Payment API operations by name and outcome",
		},
		[]string{"operation", "outcome"},
	)

	upstreamRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "paysim_upstream_retries_total",
			Help: "Retry attempts made against the upstream API",
		},
	)

	upstreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paysim_upstream_errors_total",
			Help: "Upstream errors by classified kind",
		},
		[]string{"kind"},
	)

	rateLimitRemaining = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "paysim_rate_limit_remaining",
			Help: "Most recently observed rate-limit remaining quota",
		},
	)
)

// MetricsMiddleware records request duration for every route
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		endpoint := c.Route().Path

		httpRequestDuration.WithLabelValues(c.Method(), endpoint, status).Observe(duration)

		return err
	}
}

func recordOperation(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	paymentOperations.WithLabelValues(operation, outcome).Inc()
}
