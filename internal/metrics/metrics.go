// internal/metrics/metrics.go
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Name:      "http_requests_total",
		Help:      "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "compliance",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	submissionTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Name:      "submission_transitions_total",
		Help:      "Submission status transitions by target status.",
	}, []string{"to_status"})

	forwardOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "compliance",
		Name:      "bulk_forward_outcomes_total",
		Help:      "Per-station bulk forward outcomes.",
	}, []string{"outcome"})
)

// ObserveTransition records a submission status transition.
func ObserveTransition(toStatus string) {
	submissionTransitions.WithLabelValues(toStatus).Inc()
}

// ObserveForwardOutcome records one bulk-forward item result.
func ObserveForwardOutcome(outcome string) {
	forwardOutcomes.WithLabelValues(outcome).Inc()
}

// Middleware instruments every request. Routes are labeled by their gin
// template (":id" style) to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		requestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		requestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for the /metrics route.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
