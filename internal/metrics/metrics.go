// Package metrics exposes Prometheus instrumentation for the API: HTTP
// request counts and latencies, plus a histogram around the dashboard
// aggregation pipeline, which is the only expensive code path in the service.
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
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "impact_http_requests_total",
			Help: "Total number of HTTP requests processed, by route, method and status.",
		},
		[]string{"route", "method", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_http_request_duration_seconds",
			Help:    "HTTP request latency by route and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	dashboardAggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "impact_dashboard_aggregation_duration_seconds",
			Help:    "Time spent assembling one dashboard snapshot, by filter and degradation state.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"filtered", "degraded"},
	)
)

// ObserveDashboardAggregation records one dashboard snapshot build.
func ObserveDashboardAggregation(d time.Duration, filtered, degraded bool) {
	dashboardAggregationDuration.
		WithLabelValues(strconv.FormatBool(filtered), strconv.FormatBool(degraded)).
		Observe(d.Seconds())
}

// Middleware instruments every request. The route label uses the matched
// route template, not the raw path, to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(started).Seconds())
	}
}

// Handler returns the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
