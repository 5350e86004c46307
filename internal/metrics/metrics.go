package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Publication sweep metrics
	SweepRunsTotal      prometheus.Counter
	SweepItemsPublished prometheus.Counter
	SweepItemsSkipped   prometheus.Counter
	SweepTenantErrors   prometheus.Counter

	// Ingestion metrics
	IngestionRowsWritten *prometheus.CounterVec
)

// InitMetrics registers all prometheus collectors. Call once at startup.
func InitMetrics(prefix string) {
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	SweepRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_publish_sweep_runs_total",
			Help: "Total number of publication sweep runs",
		},
	)

	SweepItemsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_publish_sweep_items_published_total",
			Help: "Total number of content items published by the sweep",
		},
	)

	SweepItemsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_publish_sweep_items_skipped_total",
			Help: "Total number of content items skipped by the sweep",
		},
	)

	SweepTenantErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_publish_sweep_tenant_errors_total",
			Help: "Total number of tenants that failed during a sweep",
		},
	)

	IngestionRowsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_ingestion_rows_written_total",
			Help: "Total number of time-series rows written",
		},
		[]string{"entity"},
	)
}

// Middleware records request count and duration per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		if HttpRequestsTotal == nil {
			return
		}

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := c.FullPath()
		status := strconv.Itoa(c.Writer.Status())

		HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
		HttpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
	}
}

// RecordSweep increments the sweep counters after a publication run.
func RecordSweep(published, skipped, tenantErrors int) {
	if SweepRunsTotal == nil {
		return
	}
	SweepRunsTotal.Inc()
	SweepItemsPublished.Add(float64(published))
	SweepItemsSkipped.Add(float64(skipped))
	SweepTenantErrors.Add(float64(tenantErrors))
}

// RecordIngestion increments the written-rows counter for an entity.
func RecordIngestion(entity string, rows int) {
	if IngestionRowsWritten == nil {
		return
	}
	IngestionRowsWritten.WithLabelValues(entity).Add(float64(rows))
}
