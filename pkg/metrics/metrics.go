package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "applyfollow"

var (
	registerOnce sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	requestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	requestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "HTTP requests currently being served.",
		},
	)

	reminderSweeps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "sweeps_total",
			Help:      "Reminder sweeps by outcome (skipped, ran, error).",
		},
		[]string{"result"},
	)

	remindersSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reminder",
			Name:      "notifications_total",
			Help:      "Reminder emails by delivery result.",
		},
		[]string{"result"},
	)

	oauth2PendingRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "oauth2",
			Name:      "pending_requests",
			Help:      "Authorization requests waiting for a provider callback.",
		},
	)
)

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			requestDuration,
			requestTotal,
			requestsInFlight,
			reminderSweeps,
			remindersSent,
			oauth2PendingRequests,
		)
	})
}

// GinMiddleware records latency, count and in-flight requests per route.
func GinMiddleware() gin.HandlerFunc {
	Register()

	return func(c *gin.Context) {
		start := time.Now()
		requestsInFlight.Inc()
		defer requestsInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			// Unmatched routes share one label to keep cardinality bounded.
			path = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(c.Writer.Status()),
		}

		requestDuration.With(labels).Observe(time.Since(start).Seconds())
		requestTotal.With(labels).Inc()
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	Register()
	return gin.WrapH(promhttp.Handler())
}

func ReminderSweep(result string) {
	reminderSweeps.WithLabelValues(result).Inc()
}

func ReminderSent(ok bool) {
	result := "sent"
	if !ok {
		result = "failed"
	}
	remindersSent.WithLabelValues(result).Inc()
}

func OAuth2PendingRequests(n int) {
	oauth2PendingRequests.Set(float64(n))
}
