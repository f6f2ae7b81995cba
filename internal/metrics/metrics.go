// Package metrics provides Prometheus instrumentation for the recipe API.
//
// Each Metrics value owns its registry so that servers and tests never collide
// on the global default registerer.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "recipe_api"

// Metrics holds the HTTP and domain collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	RequestInFlight prometheus.Gauge

	RecipeWrites       *prometheus.CounterVec
	AttributesResolved *prometheus.CounterVec
	TokensCleaned      prometheus.Counter
	DatabaseUp         prometheus.Gauge
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors, on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		RequestTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		RequestInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served.",
		}),

		RecipeWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recipes",
				Name:      "writes_total",
				Help:      "Committed recipe writes.",
			},
			[]string{"operation"}, // "create" | "update" | "delete"
		),
		AttributesResolved: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "recipes",
				Name:      "attributes_resolved_total",
				Help:      "Tags and ingredients resolved by get-or-create.",
			},
			[]string{"kind", "outcome"}, // outcome: "existing" | "created"
		),
		TokensCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "expired_tokens_deleted_total",
			Help:      "Expired refresh tokens removed by the cleanup task.",
		}),
		DatabaseUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "up",
			Help:      "1 when the last database ping succeeded.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration,
		m.RequestTotal,
		m.RequestInFlight,
		m.RecipeWrites,
		m.AttributesResolved,
		m.TokensCleaned,
		m.DatabaseUp,
	)

	return m
}

// RecipeWritten counts a committed recipe write.
func (m *Metrics) RecipeWritten(operation string) {
	m.RecipeWrites.WithLabelValues(operation).Inc()
}

// AttributeResolved counts one get-or-create resolution.
func (m *Metrics) AttributeResolved(kind string, created bool) {
	outcome := "existing"
	if created {
		outcome = "created"
	}
	m.AttributesResolved.WithLabelValues(kind, outcome).Inc()
}

// ExpiredTokensDeleted adds n to the cleanup counter.
func (m *Metrics) ExpiredTokensDeleted(n int64) {
	m.TokensCleaned.Add(float64(n))
}

// SetDatabaseUp records the result of the latest database ping.
func (m *Metrics) SetDatabaseUp(up bool) {
	if up {
		m.DatabaseUp.Set(1)
		return
	}
	m.DatabaseUp.Set(0)
}

// Middleware records duration, count and in-flight requests.
// Routes are labelled by their pattern so ids don't blow up cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.RequestInFlight.Inc()
		defer m.RequestInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		m.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler exposes the registry on a gin route.
func (m *Metrics) Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
