package metrics

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const divisor = 100

// Metrics defines all Prometheus metrics for the travel planner.
type Metrics struct {
	registry *prometheus.Registry

	// RED (Rate, Errors, Duration) for HTTP
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestsInFlight prometheus.Gauge
	HTTPRequestDuration  *prometheus.HistogramVec

	// Business metrics
	LoginsTotal            *prometheus.CounterVec // by result
	RegistrationsTotal     *prometheus.CounterVec // by result
	RecommendationsTotal   prometheus.Counter
	RecommendedCities      prometheus.Histogram
	RecommendationDuration prometheus.Histogram
	CatalogCities          prometheus.Gauge
	SessionStoreOperations *prometheus.CounterVec // by operation, result
	SessionStoreDuration   *prometheus.HistogramVec
	SessionsPurged         prometheus.Counter

	// System metrics
	ServiceUptime prometheus.Gauge

	// Errors metrics
	BusinessErrors  *prometheus.CounterVec
	TechnicalErrors *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics under the given namespace.
// db may be nil, in which case no database stats are exported.
func NewMetrics(namespace string, db *sql.DB, dbName string) *Metrics {
	errorLabels := []string{"error_type", "severity"}
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests total",
			},
			[]string{"method", "endpoint", "status_class"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "In-flight HTTP requests",
			},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "logins_total",
				Help:      "Login attempts",
			},
			[]string{"result"},
		),
		RegistrationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registrations_total",
				Help:      "Registration attempts",
			},
			[]string{"result"},
		),
		RecommendationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recommendations_total",
				Help:      "Budget recommendations computed",
			},
		),
		RecommendedCities: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommended_cities",
				Help:      "Number of cities returned per recommendation",
				Buckets:   prometheus.LinearBuckets(0, 2, 10),
			},
		),
		RecommendationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "recommendation_duration_seconds",
				Help:      "Duration of recommendation computation",
				Buckets:   prometheus.DefBuckets,
			},
		),
		CatalogCities: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "catalog_cities",
				Help:      "Cities loaded into the catalog",
			},
		),
		SessionStoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_store_operations_total",
				Help:      "Session store operations",
			},
			[]string{"operation", "result"},
		),
		SessionStoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_store_operation_duration_seconds",
				Help:      "Session store operation latencies",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		SessionsPurged: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_purged_total",
				Help:      "Expired sessions removed by the purge job",
			},
		),

		ServiceUptime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "service_uptime_seconds",
				Help:      "Service start time in unix seconds",
			},
		),

		BusinessErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "business_errors_total",
				Help:      "Total business errors",
			},
			errorLabels,
		),
		TechnicalErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "technical_errors_total",
				Help:      "Total technical errors",
			},
			errorLabels,
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestsInFlight,
		m.HTTPRequestDuration,
		m.LoginsTotal,
		m.RegistrationsTotal,
		m.RecommendationsTotal,
		m.RecommendedCities,
		m.RecommendationDuration,
		m.CatalogCities,
		m.SessionStoreOperations,
		m.SessionStoreDuration,
		m.SessionsPurged,
		m.ServiceUptime,
		m.BusinessErrors,
		m.TechnicalErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if db != nil {
		m.registry.MustRegister(collectors.NewDBStatsCollector(db, dbName))
	}

	m.ServiceUptime.SetToCurrentTime()

	return m
}

// Handler exposes the metrics registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// HTTPMiddleware instruments Gin HTTP handlers for RED metrics.
func (m *Metrics) HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		m.HTTPRequestsInFlight.Inc()
		c.Next()
		m.HTTPRequestsInFlight.Dec()

		dur := time.Since(start).Seconds()
		status := c.Writer.Status()
		statusClass := fmt.Sprintf("%dxx", status/divisor)

		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, c.FullPath(), statusClass).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, c.FullPath()).Observe(dur)
	}
}

// RecordLogin counts a login attempt, result is "ok", "invalid" or "error".
func (m *Metrics) RecordLogin(result string) {
	m.LoginsTotal.WithLabelValues(result).Inc()
}

// RecordRegistration counts a registration attempt, result is "ok", "duplicate" or "error".
func (m *Metrics) RecordRegistration(result string) {
	m.RegistrationsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) RecordRecommendation(cities int, duration time.Duration) {
	m.RecommendationsTotal.Inc()
	m.RecommendedCities.Observe(float64(cities))
	m.RecommendationDuration.Observe(duration.Seconds())
}

func (m *Metrics) ObserveLatency(operation string, duration time.Duration) {
	m.SessionStoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

func (m *Metrics) IncrementCounter(operation string, result string) {
	m.SessionStoreOperations.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) RecordPurge(removed int) {
	m.SessionsPurged.Add(float64(removed))
}

func (m *Metrics) BusinessError(errorType, severity string) {
	m.BusinessErrors.WithLabelValues(errorType, severity).Inc()
}

func (m *Metrics) TechnicalError(errorType, severity string) {
	m.TechnicalErrors.WithLabelValues(errorType, severity).Inc()
}
