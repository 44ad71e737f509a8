// Package metrics provides Prometheus metrics for the admin API
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/policydesk/admin-api/pkg/apperrors"
)

// Metrics holds all Prometheus metrics for the admin API.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Domain metrics
	LoginAttemptsTotal    *prometheus.CounterVec
	PolicyOperationsTotal *prometheus.CounterVec
	PublicViewsTotal      prometheus.Counter

	ServerStartTime time.Time
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{ServerStartTime: time.Now()}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyadmin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policyadmin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.HTTPRequestsInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "policyadmin_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	m.LoginAttemptsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyadmin_login_attempts_total",
			Help: "Login attempts by result",
		},
		[]string{"result"},
	)

	m.PolicyOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policyadmin_policy_operations_total",
			Help: "Policy store operations by operation and result",
		},
		[]string{"operation", "result"},
	)

	m.PublicViewsTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "policyadmin_public_views_total",
			Help: "Published policies served on the public endpoint",
		},
	)

	return m
}

// result is "success" for nil, the AppError code when there is one, "error" otherwise
func result(err error) string {
	if err == nil {
		return "success"
	}
	if code := apperrors.CodeOf(err); code != "" {
		return code
	}
	return "error"
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(err error) {
	if m == nil {
		return
	}
	m.LoginAttemptsTotal.WithLabelValues(result(err)).Inc()
}

// RecordPolicyOp counts a policy store operation
func (m *Metrics) RecordPolicyOp(operation string, err error) {
	if m == nil {
		return
	}
	m.PolicyOperationsTotal.WithLabelValues(operation, result(err)).Inc()
}

// RecordPublicView counts a public read
func (m *Metrics) RecordPublicView() {
	if m == nil {
		return
	}
	m.PublicViewsTotal.Inc()
}

// Middleware records request count, latency and in-flight requests keyed by route pattern
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			method := c.Request().Method
			status := strconv.Itoa(c.Response().Status)
			m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
			m.HTTPRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
			return nil
		}
	}
}
