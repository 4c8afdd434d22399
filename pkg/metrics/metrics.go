package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all prometheus collectors for the booking service.
type Metrics struct {
	BookingsCreated      prometheus.Counter
	BookingsFailed       *prometheus.CounterVec
	CouponLookups        *prometheus.CounterVec
	NotificationFailures prometheus.Counter
	RequestDuration      *prometheus.HistogramVec
}

// New registers and returns the service metrics under the given namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		BookingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_created_total",
			Help:      "The total number of bookings created",
		}),
		BookingsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_failed_total",
			Help:      "The total number of failed booking submissions",
		}, []string{"reason"}),
		CouponLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_lookups_total",
			Help:      "The total number of coupon validations by outcome",
		}, []string{"outcome"}),
		NotificationFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "The total number of failed booking notifications",
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

// BookingCreated records a successful booking submission.
func (m *Metrics) BookingCreated() {
	m.BookingsCreated.Inc()
}

// BookingFailed records a failed booking submission by reason.
func (m *Metrics) BookingFailed(reason string) {
	m.BookingsFailed.WithLabelValues(reason).Inc()
}

// CouponLookup records a coupon validation outcome.
func (m *Metrics) CouponLookup(outcome string) {
	m.CouponLookups.WithLabelValues(outcome).Inc()
}

// NotificationFailed records a failed booking notification dispatch.
func (m *Metrics) NotificationFailed() {
	m.NotificationFailures.Inc()
}

// Middleware records request latency for every route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestDuration.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Observe(time.Since(start).Seconds())
	}
}

// Handler returns the /metrics endpoint handler.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
