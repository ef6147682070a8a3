package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_requests_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	loginLinksIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "login_links_issued_total",
			Help: "Total number of magic login links issued",
		},
	)

	loginRedemptionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_redemptions_total",
			Help: "Magic link redemption attempts by outcome",
		},
		[]string{"result"}, // success/not_found/used/expired/unknown
	)

	mailDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_deliveries_total",
			Help: "Mail delivery attempts by status",
		},
		[]string{"status"}, // sent/retry/failed
	)

	feedbackSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_submissions_total",
			Help: "Feedback submissions by kind and result",
		},
		[]string{"kind", "result"},
	)

	faceRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "face_requests_total",
			Help: "Face recognition service calls by operation and result",
		},
		[]string{"operation", "result"},
	)

	faceRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "face_request_duration_seconds",
			Help:    "Face recognition service call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"operation"},
	)

	registerOnce sync.Once
)

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			loginLinksIssuedTotal,
			loginRedemptionsTotal,
			mailDeliveriesTotal,
			feedbackSubmissionsTotal,
			faceRequestsTotal,
			faceRequestDuration,
		)
	})
}

// HTTPMetricsMiddleware records HTTP metrics
func HTTPMetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		statusCode := strconv.Itoa(status)

		httpRequestsTotal.WithLabelValues(c.Method(), route, statusCode).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), route, statusCode).Observe(time.Since(start).Seconds())

		return err
	}
}

func RecordLoginLinkIssued() {
	loginLinksIssuedTotal.Inc()
}

func RecordLoginRedemption(result string) {
	loginRedemptionsTotal.WithLabelValues(result).Inc()
}

func RecordMailDelivery(status string) {
	mailDeliveriesTotal.WithLabelValues(status).Inc()
}

func RecordFeedbackSubmission(kind, result string) {
	feedbackSubmissionsTotal.WithLabelValues(kind, result).Inc()
}

func RecordFaceRequest(operation, result string, duration time.Duration) {
	faceRequestsTotal.WithLabelValues(operation, result).Inc()
	faceRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// PrometheusHandler exposes the default registry on a fiber route.
func PrometheusHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
