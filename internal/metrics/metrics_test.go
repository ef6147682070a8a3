package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	Init()

	app := fiber.New()
	app.Use(HTTPMetricsMiddleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", PrometheusHandler())

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "200"))

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "/ping", "200"))
	assert.Equal(t, before+1, after)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "http_server_requests_total")
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(loginRedemptionsTotal.WithLabelValues("expired"))
	RecordLoginRedemption("expired")
	assert.Equal(t, before+1, testutil.ToFloat64(loginRedemptionsTotal.WithLabelValues("expired")))

	beforeFb := testutil.ToFloat64(feedbackSubmissionsTotal.WithLabelValues("session", "accepted"))
	RecordFeedbackSubmission("session", "accepted")
	assert.Equal(t, beforeFb+1, testutil.ToFloat64(feedbackSubmissionsTotal.WithLabelValues("session", "accepted")))
}
