package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m := New()
	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/api/calls/:id", func(c echo.Context) error {
		if c.Param("id") == "missing" {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/api/calls/1", "/api/calls/2", "/api/calls/missing"} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/calls/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/calls/:id", "404")))
}

func TestDomainCounters(t *testing.T) {
	m := New()
	m.CallCreated()
	m.InterestRecorded()
	m.InterestRecorded()
	m.FounderDecided("approved")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.callsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.interests))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.founderDecisions.WithLabelValues("approved")))

	var nilMetrics *Metrics
	nilMetrics.CallCreated()
	nilMetrics.InterestRecorded()
	nilMetrics.FounderDecided("rejected")
}

func TestHandler_ExposesCollectors(t *testing.T) {
	m := New()
	m.CallCreated()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "researchnett_calls_created_total 1")
}
