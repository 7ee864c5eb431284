package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m := NewServerMetrics("test")

	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(m.Middleware())
	e.GET("/orders/:id", func(c echo.Context) error {
		if c.Param("id") == "404" {
			return apperr.NotFound("Order not found")
		}
		return c.NoContent(http.StatusOK)
	})

	for _, path := range []string{"/orders/1", "/orders/2", "/orders/404"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/orders/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/orders/:id", "404")))
}

func TestObserveTransition_AndExport(t *testing.T) {
	m := NewServerMetrics("test")
	m.ObserveTransition(models.OrderStatusPending, models.OrderStatusShipped)
	m.ObserveTransition(models.OrderStatusPending, models.OrderStatusShipped)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Transitions.WithLabelValues("pending", "shipped")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_test_order_status_transitions_total{from="pending",to="shipped"} 2`)
}
