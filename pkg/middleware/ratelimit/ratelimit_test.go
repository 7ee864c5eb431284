package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/shop_orders/pkg/apperr"
)

func newEcho(n int) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	e.Use(PerHour(n, func(c echo.Context) bool {
		return strings.HasPrefix(c.Path(), "/health")
	}))
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") })
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	return e
}

func get(e *echo.Echo, path, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPerHour_DeniesAfterBurst(t *testing.T) {
	e := newEcho(2)

	assert.Equal(t, http.StatusOK, get(e, "/ping", "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, get(e, "/ping", "10.0.0.1").Code)

	rec := get(e, "/ping", "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Too Many Requests")

	assert.Equal(t, http.StatusOK, get(e, "/ping", "10.0.0.2").Code, "limits are per client")
}

func TestPerHour_SkipsHealth(t *testing.T) {
	e := newEcho(1)

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(e, "/health/live", "10.0.0.3").Code)
	}
}
