package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	authhttp "github.com/Skotchmaster/shop_orders/internal/auth/httpserver"
	cataloghttp "github.com/Skotchmaster/shop_orders/internal/catalog/httpserver"
	"github.com/Skotchmaster/shop_orders/internal/metrics"
	"github.com/Skotchmaster/shop_orders/internal/notify"
	orderhttp "github.com/Skotchmaster/shop_orders/internal/order/httpserver"
	userhttp "github.com/Skotchmaster/shop_orders/internal/user/httpserver"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

type Deps struct {
	DB      *gorm.DB
	Auth    *middleware.BearerMiddleware
	Metrics *metrics.ServerMetrics

	AuthHandler    *authhttp.AuthHTTP
	UserHandler    *userhttp.UserHTTP
	CatalogHandler *cataloghttp.CatalogHTTP
	OrderHandler   *orderhttp.OrderHTTP
	ContactHandler *notify.ContactHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := pkgdb.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("readiness_failed", "error", err)
			return apperr.New(http.StatusServiceUnavailable, "database is not reachable")
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authhttp.Register(e, d.AuthHandler)
	userhttp.Register(e, d.UserHandler, d.Auth)
	cataloghttp.Register(e, d.CatalogHandler, d.Auth)
	orderhttp.Register(e, d.OrderHandler, d.Auth)
	notify.Register(e, d.ContactHandler, d.Auth)
}
