package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

func Register(e *echo.Echo, h *UserHTTP, auth *middleware.BearerMiddleware) {
	e.POST("/users", h.CreateUser)
	e.GET("/users", h.GetUsers, auth.RequireAuth)
	e.GET("/users/:id", h.GetUser, auth.RequireAuth)
	e.PATCH("/users/:id", h.PatchUser, auth.RequireAuth)
	e.DELETE("/users/:id", h.DeleteUser, auth.RequireAuth)
}
