package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

func Register(e *echo.Echo, h *OrderHTTP, auth *middleware.BearerMiddleware) {
	orders := e.Group("/orders", auth.RequireAuth)
	orders.POST("", h.CreateOrder)
	orders.GET("", h.GetOrders)
	orders.GET("/buyer/:buyer_id", h.GetOrdersByBuyer)
	orders.GET("/:id", h.GetOrder)
	orders.PATCH("/:id", h.UpdateOrder)
	orders.DELETE("/:id", h.DeleteOrder)
}
