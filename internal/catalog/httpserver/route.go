package httpserver

import (
	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/shop_orders/pkg/middleware/auth"
)

func Register(e *echo.Echo, h *CatalogHTTP, auth *middleware.BearerMiddleware) {
	products := e.Group("/products")
	products.GET("/search", h.SearchProducts)
	products.GET("", h.GetProducts)
	products.GET("/:id", h.GetProduct)
	products.GET("/:id/price", h.GetPrice)

	sellers := products.Group("", auth.RequireRole("seller", "admin"))
	sellers.POST("", h.CreateProduct)
	sellers.PATCH("/:id", h.PatchProduct)
	sellers.DELETE("/:id", h.DeleteProduct)
}
