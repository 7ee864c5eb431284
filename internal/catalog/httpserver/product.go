package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/internal/catalog/service"
	"github.com/Skotchmaster/shop_orders/internal/catalog/transport"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/events"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
	"github.com/Skotchmaster/shop_orders/pkg/pagination"
)

type CatalogHTTP struct {
	Svc    *service.CatalogService
	Events events.Publisher
}

func (h *CatalogHTTP) publish(ctx context.Context, id uint, typ string, payload map[string]any) {
	events.Emit(ctx, h.Events, events.TopicProducts, strconv.FormatUint(uint64(id), 10), typ, payload)
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// mapCatalogError translates service errors into transport errors.
func mapCatalogError(err error) *apperr.Error {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return apperr.BadRequest("Missing required fields: seller_id, name, description, price, or stock")
	case errors.Is(err, service.ErrNegative):
		return apperr.BadRequest("Price and stock must be non-negative")
	case errors.Is(err, service.ErrValidation):
		return apperr.BadRequest("Invalid request")
	case errors.Is(err, service.ErrNotFound):
		return apperr.NotFound("Product not found")
	case errors.Is(err, service.ErrInUse):
		return apperr.BadRequest("Product is referenced by existing orders")
	default:
		return apperr.Database(err)
	}
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_product_failed", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Product id must be an integer")
	}

	product, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		ae := mapCatalogError(err)
		l.Warn("get_product_failed", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	return c.JSON(http.StatusOK, transport.NewProductResponse(*product))
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	items, err := h.Svc.ListProducts(ctx)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_products_error", "status", 404, "reason", "no products")
			return apperr.NotFound("Products not found")
		}
		l.Error("get_products_error", "status", 500, "reason", "cannot list products", "error", err)
		return apperr.Database(err)
	}

	l.Info("get_products_success", "count", len(items))
	return c.JSON(http.StatusOK, transport.NewProductResponses(items))
}

func (h *CatalogHTTP) GetPrice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_price")

	id, err := parseID(c)
	if err != nil {
		l.Warn("get_price_failed", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Product id must be an integer")
	}

	price, err := h.Svc.GetPrice(ctx, id)
	if err != nil {
		ae := mapCatalogError(err)
		l.Warn("get_price_failed", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	value, _ := price.Round(3).Float64()
	return c.JSON(http.StatusOK, transport.PriceResponse{ProductID: id, Price: value})
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	q := c.QueryParam("q")
	page := pagination.ParseIntDefault(c.QueryParam("page"), 1)
	size := pagination.ParseIntDefault(c.QueryParam("size"), pagination.DefaultPageSize)
	offset, limit := pagination.Calculate(page, size)

	total, items, err := h.Svc.SearchProducts(ctx, q, offset, limit)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("search_error", "status", 400, "reason", "empty query")
			return apperr.BadRequest("Query parameter q is required")
		}
		l.Error("search_error", "status", 500, "reason", "search failed", "error", err)
		return apperr.Internal(err)
	}

	if page < 1 {
		page = 1
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": transport.NewProductResponses(items),
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_create_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}

	prod, err := h.Svc.CreateProduct(ctx, req)
	if err != nil {
		ae := mapCatalogError(err)
		if ae.Status >= http.StatusInternalServerError {
			l.Error("product_create_error", "status", ae.Status, "reason", "cannot add product to db", "error", err)
		} else {
			l.Warn("product_create_error", "status", ae.Status, "reason", ae.Message, "error", err)
		}
		return ae
	}

	h.publish(ctx, prod.ID, "product_created", map[string]any{
		"product_id": prod.ID,
		"seller_id":  prod.SellerID,
		"name":       prod.Name,
	})
	l.Info("create_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusCreated, map[string]any{
		"message": "Product created",
		"product": prod.ID,
	})
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Product id must be an integer")
	}

	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("product_patch_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest("Invalid or missing JSON data")
	}

	prod, err := h.Svc.PatchProduct(ctx, req, id)
	if err != nil {
		ae := mapCatalogError(err)
		l.Warn("product_patch_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	h.publish(ctx, prod.ID, "product_updated", map[string]any{
		"product_id": prod.ID,
		"name":       prod.Name,
		"price":      prod.Price.String(),
		"stock":      prod.Stock,
	})
	l.Info("patch_product_success", "product_id", prod.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"message": "Product updated successfully",
		"product": transport.NewProductResponse(*prod),
	})
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")

	id, err := parseID(c)
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Product id must be an integer")
	}

	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		ae := mapCatalogError(err)
		l.Warn("product_delete_error", "status", ae.Status, "reason", ae.Message, "error", err)
		return ae
	}

	h.publish(ctx, id, "product_deleted", map[string]any{"product_id": id})
	l.Info("delete_product_success", "product_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Product delete successfully"})
}
