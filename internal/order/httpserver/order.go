package httpserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/order/service"
	"github.com/Skotchmaster/shop_orders/internal/order/transport"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	"github.com/Skotchmaster/shop_orders/pkg/events"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

type OrderHTTP struct {
	Svc    *service.OrderService
	Events events.Publisher
}

func (h *OrderHTTP) publish(ctx context.Context, orderID uint, typ string, payload map[string]any) {
	events.Emit(ctx, h.Events, events.TopicOrders, strconv.FormatUint(uint64(orderID), 10), typ, payload)
}

// mapOrderError is the single translation point from workflow errors to
// HTTP errors.
func mapOrderError(err error) *apperr.Error {
	var we *service.WorkflowError
	if !errors.As(err, &we) {
		return apperr.Database(err)
	}
	switch {
	case errors.Is(we, service.ErrNotFound):
		return apperr.NotFound(we.Message)
	case errors.Is(we, service.ErrInsufficientStock):
		return apperr.InsufficientStock(we.ProductName)
	default:
		return apperr.BadRequest(we.Message)
	}
}

func logFailure(l *slog.Logger, event string, ae *apperr.Error, err error) {
	if ae.Status >= http.StatusInternalServerError {
		l.Error(event, "status", ae.Status, "reason", ae.Message, "error", err)
		return
	}
	l.Warn(event, "status", ae.Status, "reason", ae.Message, "error", err)
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", "cannot read body", "error", err)
		return apperr.BadRequest(transport.MsgInvalidJSON)
	}

	req, err := transport.ParseCreateOrder(body)
	if err != nil {
		l.Warn("create_order_error", "status", 400, "reason", err.Error())
		return apperr.BadRequest(err.Error())
	}

	order, err := h.Svc.CreateOrder(ctx, req.BuyerID, req.Lines)
	if err != nil {
		ae := mapOrderError(err)
		logFailure(l, "create_order_error", ae, err)
		return ae
	}

	h.publish(ctx, order.ID, "order_created", map[string]any{
		"order_id": order.ID,
		"buyer_id": order.BuyerID,
		"total":    order.Total.StringFixed(2),
	})
	l.Info("create_order_success", "order_id", order.ID)
	return c.JSON(http.StatusCreated, transport.CreatedOrderResponse{
		Message:       "Order created",
		OrderResponse: transport.NewOrderResponse(order),
	})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")

	id, err := parseUintParam(c, "id")
	if err != nil {
		l.Warn("get_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Order id must be an integer")
	}

	order, err := h.Svc.GetOrder(ctx, id)
	if err != nil {
		ae := mapOrderError(err)
		logFailure(l, "get_order_error", ae, err)
		return ae
	}

	return c.JSON(http.StatusOK, transport.NewOrderResponse(order))
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders")

	orders, err := h.Svc.ListOrders(ctx)
	if err != nil {
		ae := mapOrderError(err)
		logFailure(l, "get_orders_error", ae, err)
		return ae
	}

	return c.JSON(http.StatusOK, transport.NewOrderResponses(orders))
}

func (h *OrderHTTP) GetOrdersByBuyer(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_orders_by_buyer")

	buyerID, err := parseUintParam(c, "buyer_id")
	if err != nil {
		l.Warn("get_orders_by_buyer_error", "status", 400, "reason", "buyer id is not integer", "error", err)
		return apperr.BadRequest("Buyer id must be an integer")
	}

	orders, err := h.Svc.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		ae := mapOrderError(err)
		logFailure(l, "get_orders_by_buyer_error", ae, err)
		return ae
	}

	return c.JSON(http.StatusOK, transport.NewOrderResponses(orders))
}

func (h *OrderHTTP) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_order")

	id, err := parseUintParam(c, "id")
	if err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Order id must be an integer")
	}

	var req transport.UpdateOrderRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_order_error", "status", 400, "reason", "invalid body", "error", err)
		return apperr.BadRequest(transport.MsgInvalidJSON)
	}
	if req.Status == nil {
		l.Warn("update_order_error", "status", 400, "reason", "status missing")
		return apperr.BadRequest(service.MsgInvalidStatus)
	}

	order, err := h.Svc.UpdateOrderStatus(ctx, id, models.OrderStatus(*req.Status))
	if err != nil {
		ae := mapOrderError(err)
		logFailure(l, "update_order_error", ae, err)
		return ae
	}

	h.publish(ctx, order.ID, "order_status_updated", map[string]any{
		"order_id": order.ID,
		"status":   order.Status,
	})
	l.Info("update_order_success", "order_id", order.ID, "order_status", order.Status)
	return c.JSON(http.StatusOK, transport.NewUpdatedOrderResponse(order))
}

func (h *OrderHTTP) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.delete_order")

	id, err := parseUintParam(c, "id")
	if err != nil {
		l.Warn("delete_order_error", "status", 400, "reason", "id is not integer", "error", err)
		return apperr.BadRequest("Order id must be an integer")
	}

	if err := h.Svc.DeleteOrder(ctx, id); err != nil {
		ae := mapOrderError(err)
		logFailure(l, "delete_order_error", ae, err)
		return ae
	}

	h.publish(ctx, id, "order_deleted", map[string]any{"order_id": id})
	l.Info("delete_order_success", "order_id", id)
	return c.JSON(http.StatusOK, map[string]string{"message": "Order deleted successfully"})
}
