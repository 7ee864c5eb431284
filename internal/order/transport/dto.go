package transport

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/internal/order/service"
)

const (
	MsgInvalidJSON      = "Invalid or missing JSON data"
	MsgLineMissingField = "Each product must have 'product_id' and 'quantity'"
	MsgLineNotInteger   = "product_id must be an integer and quantity must be an integer"
	MsgBuyerNotInteger  = "buyer_id must be a non-negative integer"
)

// RequestError is a malformed request body. Message is shown to the client.
type RequestError struct {
	Message string
}

func (e *RequestError) Error() string { return e.Message }

type CreateOrderRequest struct {
	BuyerID uint
	Lines   []service.LineRequest
}

// ParseCreateOrder decodes a create-order body. Numbers must be JSON
// integers: 2.0 and "2" are rejected.
func ParseCreateOrder(body []byte) (CreateOrderRequest, error) {
	var raw map[string]json.RawMessage
	if len(bytes.TrimSpace(body)) == 0 || json.Unmarshal(body, &raw) != nil || raw == nil {
		return CreateOrderRequest{}, &RequestError{Message: MsgInvalidJSON}
	}

	buyerRaw, okBuyer := present(raw, "buyer_id")
	productsRaw, okProducts := present(raw, "products")
	if !okBuyer || !okProducts {
		return CreateOrderRequest{}, &RequestError{Message: service.MsgMissingFields}
	}

	var items []map[string]json.RawMessage
	if err := json.Unmarshal(productsRaw, &items); err != nil {
		return CreateOrderRequest{}, &RequestError{Message: MsgInvalidJSON}
	}
	if len(items) == 0 {
		return CreateOrderRequest{}, &RequestError{Message: service.MsgMissingFields}
	}

	buyerID, ok := integer(buyerRaw)
	if !ok || buyerID < 0 {
		return CreateOrderRequest{}, &RequestError{Message: MsgBuyerNotInteger}
	}

	req := CreateOrderRequest{BuyerID: uint(buyerID), Lines: make([]service.LineRequest, 0, len(items))}
	for _, item := range items {
		pidRaw, okPID := present(item, "product_id")
		qtyRaw, okQty := present(item, "quantity")
		if !okPID || !okQty {
			return CreateOrderRequest{}, &RequestError{Message: MsgLineMissingField}
		}

		pid, okPID := integer(pidRaw)
		qty, okQty := integer(qtyRaw)
		if !okPID || !okQty {
			return CreateOrderRequest{}, &RequestError{Message: MsgLineNotInteger}
		}
		if pid < 0 || qty <= 0 {
			return CreateOrderRequest{}, &RequestError{Message: service.MsgInvalidLine}
		}

		req.Lines = append(req.Lines, service.LineRequest{ProductID: uint(pid), Quantity: qty})
	}
	return req, nil
}

func present(m map[string]json.RawMessage, key string) (json.RawMessage, bool) {
	v, ok := m[key]
	if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
		return nil, false
	}
	return v, true
}

func integer(raw json.RawMessage) (int64, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return 0, false
	}
	n, ok := v.(json.Number)
	if !ok {
		return 0, false
	}
	i, err := n.Int64()
	if err != nil {
		return 0, false
	}
	return i, true
}

type UpdateOrderRequest struct {
	Status *string `json:"status"`
}

type OrderLineResponse struct {
	ProductID uint    `json:"product_id"`
	Quantity  int64   `json:"quantity"`
	Price     float64 `json:"price"`
}

type OrderResponse struct {
	OrderID       uint                `json:"order_id"`
	BuyerID       uint                `json:"buyer_id"`
	Total         float64             `json:"total"`
	Status        models.OrderStatus  `json:"status"`
	CreatedAt     string              `json:"created_at"`
	OrderProducts []OrderLineResponse `json:"order_products"`
}

type CreatedOrderResponse struct {
	Message string `json:"message"`
	OrderResponse
}

type UpdatedOrderResponse struct {
	Message   string             `json:"message"`
	OrderID   uint               `json:"order_id"`
	BuyerID   uint               `json:"buyer_id"`
	Total     float64            `json:"total"`
	Status    models.OrderStatus `json:"status"`
	CreatedAt string             `json:"created_at"`
}

func total(o *models.Order) float64 {
	f, _ := o.Total.Round(2).Float64()
	return f
}

func createdAt(o *models.Order) string {
	return o.CreatedAt.UTC().Format(time.RFC3339)
}

func NewOrderResponse(o *models.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		price, _ := l.Price.Round(3).Float64()
		lines = append(lines, OrderLineResponse{ProductID: l.ProductID, Quantity: l.Quantity, Price: price})
	}
	return OrderResponse{
		OrderID:       o.ID,
		BuyerID:       o.BuyerID,
		Total:         total(o),
		Status:        o.Status,
		CreatedAt:     createdAt(o),
		OrderProducts: lines,
	}
}

func NewOrderResponses(orders []models.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, NewOrderResponse(&orders[i]))
	}
	return out
}

func NewUpdatedOrderResponse(o *models.Order) UpdatedOrderResponse {
	return UpdatedOrderResponse{
		Message:   "Order updated successfully",
		OrderID:   o.ID,
		BuyerID:   o.BuyerID,
		Total:     total(o),
		Status:    o.Status,
		CreatedAt: createdAt(o),
	}
}
