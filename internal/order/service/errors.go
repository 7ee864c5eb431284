package service

import (
	"errors"
	"fmt"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

var (
	ErrValidation        = errors.New("validation")         // 400
	ErrNotFound          = errors.New("not found")          // 404
	ErrInvalidTransition = errors.New("invalid transition") // 400
	ErrInsufficientStock = errors.New("insufficient stock") // 400
)

const (
	MsgMissingFields      = "Missing required fields: buyer_id or products"
	MsgInvalidLine        = "Product_id must be non-negative and quantity must be greater than 0"
	MsgInvalidStatus      = "Invalid status, valid statuses are: pending, shipped, delivered"
	MsgOrderNotFound      = "Order not found"
	MsgNoOrders           = "No orders found"
	MsgNoOrdersForBuyer   = "No orders found for this buyer"
	MsgOrderFinal         = "Cannot modify an order that has already been shipped or delivered"
	msgProductNotFoundFmt = "Product with id %d not found"
)

// WorkflowError is a business rule violation. Kind is one of the package
// sentinels and Message is safe to show to clients.
type WorkflowError struct {
	Kind        error
	Message     string
	ProductID   uint
	ProductName string
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("%v: %s", e.Kind, e.Message)
}

func (e *WorkflowError) Unwrap() error { return e.Kind }

func validation(msg string) *WorkflowError {
	return &WorkflowError{Kind: ErrValidation, Message: msg}
}

func notFound(msg string) *WorkflowError {
	return &WorkflowError{Kind: ErrNotFound, Message: msg}
}

func productNotFound(id uint) *WorkflowError {
	return &WorkflowError{Kind: ErrNotFound, Message: fmt.Sprintf(msgProductNotFoundFmt, id), ProductID: id}
}

func invalidTransition() *WorkflowError {
	return &WorkflowError{Kind: ErrInvalidTransition, Message: MsgOrderFinal}
}

func insufficientStock(p models.Product) *WorkflowError {
	return &WorkflowError{
		Kind:        ErrInsufficientStock,
		Message:     fmt.Sprintf("There is not enough stock of %s to complete the order", p.Name),
		ProductID:   p.ID,
		ProductName: p.Name,
	}
}
