package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

//go:generate mockgen -destination=mocks/ports.go -package=mocks . CatalogStore,OrderLedger

// CatalogStore is the product side of the workflow.
type CatalogStore interface {
	GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	LockProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error)
	DecrementStock(ctx context.Context, productID uint, amount int64) error
	GetPrice(ctx context.Context, productID uint) (decimal.Decimal, error)
}

type OrderLedger interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	GetOrderForUpdate(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	ListOrdersByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id uint, status models.OrderStatus) error
	DeleteOrder(ctx context.Context, id uint) error
}

// TxRunner runs fn with stores bound to a single transaction. A non-nil
// error from fn rolls the transaction back and is returned unchanged.
type TxRunner interface {
	Atomic(ctx context.Context, fn func(CatalogStore, OrderLedger) error) error
}

// TransitionObserver is told about every committed status change.
type TransitionObserver interface {
	ObserveTransition(from, to models.OrderStatus)
}
