package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	catalogrepo "github.com/Skotchmaster/shop_orders/internal/catalog/repo"
	"github.com/Skotchmaster/shop_orders/internal/models"
)

type LineRequest struct {
	ProductID uint
	Quantity  int64
}

type OrderService struct {
	Ledger   OrderLedger
	Tx       TxRunner
	Observer TransitionObserver
}

func NewOrderService(ledger OrderLedger, tx TxRunner) *OrderService {
	return &OrderService{Ledger: ledger, Tx: tx}
}

// CreateOrder snapshots the current price of every product and stores the
// order with status pending. Stock is not touched.
func (s *OrderService) CreateOrder(ctx context.Context, buyerID uint, lines []LineRequest) (*models.Order, error) {
	if len(lines) == 0 {
		return nil, validation(MsgMissingFields)
	}
	ids := make([]uint, 0, len(lines))
	seen := make(map[uint]struct{}, len(lines))
	for _, ln := range lines {
		if ln.Quantity <= 0 {
			return nil, validation(MsgInvalidLine)
		}
		if _, ok := seen[ln.ProductID]; !ok {
			seen[ln.ProductID] = struct{}{}
			ids = append(ids, ln.ProductID)
		}
	}

	var created *models.Order
	err := s.Tx.Atomic(ctx, func(catalog CatalogStore, ledger OrderLedger) error {
		products, err := catalog.GetProductsByIDs(ctx, ids)
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}

		order := &models.Order{
			BuyerID: buyerID,
			Status:  models.OrderStatusPending,
			Lines:   make([]models.OrderLine, 0, len(lines)),
		}
		for _, ln := range lines {
			p, ok := products[ln.ProductID]
			if !ok {
				return productNotFound(ln.ProductID)
			}
			order.Lines = append(order.Lines, models.OrderLine{
				ProductID: p.ID,
				Quantity:  ln.Quantity,
				Price:     p.Price,
			})
		}
		order.Total = order.ComputeTotal()

		if err := ledger.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	order, err := s.Ledger.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(MsgOrderNotFound)
		}
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]models.Order, error) {
	orders, err := s.Ledger.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, notFound(MsgNoOrders)
	}
	return orders, nil
}

func (s *OrderService) ListOrdersByBuyer(ctx context.Context, buyerID uint) ([]models.Order, error) {
	orders, err := s.Ledger.ListOrdersByBuyer(ctx, buyerID)
	if err != nil {
		return nil, fmt.Errorf("list orders of buyer %d: %w", buyerID, err)
	}
	if len(orders) == 0 {
		return nil, notFound(MsgNoOrdersForBuyer)
	}
	return orders, nil
}

// UpdateOrderStatus moves a pending order to status. Shipping checks and
// decrements the stock of every line in the same transaction as the status
// change. Shipped and delivered orders are final.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, validation(MsgInvalidStatus)
	}

	var (
		updated *models.Order
		from    models.OrderStatus
	)
	err := s.Tx.Atomic(ctx, func(catalog CatalogStore, ledger OrderLedger) error {
		order, err := ledger.GetOrderForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(MsgOrderNotFound)
			}
			return fmt.Errorf("lock order %d: %w", id, err)
		}
		if order.Status.Final() {
			return invalidTransition()
		}

		if status == models.OrderStatusShipped {
			if err := ship(ctx, catalog, order); err != nil {
				return err
			}
		}

		if err := ledger.UpdateStatus(ctx, id, status); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(MsgOrderNotFound)
			}
			return fmt.Errorf("update order %d: %w", id, err)
		}

		from = order.Status
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.Observer != nil {
		s.Observer.ObserveTransition(from, status)
	}
	return updated, nil
}

// ship locks the products of order, verifies every line is covered by stock
// and then decrements it.
func ship(ctx context.Context, catalog CatalogStore, order *models.Order) error {
	products, err := catalog.LockProductsByIDs(ctx, order.ProductIDs())
	if err != nil {
		return fmt.Errorf("lock products: %w", err)
	}

	for _, ln := range order.Lines {
		p, ok := products[ln.ProductID]
		if !ok {
			return productNotFound(ln.ProductID)
		}
		if p.Stock < ln.Quantity {
			return insufficientStock(p)
		}
	}

	for _, ln := range order.Lines {
		err := catalog.DecrementStock(ctx, ln.ProductID, ln.Quantity)
		switch {
		case err == nil:
		case errors.Is(err, catalogrepo.ErrInsufficientStock):
			return insufficientStock(products[ln.ProductID])
		case errors.Is(err, gorm.ErrRecordNotFound):
			return productNotFound(ln.ProductID)
		default:
			return fmt.Errorf("decrement stock of product %d: %w", ln.ProductID, err)
		}
	}
	return nil
}

// DeleteOrder removes the order and its lines. Stock is never restored.
func (s *OrderService) DeleteOrder(ctx context.Context, id uint) error {
	return s.Tx.Atomic(ctx, func(_ CatalogStore, ledger OrderLedger) error {
		if err := ledger.DeleteOrder(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(MsgOrderNotFound)
			}
			return fmt.Errorf("delete order %d: %w", id, err)
		}
		return nil
	})
}
