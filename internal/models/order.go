package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// Final reports whether an order in this status accepts no further changes.
func (s OrderStatus) Final() bool {
	return s == OrderStatusShipped || s == OrderStatusDelivered
}

type Order struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	BuyerID   uint            `gorm:"index;not null"`
	Total     decimal.Decimal `gorm:"type:numeric(14,3);not null;<-:create"`
	Status    OrderStatus     `gorm:"size:20;not null;index"`
	CreatedAt time.Time       `gorm:"<-:create"`
	Lines     []OrderLine     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// OrderLine keeps the product price as it was when the order was placed.
type OrderLine struct {
	ID        uint            `gorm:"primaryKey;autoIncrement"`
	OrderID   uint            `gorm:"index;not null"`
	ProductID uint            `gorm:"index;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT"`
	Quantity  int64           `gorm:"not null;check:quantity > 0"`
	Price     decimal.Decimal `gorm:"type:numeric(12,3);not null;<-:create"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(l.Quantity))
}

func (o *Order) ComputeTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

func (o *Order) ProductIDs() []uint {
	seen := make(map[uint]struct{}, len(o.Lines))
	ids := make([]uint, 0, len(o.Lines))
	for _, l := range o.Lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	return ids
}
