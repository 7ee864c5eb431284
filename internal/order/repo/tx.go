package repo

import (
	"context"

	"gorm.io/gorm"

	catalogrepo "github.com/Skotchmaster/shop_orders/internal/catalog/repo"
	"github.com/Skotchmaster/shop_orders/internal/order/service"
)

// GormTxRunner runs workflow steps against a catalog store and an order
// ledger bound to one database transaction.
type GormTxRunner struct {
	DB *gorm.DB
}

var _ service.TxRunner = (*GormTxRunner)(nil)

func (r *GormTxRunner) Atomic(ctx context.Context, fn func(service.CatalogStore, service.OrderLedger) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogrepo.GormRepo{DB: tx}, &GormRepo{DB: tx})
	})
}
