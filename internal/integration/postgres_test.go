//go:build integration

package integration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"

	catalogrepo "github.com/Skotchmaster/shop_orders/internal/catalog/repo"
	catalogservice "github.com/Skotchmaster/shop_orders/internal/catalog/service"
	"github.com/Skotchmaster/shop_orders/internal/models"
	orderrepo "github.com/Skotchmaster/shop_orders/internal/order/repo"
	"github.com/Skotchmaster/shop_orders/internal/order/service"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
)

func setupPostgres(t *testing.T) (*gorm.DB, *sql.DB) {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "shop",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432")
	require.NoError(t, err)
	dsn := fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())

	db, err := pkgdb.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, pkgdb.Migrate(db))
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	raw, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })

	return db, raw
}

func seed(t *testing.T, db *gorm.DB, name, price string, stock int64) models.Product {
	t.Helper()
	p := models.Product{SellerID: 1, Name: name, Price: decimal.RequireFromString(price), Stock: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func stockOf(t *testing.T, raw *sql.DB, id uint) int64 {
	t.Helper()
	var stock int64
	require.NoError(t, raw.QueryRow(`SELECT stock FROM products WHERE id = $1`, id).Scan(&stock))
	return stock
}

func TestPostgres(t *testing.T) {
	db, raw := setupPostgres(t)
	ctx := context.Background()
	orders := service.NewOrderService(&orderrepo.GormRepo{DB: db}, &orderrepo.GormTxRunner{DB: db})

	t.Run("concurrent ships never oversell", func(t *testing.T) {
		p := seed(t, db, "Lamp", "12.50", 3)

		const n = 5
		ids := make([]uint, n)
		for i := range ids {
			o, err := orders.CreateOrder(ctx, 1, []service.LineRequest{{ProductID: p.ID, Quantity: 1}})
			require.NoError(t, err)
			ids[i] = o.ID
		}

		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			shipped  int
			outOfStk int
		)
		for _, id := range ids {
			wg.Add(1)
			go func(id uint) {
				defer wg.Done()
				_, err := orders.UpdateOrderStatus(ctx, id, models.OrderStatusShipped)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					shipped++
				case errors.Is(err, service.ErrInsufficientStock):
					outOfStk++
				default:
					t.Errorf("unexpected error: %v", err)
				}
			}(id)
		}
		wg.Wait()

		assert.Equal(t, 3, shipped)
		assert.Equal(t, 2, outOfStk)
		assert.Zero(t, stockOf(t, raw, p.ID))

		var pending int
		require.NoError(t, raw.QueryRow(`SELECT COUNT(*) FROM orders WHERE status = 'pending'`).Scan(&pending))
		assert.Equal(t, 2, pending)
	})

	t.Run("numeric columns keep the snapshot price", func(t *testing.T) {
		p := seed(t, db, "Pen", "1.125", 10)
		o, err := orders.CreateOrder(ctx, 7, []service.LineRequest{{ProductID: p.ID, Quantity: 3}})
		require.NoError(t, err)

		_, err = raw.Exec(`UPDATE products SET price = 99 WHERE id = $1`, p.ID)
		require.NoError(t, err)

		var price, total string
		require.NoError(t, raw.QueryRow(`SELECT price FROM order_lines WHERE order_id = $1`, o.ID).Scan(&price))
		require.NoError(t, raw.QueryRow(`SELECT total FROM orders WHERE id = $1`, o.ID).Scan(&total))
		assert.Equal(t, "1.125", price)
		assert.Equal(t, "3.375", total)
	})

	t.Run("stock cannot go negative", func(t *testing.T) {
		p := seed(t, db, "Cup", "2", 1)
		_, err := raw.Exec(`UPDATE products SET stock = -1 WHERE id = $1`, p.ID)
		require.Error(t, err)
		assert.True(t, pkgdb.IsCheckViolation(err))
	})

	t.Run("ordered products cannot be deleted", func(t *testing.T) {
		p := seed(t, db, "Desk", "100", 2)
		o, err := orders.CreateOrder(ctx, 3, []service.LineRequest{{ProductID: p.ID, Quantity: 1}})
		require.NoError(t, err)

		catalog := &catalogservice.CatalogService{Repo: &catalogrepo.GormRepo{DB: db}}
		assert.ErrorIs(t, catalog.DeleteProduct(ctx, p.ID), catalogservice.ErrInUse)

		require.NoError(t, orders.DeleteOrder(ctx, o.ID))
		var lines int
		require.NoError(t, raw.QueryRow(`SELECT COUNT(*) FROM order_lines WHERE order_id = $1`, o.ID).Scan(&lines))
		assert.Zero(t, lines)
		assert.Equal(t, int64(2), stockOf(t, raw, p.ID))

		require.NoError(t, catalog.DeleteProduct(ctx, p.ID))
	})
}
