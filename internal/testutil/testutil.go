package testutil

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/shop_orders/internal/models"
	"github.com/Skotchmaster/shop_orders/pkg/apperr"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
)

// NewDB returns a migrated in-memory database. The pool is pinned to one
// connection so every query sees the same memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, pkgdb.Migrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func SeedProduct(t *testing.T, db *gorm.DB, name, price string, stock int64) models.Product {
	t.Helper()

	p := models.Product{
		SellerID:    1,
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func ProductStock(t *testing.T, db *gorm.DB, id uint) int64 {
	t.Helper()

	var p models.Product
	require.NoError(t, db.First(&p, id).Error)
	return p.Stock
}

func NewEcho() *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = apperr.HTTPErrorHandler
	return e
}

// JSONRequest builds an echo context for a handler under test. A string body
// is sent verbatim, anything else is JSON encoded.
func JSONRequest(t *testing.T, e *echo.Echo, method, path string, body any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

// RequireAppError asserts that err is an *apperr.Error with the given status
// and returns it.
func RequireAppError(t *testing.T, err error, status int) *apperr.Error {
	t.Helper()

	require.Error(t, err)
	ae := apperr.From(err)
	require.Equal(t, status, ae.Status, ae.Error())
	return ae
}
