package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/shop_orders/internal/catalog/repo"
	"github.com/Skotchmaster/shop_orders/internal/catalog/transport"
	"github.com/Skotchmaster/shop_orders/internal/models"
	pkgdb "github.com/Skotchmaster/shop_orders/pkg/db"
	"github.com/Skotchmaster/shop_orders/pkg/logging"
)

var (
	ErrValidation = errors.New("validation")
	ErrNotFound   = errors.New("not found")
	ErrInUse      = errors.New("product is referenced by orders")

	ErrMissingFields = fmt.Errorf("%w: missing required fields", ErrValidation)
	ErrNegative      = fmt.Errorf("%w: price and stock must be non-negative", ErrValidation)
)

// Indexer keeps a search index in sync with the catalog.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo  *repo.GormRepo
	Index Indexer
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return p, err
}

func (s *CatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.Repo.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return items, nil
}

func (s *CatalogService) GetPrice(ctx context.Context, id uint) (decimal.Decimal, error) {
	price, err := s.Repo.GetPrice(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, fmt.Errorf("%w: product %d", ErrNotFound, id)
	}
	return price, err
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	if req.SellerID == nil || req.Name == nil || req.Description == nil || req.Price == nil || req.Stock == nil {
		return nil, ErrMissingFields
	}
	if strings.TrimSpace(*req.Name) == "" {
		return nil, ErrMissingFields
	}
	if req.Price.IsNegative() || *req.Stock < 0 {
		return nil, ErrNegative
	}

	prod := &models.Product{
		SellerID:    *req.SellerID,
		Name:        *req.Name,
		Description: *req.Description,
		Price:       *req.Price,
		Stock:       *req.Stock,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}

	s.index(ctx, *prod)
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, req transport.PatchProductRequest, id uint) (*models.Product, error) {
	if (req.Price != nil && req.Price.IsNegative()) || (req.Stock != nil && *req.Stock < 0) {
		return nil, ErrNegative
	}

	prod, err := s.Repo.PatchProduct(ctx, req, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: product %d", ErrNotFound, id)
		}
		return nil, err
	}

	s.index(ctx, *prod)
	return prod, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("%w: product %d", ErrNotFound, id)
		case pkgdb.IsForeignKeyViolation(err):
			return fmt.Errorf("%w: product %d", ErrInUse, id)
		}
		return err
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "product_id", id, "error", err)
		}
	}
	return nil
}

// SearchProducts uses the search index when one is configured and falls
// back to a database LIKE match otherwise.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	if strings.TrimSpace(q) == "" {
		return 0, nil, fmt.Errorf("%w: empty query", ErrValidation)
	}
	if s.Index != nil {
		return s.Index.Search(ctx, q, offset, limit)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

func (s *CatalogService) index(ctx context.Context, p models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexProduct(ctx, p); err != nil {
		logging.FromContext(ctx).Warn("search_index_failed", "product_id", p.ID, "error", err)
	}
}
