package transport

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/shop_orders/internal/models"
)

type CreateProductRequest struct {
	SellerID    *uint            `json:"seller_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
}

type PatchProductRequest struct {
	SellerID    *uint            `json:"seller_id"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int64           `json:"stock"`
}

type ProductResponse struct {
	ID          uint      `json:"id"`
	SellerID    uint      `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int64     `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func NewProductResponse(p models.Product) ProductResponse {
	price, _ := p.Price.Round(3).Float64()
	return ProductResponse{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       price,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}

func NewProductResponses(items []models.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(items))
	for _, p := range items {
		out = append(out, NewProductResponse(p))
	}
	return out
}

type PriceResponse struct {
	ProductID uint    `json:"product_id"`
	Price     float64 `json:"price"`
}
