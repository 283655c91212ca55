package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// ProductRequest creates or replaces a catalog entry.
type ProductRequest struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
}

// ToProduct converts the request into a domain product.
func (r ProductRequest) ToProduct(id int64) model.Product {
	return model.Product{
		ID:          id,
		Title:       r.Title,
		Description: r.Description,
		Price:       r.Price,
		Category:    r.Category,
		Status:      model.ProductStatus(r.Status),
		Stock:       r.Stock,
		Images:      r.Images,
	}
}

// ProductResponse is a catalog entry.
type ProductResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Status      string          `json:"status"`
	Stock       int             `json:"stock"`
	Images      []string        `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// NewProductResponse maps a domain product.
func NewProductResponse(p model.Product) ProductResponse {
	images := p.Images
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Category:    p.Category,
		Status:      string(p.Status),
		Stock:       p.Stock,
		Images:      images,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// StockAdjustRequest changes stock by a signed delta.
type StockAdjustRequest struct {
	Delta int    `json:"delta"`
	Note  string `json:"note"`
}
