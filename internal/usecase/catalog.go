package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/domain/repository"
)

const (
	defaultProductListLimit = 20
	maxProductListLimit     = 100
)

// CatalogUseCase manages products.
type CatalogUseCase struct {
	products repository.ProductRepository
	stock    *StockReconciler
	logger   *slog.Logger
}

// NewCatalogUseCase constructs CatalogUseCase.
func NewCatalogUseCase(products repository.ProductRepository, stock *StockReconciler, logger *slog.Logger) *CatalogUseCase {
	return &CatalogUseCase{products: products, stock: stock, logger: logger}
}

func (u *CatalogUseCase) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Query = strings.TrimSpace(filter.Query)
	filter.Category = strings.TrimSpace(filter.Category)
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidProduct, filter.Status)
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultProductListLimit
	}
	if filter.Limit > maxProductListLimit {
		filter.Limit = maxProductListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return u.products.List(ctx, filter)
}

func (u *CatalogUseCase) Get(ctx context.Context, id int64) (*model.Product, error) {
	return u.products.GetByID(ctx, id)
}

// Create adds a product. A product created without stock starts out of stock.
func (u *CatalogUseCase) Create(ctx context.Context, product model.Product) (*model.Product, error) {
	if err := normalizeProduct(&product); err != nil {
		return nil, err
	}
	if product.Stock < 0 {
		return nil, fmt.Errorf("%w: stock must not be negative", domainErrors.ErrInvalidProduct)
	}
	if product.Stock == 0 && product.Status == model.ProductStatusActive {
		product.Status = model.ProductStatusOutOfStock
	}
	return u.products.Create(ctx, &product)
}

// Update edits product details. Stock only changes through Restock.
func (u *CatalogUseCase) Update(ctx context.Context, product model.Product) (*model.Product, error) {
	if err := normalizeProduct(&product); err != nil {
		return nil, err
	}
	return u.products.Update(ctx, &product)
}

func (u *CatalogUseCase) Delete(ctx context.Context, id int64) error {
	return u.products.Delete(ctx, id)
}

// Restock applies an audited stock change and returns the refreshed product.
func (u *CatalogUseCase) Restock(ctx context.Context, id int64, delta int, note, actor string) (*model.Product, error) {
	result, err := u.stock.Restock(ctx, id, delta, note, actor)
	if err != nil {
		return nil, err
	}
	u.logger.Info("stock adjusted",
		slog.Int64("product_id", id),
		slog.Int("delta", delta),
		slog.Int("stock", result.NewStock),
		slog.String("actor", actor),
	)
	return u.products.GetByID(ctx, id)
}

func normalizeProduct(product *model.Product) error {
	product.Title = strings.TrimSpace(product.Title)
	product.Category = strings.TrimSpace(product.Category)
	if product.Title == "" {
		return fmt.Errorf("%w: title is required", domainErrors.ErrInvalidProduct)
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", domainErrors.ErrInvalidProduct)
	}
	if product.Status == "" {
		product.Status = model.ProductStatusActive
	}
	if !product.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidProduct, product.Status)
	}
	return nil
}
