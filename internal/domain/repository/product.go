package repository

import (
	"context"

	"github.com/polkiloo/bloomcart/internal/domain/model"
)

// ProductRepository describes catalog persistence.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) (*model.Product, error)
	Delete(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByTitle(ctx context.Context, title string) (*model.Product, error)
	List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
}
