package handlers

import (
	"context"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

// CheckoutFacade covers the hosted-checkout payment routes.
type CheckoutFacade interface {
	StartCheckout(ctx context.Context, provider model.Provider, in usecase.CheckoutInput) (*model.CheckoutSession, error)
	ConfirmCheckout(ctx context.Context, provider model.Provider, in usecase.ConfirmInput) (*usecase.ConfirmResult, error)
}

// OrderFacade encapsulates public order operations exposed via HTTP.
type OrderFacade interface {
	PlaceOrder(ctx context.Context, in usecase.ManualOrderInput) (*usecase.ManualOrderResult, error)
	ValidateStock(ctx context.Context, items []model.LineItem) (*usecase.StockValidation, error)
	Order(ctx context.Context, number string) (*model.Order, error)
}

// CatalogFacade provides read access to products.
type CatalogFacade interface {
	Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error)
	Product(ctx context.Context, id int64) (*model.Product, error)
}

// AdminFacade provides the back-office operations.
type AdminFacade interface {
	Login(email, password string) (string, error)
	ParseToken(token string) (string, error)
	AdminOrders(ctx context.Context, status string, limit int) ([]model.Order, error)
	UpdateOrderStatus(ctx context.Context, number, status string, trackingURL *string) (*model.Order, error)
	CreateProduct(ctx context.Context, product model.Product) (*model.Product, error)
	UpdateProduct(ctx context.Context, product model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int, note, actor string) (*model.Product, error)
	Health(ctx context.Context) model.HealthReport
}

// StorefrontFacade aggregates the full set of operations used across handlers.
type StorefrontFacade interface {
	CheckoutFacade
	OrderFacade
	CatalogFacade
	AdminFacade
}
