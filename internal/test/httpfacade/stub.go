// Package httpfacade holds a configurable StorefrontFacade for HTTP tests.
package httpfacade

import (
	"context"

	domainErrors "github.com/polkiloo/bloomcart/internal/domain/errors"
	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/usecase"
)

// Stub implements every handler facade through optional function fields.
// Unset functions return zero values that keep handlers on the happy path.
type Stub struct {
	StartFn    func(context.Context, model.Provider, usecase.CheckoutInput) (*model.CheckoutSession, error)
	ConfirmFn  func(context.Context, model.Provider, usecase.ConfirmInput) (*usecase.ConfirmResult, error)
	PlaceFn    func(context.Context, usecase.ManualOrderInput) (*usecase.ManualOrderResult, error)
	ValidateFn func(context.Context, []model.LineItem) (*usecase.StockValidation, error)
	OrderFn    func(context.Context, string) (*model.Order, error)

	ProductsFn func(context.Context, model.ProductFilter) ([]model.Product, error)
	ProductFn  func(context.Context, int64) (*model.Product, error)

	LoginFn        func(string, string) (string, error)
	ParseFn        func(string) (string, error)
	AdminOrdersFn  func(context.Context, string, int) ([]model.Order, error)
	UpdateStatusFn func(context.Context, string, string, *string) (*model.Order, error)
	CreateFn       func(context.Context, model.Product) (*model.Product, error)
	UpdateFn       func(context.Context, model.Product) (*model.Product, error)
	DeleteFn       func(context.Context, int64) error
	AdjustFn       func(context.Context, int64, int, string, string) (*model.Product, error)
	HealthVal      model.HealthReport
}

func (s *Stub) StartCheckout(ctx context.Context, provider model.Provider, in usecase.CheckoutInput) (*model.CheckoutSession, error) {
	if s.StartFn != nil {
		return s.StartFn(ctx, provider, in)
	}
	return &model.CheckoutSession{ID: "cs_1", URL: "https://pay.example/cs_1"}, nil
}

func (s *Stub) ConfirmCheckout(ctx context.Context, provider model.Provider, in usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
	if s.ConfirmFn != nil {
		return s.ConfirmFn(ctx, provider, in)
	}
	id := int64(1)
	return &usecase.ConfirmResult{
		Order:   model.OrderSummary{Number: in.SessionID, Provider: provider, SessionID: in.SessionID, Status: model.PaymentStatusPaid},
		SavedID: &id,
	}, nil
}

func (s *Stub) PlaceOrder(ctx context.Context, in usecase.ManualOrderInput) (*usecase.ManualOrderResult, error) {
	if s.PlaceFn != nil {
		return s.PlaceFn(ctx, in)
	}
	return &usecase.ManualOrderResult{Order: &model.Order{Number: "BC-1"}, PreviewURL: "/orders/BC-1", StockReduced: true}, nil
}

func (s *Stub) ValidateStock(ctx context.Context, items []model.LineItem) (*usecase.StockValidation, error) {
	if s.ValidateFn != nil {
		return s.ValidateFn(ctx, items)
	}
	return &usecase.StockValidation{Valid: true, Message: "all items available"}, nil
}

func (s *Stub) Order(ctx context.Context, number string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, number)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *Stub) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	if s.ProductsFn != nil {
		return s.ProductsFn(ctx, filter)
	}
	return nil, nil
}

func (s *Stub) Product(ctx context.Context, id int64) (*model.Product, error) {
	if s.ProductFn != nil {
		return s.ProductFn(ctx, id)
	}
	return nil, domainErrors.ErrNotFound
}

func (s *Stub) Login(email, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(email, password)
	}
	return "token", nil
}

func (s *Stub) ParseToken(token string) (string, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return "admin@example.com", nil
}

func (s *Stub) AdminOrders(ctx context.Context, status string, limit int) ([]model.Order, error) {
	if s.AdminOrdersFn != nil {
		return s.AdminOrdersFn(ctx, status, limit)
	}
	return nil, nil
}

func (s *Stub) UpdateOrderStatus(ctx context.Context, number, status string, trackingURL *string) (*model.Order, error) {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, number, status, trackingURL)
	}
	return &model.Order{Number: number, Status: model.OrderStatus(status), TrackingURL: trackingURL}, nil
}

func (s *Stub) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, product)
	}
	product.ID = 1
	return &product, nil
}

func (s *Stub) UpdateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, product)
	}
	return &product, nil
}

func (s *Stub) DeleteProduct(ctx context.Context, id int64) error {
	if s.DeleteFn != nil {
		return s.DeleteFn(ctx, id)
	}
	return nil
}

func (s *Stub) AdjustStock(ctx context.Context, id int64, delta int, note, actor string) (*model.Product, error) {
	if s.AdjustFn != nil {
		return s.AdjustFn(ctx, id, delta, note, actor)
	}
	return &model.Product{ID: id, Stock: delta}, nil
}

func (s *Stub) Health(context.Context) model.HealthReport {
	return s.HealthVal
}
