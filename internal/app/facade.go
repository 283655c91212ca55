package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	"github.com/polkiloo/bloomcart/internal/server/http/handlers"
	"github.com/polkiloo/bloomcart/internal/usecase"
	"github.com/polkiloo/bloomcart/internal/worker"
)

// HealthChecker reports whether the database answers.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type configurable interface {
	Configured() bool
}

// FacadeParams collects the use cases behind the storefront facade.
type FacadeParams struct {
	fx.In

	Checkout     *usecase.CheckoutUseCase
	Confirmation *usecase.ConfirmationUseCase
	Orders       *usecase.OrderUseCase
	Catalog      *usecase.CatalogUseCase
	Auth         *usecase.AdminAuthUseCase
	Gateways     usecase.Gateways
	Notifier     usecase.Notifier
	Database     HealthChecker
}

// StorefrontFacade is the single entry point used by HTTP handlers and the
// pending-order worker.
type StorefrontFacade struct {
	checkout     *usecase.CheckoutUseCase
	confirmation *usecase.ConfirmationUseCase
	orders       *usecase.OrderUseCase
	catalog      *usecase.CatalogUseCase
	auth         *usecase.AdminAuthUseCase
	gateways     usecase.Gateways
	notifier     usecase.Notifier
	database     HealthChecker
}

func NewStorefrontFacade(p FacadeParams) *StorefrontFacade {
	return &StorefrontFacade{
		checkout:     p.Checkout,
		confirmation: p.Confirmation,
		orders:       p.Orders,
		catalog:      p.Catalog,
		auth:         p.Auth,
		gateways:     p.Gateways,
		notifier:     p.Notifier,
		database:     p.Database,
	}
}

func (f *StorefrontFacade) StartCheckout(ctx context.Context, provider model.Provider, in usecase.CheckoutInput) (*model.CheckoutSession, error) {
	return f.checkout.Start(ctx, provider, in)
}

func (f *StorefrontFacade) ConfirmCheckout(ctx context.Context, provider model.Provider, in usecase.ConfirmInput) (*usecase.ConfirmResult, error) {
	return f.confirmation.Confirm(ctx, provider, in)
}

func (f *StorefrontFacade) PlaceOrder(ctx context.Context, in usecase.ManualOrderInput) (*usecase.ManualOrderResult, error) {
	return f.orders.PlaceManual(ctx, in)
}

func (f *StorefrontFacade) ValidateStock(ctx context.Context, items []model.LineItem) (*usecase.StockValidation, error) {
	return f.orders.ValidateStock(ctx, items)
}

func (f *StorefrontFacade) Order(ctx context.Context, number string) (*model.Order, error) {
	return f.orders.Get(ctx, number)
}

func (f *StorefrontFacade) Products(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	return f.catalog.List(ctx, filter)
}

func (f *StorefrontFacade) Product(ctx context.Context, id int64) (*model.Product, error) {
	return f.catalog.Get(ctx, id)
}

func (f *StorefrontFacade) Login(email, password string) (string, error) {
	return f.auth.Login(email, password)
}

func (f *StorefrontFacade) ParseToken(token string) (string, error) {
	return f.auth.ParseToken(token)
}

func (f *StorefrontFacade) AdminOrders(ctx context.Context, status string, limit int) ([]model.Order, error) {
	return f.orders.List(ctx, status, limit)
}

func (f *StorefrontFacade) UpdateOrderStatus(ctx context.Context, number, status string, trackingURL *string) (*model.Order, error) {
	return f.orders.UpdateStatus(ctx, number, status, trackingURL)
}

func (f *StorefrontFacade) CreateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	return f.catalog.Create(ctx, product)
}

func (f *StorefrontFacade) UpdateProduct(ctx context.Context, product model.Product) (*model.Product, error) {
	return f.catalog.Update(ctx, product)
}

func (f *StorefrontFacade) DeleteProduct(ctx context.Context, id int64) error {
	return f.catalog.Delete(ctx, id)
}

func (f *StorefrontFacade) AdjustStock(ctx context.Context, id int64, delta int, note, actor string) (*model.Product, error) {
	return f.catalog.Restock(ctx, id, delta, note, actor)
}

// Health pings the database and lists which collaborators have credentials.
func (f *StorefrontFacade) Health(ctx context.Context) model.HealthReport {
	report := model.HealthReport{Database: "ok", Providers: make(map[string]bool, len(f.gateways))}
	if f.database == nil {
		report.Database = "not configured"
	} else if err := f.database.HealthCheck(ctx); err != nil {
		report.Database = err.Error()
	}
	for provider, gateway := range f.gateways {
		configured := true
		if c, ok := gateway.(configurable); ok {
			configured = c.Configured()
		}
		report.Providers[string(provider)] = configured
	}
	if c, ok := f.notifier.(configurable); ok {
		report.NotifierBroker = c.Configured()
	}
	return report
}

// PendingOrders claims provider orders created after createdAfter and still
// pending since updatedBefore.
func (f *StorefrontFacade) PendingOrders(ctx context.Context, updatedBefore, createdAfter time.Time, limit int) ([]model.Order, error) {
	return f.orders.PendingForReconciliation(ctx, updatedBefore, createdAfter, limit)
}

// ReconcilePending re-reads the provider session behind a pending order.
// A persistence failure is reported as an error so the worker logs it.
func (f *StorefrontFacade) ReconcilePending(ctx context.Context, order model.Order) (model.PaymentStatus, error) {
	res, err := f.confirmation.ConfirmPending(ctx, order)
	if err != nil {
		return "", err
	}
	if res.DBError != "" {
		return res.Order.Status, fmt.Errorf("persist order %s: %w", order.Number, errors.New(res.DBError))
	}
	return res.Order.Status, nil
}

var (
	_ handlers.StorefrontFacade = (*StorefrontFacade)(nil)
	_ worker.ReconcileFacade    = (*StorefrontFacade)(nil)
)
