package usecase

import (
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/polkiloo/bloomcart/internal/domain/model"
	testhelpers "github.com/polkiloo/bloomcart/internal/test"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

var fixedNow = time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

func rose() model.Product {
	return model.Product{ID: 1, Title: "Rose Bouquet", Price: decimal.NewFromInt(500), Status: model.ProductStatusActive, Stock: 5}
}

func tulips() model.Product {
	return model.Product{ID: 2, Title: "Tulip Basket", Price: decimal.NewFromInt(800), Status: model.ProductStatusActive, Stock: 1}
}

func roseItems() []model.LineItem {
	return []model.LineItem{{Title: "Rose Bouquet", Price: decimal.NewFromInt(500), Quantity: 2}}
}

type fixture struct {
	orders     *testhelpers.OrderRepositoryStub
	products   *testhelpers.ProductRepositoryStub
	stock      *testhelpers.StockRepositoryStub
	stripe     *testhelpers.GatewayStub
	paymongo   *testhelpers.GatewayStub
	notifier   *testhelpers.NotifierStub
	metrics    *testhelpers.MetricsStub
	reconciler *StockReconciler
	settings   Settings
}

func newFixture(products ...model.Product) *fixture {
	f := &fixture{
		orders:   testhelpers.NewOrderRepositoryStub(),
		products: testhelpers.NewProductRepositoryStub(products...),
		stripe:   &testhelpers.GatewayStub{ProviderVal: model.ProviderStripe, Sessions: map[string]*model.ProviderSession{}},
		paymongo: &testhelpers.GatewayStub{ProviderVal: model.ProviderPayMongo, Sessions: map[string]*model.ProviderSession{}},
		notifier: &testhelpers.NotifierStub{},
		metrics:  &testhelpers.MetricsStub{},
		settings: Settings{Currency: "PHP", PublicBaseURL: "https://shop.example/"},
	}
	f.stock = &testhelpers.StockRepositoryStub{Products: f.products}
	f.reconciler = NewStockReconciler(f.products, f.stock, f.metrics, discardLogger())
	return f
}

func (f *fixture) gateways() Gateways {
	return NewGateways(f.stripe, f.paymongo)
}

func (f *fixture) confirmation() *ConfirmationUseCase {
	uc := NewConfirmationUseCase(f.gateways(), f.orders, f.reconciler, f.notifier, f.metrics, discardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func (f *fixture) checkout() *CheckoutUseCase {
	uc := NewCheckoutUseCase(f.gateways(), f.orders, f.metrics, f.settings, discardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func (f *fixture) ordersUseCase() *OrderUseCase {
	uc := NewOrderUseCase(f.orders, f.reconciler, f.notifier, f.settings, discardLogger())
	uc.now = func() time.Time { return fixedNow }
	return uc
}

func paidSession(id, reference string, items []model.LineItem) *model.ProviderSession {
	return &model.ProviderSession{
		ID:            id,
		Reference:     reference,
		RawStatus:     "paid",
		PaymentStatus: model.PaymentStatusPaid,
		CustomerEmail: "ana@example.com",
		CustomerName:  "Ana Cruz",
		Items:         items,
	}
}
